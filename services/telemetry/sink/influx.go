// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package sink exports derived scalar health signals to InfluxDB so the
// long-term Grafana boards can chart trends the in-memory engine does
// not keep. Export is fire-and-forget: write failures are logged and
// dropped, and the engine itself still holds no state beyond its cache.
package sink

import (
	"context"
	"log/slog"
	"os"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/datatypes"
)

// InfluxSink writes derived metrics as points. A nil *InfluxSink is a
// valid no-op, so callers never need to branch on enablement.
type InfluxSink struct {
	writeAPI api.WriteAPIBlocking
	close    func()
	logger   *slog.Logger
}

// NewFromEnv builds the sink from INFLUXDB_URL / INFLUXDB_TOKEN /
// INFLUXDB_ORG / INFLUXDB_BUCKET. Returns nil (disabled) unless both
// URL and token are set.
func NewFromEnv(logger *slog.Logger) *InfluxSink {
	url := os.Getenv("INFLUXDB_URL")
	token := os.Getenv("INFLUXDB_TOKEN")
	if url == "" || token == "" {
		logger.Info("influx sink disabled, INFLUXDB_URL or INFLUXDB_TOKEN not set")
		return nil
	}

	org := os.Getenv("INFLUXDB_ORG")
	if org == "" {
		org = "oci-dashboards"
	}
	bucket := os.Getenv("INFLUXDB_BUCKET")
	if bucket == "" {
		bucket = "derived-metrics"
	}

	client := influxdb2.NewClient(url, token)
	logger.Info("influx sink enabled", "url", url, "org", org, "bucket", bucket)
	return &InfluxSink{
		writeAPI: client.WriteAPIBlocking(org, bucket),
		close:    client.Close,
		logger:   logger,
	}
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	if s == nil || s.close == nil {
		return
	}
	s.close()
}

// RecordBlockingSummary exports one blocking snapshot rollup.
func (s *InfluxSink) RecordBlockingSummary(ctx context.Context, summary datatypes.BlockingSummary) {
	if s == nil {
		return
	}
	p := influxdb2.NewPoint("blocking_summary",
		nil,
		map[string]any{
			"total_blocked":    summary.TotalBlocked,
			"root_blockers":    summary.RootBlockers,
			"max_wait_seconds": summary.MaxWaitSeconds,
			"principals":       len(summary.AffectedPrincipals),
		},
		time.Now())
	s.writePoint(ctx, p)
}

// RecordSQLMonitor exports hang count and DOP efficiency.
func (s *InfluxSink) RecordSQLMonitor(ctx context.Context, hungCount int, dopEfficiency float64) {
	if s == nil {
		return
	}
	p := influxdb2.NewPoint("sql_monitor",
		nil,
		map[string]any{
			"hung_count":             hungCount,
			"dop_efficiency_percent": dopEfficiency,
		},
		time.Now())
	s.writePoint(ctx, p)
}

// RecordScore exports one check-run risk score.
func (s *InfluxSink) RecordScore(ctx context.Context, score datatypes.ScoreSummary) {
	if s == nil {
		return
	}
	p := influxdb2.NewPoint("check_score",
		nil,
		map[string]any{
			"risk_score": score.RiskScore,
			"pass_rate":  score.PassRate,
			"failed":     score.Failed,
		},
		time.Now())
	s.writePoint(ctx, p)
}

func (s *InfluxSink) writePoint(ctx context.Context, p *write.Point) {
	if err := s.writeAPI.WritePoint(ctx, p); err != nil {
		s.logger.Warn("influx write failed", "measurement", p.Name(), "error", err)
	}
}
