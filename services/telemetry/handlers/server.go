// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers implements the derived-metric HTTP endpoints.
//
// Every endpoint follows the same shape: parse options, check the
// response cache, coalesce concurrent misses through singleflight,
// fetch from the upstream backend, normalize, derive, cache, respond.
// Upstream trouble never becomes an HTTP error status — the envelope's
// status field carries the outcome and the handler answers 200, so the
// dashboard always has something render-able. HTTP 4xx is reserved for
// requests that are themselves malformed.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"golang.org/x/sync/singleflight"

	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/cache"
	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/datatypes"
	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/normalize"
	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/observability"
	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/sink"
	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/stages"
	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/upstream"
)

var tracer = otel.Tracer("ocidash/telemetry/handlers")

// Endpoint labels used for metrics and cache-key kinds.
const (
	endpointBlocking    = "sessions_blocking"
	endpointSQLMon      = "sqlmon"
	endpointWorkflow    = "trace_workflow"
	endpointRecent      = "traces_recent"
	endpointChecks      = "checks_score"
	endpointCoordinator = "coordinator_health"
)

// Backend labels for upstream latency/error metrics.
const (
	backendSessions    = "sessions"
	backendAPM         = "apm"
	backendCoordinator = "coordinator"
)

// SessionSource is the database-management slice of the upstream layer,
// satisfied by *upstream.SessionBackend and by test fakes.
type SessionSource interface {
	FetchBlockingSessions(ctx context.Context, limit int) ([]normalize.RawRecord, error)
	FetchMonitoredStatements(ctx context.Context) ([]normalize.RawRecord, error)
}

// TraceSource is the APM slice of the upstream layer.
type TraceSource interface {
	FetchTraceSpans(ctx context.Context, traceID string) ([]normalize.RawRecord, error)
	FetchRecentTraces(ctx context.Context, limit int) ([]normalize.RawRecord, error)
}

// CoordinatorSource is the coordinator-agent slice of the upstream layer.
type CoordinatorSource interface {
	Health(ctx context.Context) (normalize.RawRecord, error)
	FetchChecks(ctx context.Context) ([]normalize.RawRecord, error)
}

// Caches groups the per-endpoint response caches. Blocking and SQL
// monitoring snapshots go stale fast; check runs barely change between
// coordinator deploys, so their TTLs differ per class.
type Caches struct {
	Sessions    *cache.Cache
	SQLMon      *cache.Cache
	Traces      *cache.Cache
	Checks      *cache.Cache
	Coordinator *cache.Cache
}

// NewCaches builds the default cache set.
func NewCaches() *Caches {
	return &Caches{
		Sessions:    cache.New(cache.Config{TTL: 30 * time.Second}),
		SQLMon:      cache.New(cache.Config{TTL: 30 * time.Second}),
		Traces:      cache.New(cache.Config{TTL: 60 * time.Second, Capacity: 200}),
		Checks:      cache.New(cache.Config{TTL: 5 * time.Minute}),
		Coordinator: cache.New(cache.Config{TTL: 15 * time.Second}),
	}
}

// Config wires a Server. Sources are required; everything else has a
// usable default so tests construct servers with two lines.
type Config struct {
	Sessions    SessionSource
	Traces      TraceSource
	Coordinator CoordinatorSource

	Mapper  *stages.Mapper
	Caches  *Caches
	Metrics *observability.Metrics
	Sink    *sink.InfluxSink
	Logger  *slog.Logger

	// DemoFallback serves the labeled demo dataset when an upstream is
	// unreachable. On by default in NewServer via main; tests usually
	// leave it off so failures stay visible.
	DemoFallback bool
}

// Server holds the handler dependencies. One instance serves all
// endpoints; all fields are read-only after construction except the
// caches and the flight group, which lock internally.
type Server struct {
	sessions SessionSource
	traces   TraceSource
	coord    CoordinatorSource

	mapper       *stages.Mapper
	caches       *Caches
	metrics      *observability.Metrics
	sink         *sink.InfluxSink
	logger       *slog.Logger
	demoFallback bool

	// flight coalesces concurrent cache misses for the same key into a
	// single upstream fetch.
	flight singleflight.Group
}

// NewServer builds a Server, filling in defaults for optional fields.
func NewServer(cfg Config) *Server {
	if cfg.Mapper == nil {
		cfg.Mapper = stages.NewMapper()
	}
	if cfg.Caches == nil {
		cfg.Caches = NewCaches()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Server{
		sessions:     cfg.Sessions,
		traces:       cfg.Traces,
		coord:        cfg.Coordinator,
		mapper:       cfg.Mapper,
		caches:       cfg.Caches,
		metrics:      cfg.Metrics,
		sink:         cfg.Sink,
		logger:       cfg.Logger,
		demoFallback: cfg.DemoFallback,
	}
}

// fetchRecords runs one upstream list fetch and classifies the outcome
// into an envelope. Transient failures fall back to the demo dataset
// when fallback is enabled; configuration gaps and malformed payloads
// never do, because hiding those behind plausible data would mask real
// problems.
func (s *Server) fetchRecords(ctx context.Context, backend string,
	fetch func(context.Context) ([]normalize.RawRecord, error),
	demo func() []normalize.RawRecord,
) ([]normalize.RawRecord, datatypes.Envelope) {
	ctx, span := tracer.Start(ctx, "upstream."+backend)
	defer span.End()

	start := time.Now()
	records, err := fetch(ctx)
	elapsed := time.Since(start)

	switch {
	case err == nil:
		s.recordUpstream(backend, elapsed, "")
		return records, datatypes.NewEnvelope(datatypes.StatusConnected)

	case errors.Is(err, upstream.ErrNotConfigured):
		s.recordUpstream(backend, elapsed, "not_configured")
		return nil, datatypes.NewErrorEnvelope(datatypes.StatusPendingConfig, err.Error())

	case errors.Is(err, upstream.ErrMalformed):
		s.recordUpstream(backend, elapsed, "malformed")
		s.logger.Error("upstream payload malformed", "backend", backend, "error", err)
		return nil, datatypes.NewErrorEnvelope(datatypes.StatusError, err.Error())

	default:
		s.recordUpstream(backend, elapsed, "transient")
		if s.demoFallback && demo != nil {
			s.logger.Warn("upstream unreachable, serving demo data",
				"backend", backend, "error", err)
			return demo(), datatypes.NewErrorEnvelope(datatypes.StatusMock,
				"upstream unreachable, demo data served")
		}
		return nil, datatypes.NewErrorEnvelope(datatypes.StatusError, err.Error())
	}
}

// fetchRecord is fetchRecords for single-object endpoints.
func (s *Server) fetchRecord(ctx context.Context, backend string,
	fetch func(context.Context) (normalize.RawRecord, error),
	demo func() normalize.RawRecord,
) (normalize.RawRecord, datatypes.Envelope) {
	records, env := s.fetchRecords(ctx, backend,
		func(ctx context.Context) ([]normalize.RawRecord, error) {
			r, err := fetch(ctx)
			if err != nil {
				return nil, err
			}
			return []normalize.RawRecord{r}, nil
		},
		func() []normalize.RawRecord {
			return []normalize.RawRecord{demo()}
		})
	if len(records) == 0 {
		return normalize.RawRecord{}, env
	}
	return records[0], env
}

// usable reports whether a fetch outcome carries a payload worth
// deriving from and caching.
func usable(env datatypes.Envelope) bool {
	return env.Status == datatypes.StatusConnected || env.Status == datatypes.StatusMock
}

func (s *Server) recordRequest(endpoint string, status datatypes.Status) {
	if s.metrics != nil {
		s.metrics.RecordRequest(endpoint, string(status))
	}
}

func (s *Server) recordUpstream(backend string, elapsed time.Duration, errKind string) {
	if s.metrics != nil {
		s.metrics.RecordUpstream(backend, elapsed, errKind)
	}
}

func (s *Server) recordCache(endpoint string, hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCache(endpoint, hit)
	}
}
