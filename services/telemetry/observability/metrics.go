// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics for the telemetry
// service: request outcomes by status, upstream latency, and cache
// effectiveness. Exposed on /metrics; all operations are thread-safe
// via Prometheus's internal locking.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace   = "ocidash"
	telemetrySubsystem = "telemetry"
)

// Metrics holds all Prometheus collectors for the telemetry service.
// Create once at startup with InitMetrics, or with NewMetrics and a
// private registry in tests.
type Metrics struct {
	// RequestsTotal counts queries by endpoint and result status
	// (connected, mock, error, pending_config).
	RequestsTotal *prometheus.CounterVec

	// UpstreamLatencySeconds measures one upstream fetch, successful or
	// not. Labels: backend (sessions, apm, coordinator).
	UpstreamLatencySeconds *prometheus.HistogramVec

	// UpstreamErrorsTotal counts failed upstream fetches.
	// Labels: backend, kind (not_configured, transient, malformed)
	UpstreamErrorsTotal *prometheus.CounterVec

	// CacheHitsTotal / CacheMissesTotal count response-cache outcomes
	// by endpoint.
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
}

// NewMetrics registers all collectors on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: telemetrySubsystem,
				Name:      "requests_total",
				Help:      "Total derived-metric queries by endpoint and result status",
			},
			[]string{"endpoint", "status"},
		),

		UpstreamLatencySeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: telemetrySubsystem,
				Name:      "upstream_latency_seconds",
				Help:      "Upstream fetch latency by backend",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 15.0},
			},
			[]string{"backend"},
		),

		UpstreamErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: telemetrySubsystem,
				Name:      "upstream_errors_total",
				Help:      "Failed upstream fetches by backend and error kind",
			},
			[]string{"backend", "kind"},
		),

		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: telemetrySubsystem,
				Name:      "cache_hits_total",
				Help:      "Response cache hits by endpoint",
			},
			[]string{"endpoint"},
		),

		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: telemetrySubsystem,
				Name:      "cache_misses_total",
				Help:      "Response cache misses by endpoint",
			},
			[]string{"endpoint"},
		),
	}
}

// InitMetrics registers on the default Prometheus registry. Panics if
// called twice.
func InitMetrics() *Metrics {
	return NewMetrics(prometheus.DefaultRegisterer)
}

// RecordRequest records one completed query.
func (m *Metrics) RecordRequest(endpoint, status string) {
	m.RequestsTotal.WithLabelValues(endpoint, status).Inc()
}

// RecordUpstream records one upstream fetch attempt.
func (m *Metrics) RecordUpstream(backend string, elapsed time.Duration, errKind string) {
	m.UpstreamLatencySeconds.WithLabelValues(backend).Observe(elapsed.Seconds())
	if errKind != "" {
		m.UpstreamErrorsTotal.WithLabelValues(backend, errKind).Inc()
	}
}

// RecordCache records one cache lookup outcome.
func (m *Metrics) RecordCache(endpoint string, hit bool) {
	if hit {
		m.CacheHitsTotal.WithLabelValues(endpoint).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(endpoint).Inc()
}
