// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package upstream

import (
	"fmt"
	"time"

	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/normalize"
)

// Demo datasets served when an upstream is unreachable and fallback is
// enabled. They go through the same normalize/reconstruct/derive path
// as live data and are always labeled status "mock" — never passed off
// as live. Shapes intentionally mix field-name conventions to keep the
// normalizer honest in demo mode too.

// DemoBlockingSessions is a three-level blocking chain plus an
// unrelated root blocker.
func DemoBlockingSessions() []normalize.RawRecord {
	return []normalize.RawRecord{
		{"sid": 145, "inst_id": 1, "serial": 31001, "username": "APPUSER",
			"event": "enq: TX - row lock contention", "seconds_in_wait": 847,
			"sql_id": "8mz51f3xu2g9k", "program": "JDBC Thin Client"},
		{"session_id": 287, "instance": 1, "serial": 12077, "user_name": "BATCH",
			"blocking_session": 145, "blocking_instance": 1,
			"wait_event": "enq: TX - row lock contention", "wait_time_seconds": 623,
			"sqlId": "4yb72k1mm0c3d"},
		{"SID": 156, "INST_ID": 1, "SERIAL#": 44209, "USERNAME": "REPORTS",
			"BLOCKING_SESSION": 287, "BLOCKING_INSTANCE": 1,
			"EVENT": "enq: TX - row lock contention", "SECONDS_IN_WAIT": 212,
			"SQL_ID": "9ac40p7xw1e5f"},
		{"sid": 402, "inst_id": 2, "serial": 9917, "username": "ETL",
			"event": "library cache lock", "seconds_in_wait": 98},
	}
}

// DemoMonitoredStatements includes one clearly hung statement and one
// DOP-starved parallel statement.
func DemoMonitoredStatements() []normalize.RawRecord {
	return []normalize.RawRecord{
		{"sql_id": "8mz51f3xu2g9k", "username": "APPUSER", "status": "EXECUTING",
			"elapsed_seconds": 1843, "rows_processed": 120, "cpu_seconds": 12.5,
			"px_servers_requested": 8, "px_servers_allocated": 8},
		{"sql_id": "4yb72k1mm0c3d", "username": "BATCH", "status": "EXECUTING",
			"elapsed_seconds": 431, "rows_processed": 2200415, "cpu_seconds": 380.2,
			"px_servers_requested": 16, "px_servers_allocated": 4},
		{"sql_id": "9ac40p7xw1e5f", "username": "REPORTS", "status": "DONE",
			"elapsed_seconds": 58, "rows_processed": 90210,
			"px_servers_requested": 0, "px_servers_allocated": 0},
	}
}

// DemoTraceSpans is one complete coordinator workflow: intake through
// respond, with an error in the execute phase.
func DemoTraceSpans(traceID string) []normalize.RawRecord {
	base := time.Date(2025, 6, 12, 9, 30, 0, 0, time.UTC)
	at := func(offsetMs, durMs int64) (string, string) {
		start := base.Add(time.Duration(offsetMs) * time.Millisecond)
		return start.Format(time.RFC3339Nano),
			start.Add(time.Duration(durMs) * time.Millisecond).Format(time.RFC3339Nano)
	}

	rootStart, rootEnd := at(0, 4120)
	intakeStart, intakeEnd := at(5, 140)
	classifyStart, classifyEnd := at(150, 310)
	retrieveStart, retrieveEnd := at(470, 880)
	generateStart, generateEnd := at(1360, 1950)
	executeStart, executeEnd := at(3320, 540)
	respondStart, respondEnd := at(3870, 240)

	return []normalize.RawRecord{
		{"spanId": "span-root", "traceId": traceID,
			"displayName": "coordinator.api.request",
			"timeStarted": rootStart, "timeEnded": rootEnd,
			"tags": []any{
				map[string]any{"tagName": "coordinator.query",
					"tagValue": "show blocking sessions for the payments database"},
				map[string]any{"tagName": "coordinator.response",
					"tagValue": "3 sessions are blocked behind SID 145"},
			}},
		{"spanId": "span-intake", "parentSpanId": "span-root", "traceId": traceID,
			"displayName": "coordinator.intake.validate",
			"timeStarted": intakeStart, "timeEnded": intakeEnd},
		{"span_id": "span-classify", "parent_span_id": "span-root", "trace_id": traceID,
			"operationName": "intent.classify",
			"startTime":     classifyStart, "endTime": classifyEnd},
		{"spanId": "span-retrieve", "parentSpanId": "span-classify", "traceId": traceID,
			"displayName": "rag.vector.search",
			"timeStarted": retrieveStart, "timeEnded": retrieveEnd},
		{"spanId": "span-generate", "parentSpanId": "span-classify", "traceId": traceID,
			"displayName": "llm.completion",
			"timeStarted": generateStart, "timeEnded": generateEnd},
		{"spanId": "span-execute", "parentSpanId": "span-generate", "traceId": traceID,
			"displayName": "sql.execute",
			"timeStarted": executeStart, "timeEnded": executeEnd, "isError": true},
		{"spanId": "span-respond", "parentSpanId": "span-root", "traceId": traceID,
			"displayName": "response.render",
			"timeStarted": respondStart, "timeEnded": respondEnd},
	}
}

// DemoRecentTraces is a small recent-traces window with one failure.
func DemoRecentTraces(limit int) []normalize.RawRecord {
	all := []normalize.RawRecord{
		{"traceId": "demo-trace-001", "rootSpanServiceName": "coordinator",
			"durationInMs": 4120, "spanCount": 7, "errorSpanCount": 1},
		{"trace_id": "demo-trace-002", "serviceName": "coordinator",
			"duration_ms": 1860, "span_count": 6, "error_span_count": 0},
		{"traceId": "demo-trace-003", "rootName": "coordinator",
			"durationMs": 2540, "spanCount": 6, "errorSpanCount": 0},
	}
	if limit > 0 && limit < len(all) {
		return all[:limit]
	}
	return all
}

// DemoChecks is a mixed check run. The high and medium failures push
// the weighted score to its clamp on a run this small.
func DemoChecks() []normalize.RawRecord {
	return []normalize.RawRecord{
		{"name": "coordinator.tls.enabled", "category": "security",
			"passed": true, "severity": "critical"},
		{"name": "coordinator.auth.token_rotation", "category": "security",
			"passed": false, "severity": "high",
			"detail": "token older than 90 days"},
		{"name": "apm.sampling.configured", "category": "observability",
			"passed": true, "severity": "medium"},
		{"name": "db.connection_pool.headroom", "category": "capacity",
			"passed": false, "severity": "medium",
			"detail": "pool at 92% of max connections"},
		{"name": "dashboards.cache.ttl_sane", "category": "configuration",
			"passed": true, "severity": "low"},
	}
}

// DemoCoordinatorHealth mirrors the coordinator /health shape.
func DemoCoordinatorHealth() normalize.RawRecord {
	return normalize.RawRecord{
		"state": "DEGRADED", "version": "2.4.1",
		"uptime_seconds": 186340, "active_agents": 3,
		"message": fmt.Sprintf("demo data generated %s", time.Now().UTC().Format(time.RFC3339)),
	}
}
