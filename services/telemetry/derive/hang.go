// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package derive computes scalar diagnostics over reconstructed
// telemetry structures. Every function here is pure: no I/O, no clock,
// and malformed input resolves to a documented safe default instead of
// an error.
package derive

import (
	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/datatypes"
)

const (
	// HangElapsedSeconds is the minimum runtime before a statement can
	// be considered hung. Strictly greater-than: exactly 600s is not
	// hung.
	HangElapsedSeconds = 600.0

	// HangVelocityFloor is the rows/second throughput below which a
	// long-running statement is considered stalled. Strictly less-than:
	// exactly 10 rows/s is not hung.
	HangVelocityFloor = 10.0
)

// IsHung reports whether a monitored statement looks stalled: actively
// executing, past the elapsed threshold, with defined throughput below
// the velocity floor. Zero elapsed time never hangs — velocity is
// undefined, not slow.
func IsHung(s datatypes.MonitoredStatement) bool {
	if s.Status != datatypes.StatementExecuting {
		return false
	}
	if s.ElapsedSeconds <= HangElapsedSeconds {
		return false
	}
	velocity := float64(s.RowsProcessed) / s.ElapsedSeconds
	return velocity < HangVelocityFloor
}

// FlagHung sets IsHung on every statement in place and returns the
// number flagged.
func FlagHung(statements []datatypes.MonitoredStatement) int {
	hung := 0
	for i := range statements {
		statements[i].IsHung = IsHung(statements[i])
		if statements[i].IsHung {
			hung++
		}
	}
	return hung
}

// DOPEfficiency returns Σactual / Σrequested × 100 across all
// statements — an aggregate ratio, deliberately not an average of
// per-statement ratios, so a heavily-starved wide statement outweighs
// a satisfied narrow one. Zero total demand is 100% efficient by
// convention: there is no unmet demand.
func DOPEfficiency(statements []datatypes.MonitoredStatement) float64 {
	var requested, actual int64
	for _, s := range statements {
		requested += s.DOPRequested
		actual += s.DOPActual
	}
	if requested == 0 {
		return 100
	}
	return float64(actual) / float64(requested) * 100
}
