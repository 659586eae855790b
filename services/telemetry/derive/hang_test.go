// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package derive

import (
	"testing"

	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/datatypes"
)

func TestIsHung_Boundaries(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		elapsed float64
		rows    int64
		want    bool
	}{
		{"clearly hung", datatypes.StatementExecuting, 1843, 120, true},
		{"exactly 600s is not hung", datatypes.StatementExecuting, 600, 0, false},
		{"just past 600s, slow", datatypes.StatementExecuting, 601, 0, true},
		// 601s with 6010 rows = exactly 10 rows/s: the floor is strict.
		{"exactly at velocity floor", datatypes.StatementExecuting, 601, 6010, false},
		{"just below velocity floor", datatypes.StatementExecuting, 601, 6009, true},
		{"long but fast", datatypes.StatementExecuting, 5000, 10_000_000, false},
		{"done statements never hang", datatypes.StatementDone, 5000, 0, false},
		{"queued statements never hang", datatypes.StatementQueued, 5000, 0, false},
		{"zero elapsed never hangs", datatypes.StatementExecuting, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := datatypes.MonitoredStatement{
				Status:         tt.status,
				ElapsedSeconds: tt.elapsed,
				RowsProcessed:  tt.rows,
			}
			if got := IsHung(s); got != tt.want {
				t.Errorf("IsHung(%s elapsed=%v rows=%d) = %v, want %v",
					tt.status, tt.elapsed, tt.rows, got, tt.want)
			}
		})
	}
}

func TestFlagHung(t *testing.T) {
	statements := []datatypes.MonitoredStatement{
		{Status: datatypes.StatementExecuting, ElapsedSeconds: 1843, RowsProcessed: 120},
		{Status: datatypes.StatementExecuting, ElapsedSeconds: 431, RowsProcessed: 2200415},
		{Status: datatypes.StatementDone, ElapsedSeconds: 58, RowsProcessed: 90210},
	}

	hung := FlagHung(statements)

	if hung != 1 {
		t.Errorf("FlagHung = %d, want 1", hung)
	}
	if !statements[0].IsHung {
		t.Error("statements[0].IsHung = false, flag must be set in place")
	}
	if statements[1].IsHung || statements[2].IsHung {
		t.Error("healthy statements were flagged")
	}
}

func TestDOPEfficiency(t *testing.T) {
	tests := []struct {
		name       string
		statements []datatypes.MonitoredStatement
		want       float64
	}{
		{
			// Aggregate ratio, not average of ratios: (8+4)/(8+16)=50%,
			// while the per-statement average would be 62.5%.
			"aggregate not average",
			[]datatypes.MonitoredStatement{
				{DOPRequested: 8, DOPActual: 8},
				{DOPRequested: 16, DOPActual: 4},
			},
			50,
		},
		{
			"fully satisfied",
			[]datatypes.MonitoredStatement{{DOPRequested: 8, DOPActual: 8}},
			100,
		},
		{
			"no parallel demand is 100 by convention",
			[]datatypes.MonitoredStatement{{DOPRequested: 0, DOPActual: 0}},
			100,
		},
		{"empty", nil, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DOPEfficiency(tt.statements); got != tt.want {
				t.Errorf("DOPEfficiency = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDOPEfficiency_TwoThirds(t *testing.T) {
	statements := []datatypes.MonitoredStatement{
		{DOPRequested: 8, DOPActual: 8},
		{DOPRequested: 16, DOPActual: 8},
	}
	got := DOPEfficiency(statements)
	want := 16.0 / 24.0 * 100
	if got != want {
		t.Errorf("DOPEfficiency = %v, want %v", got, want)
	}
}
