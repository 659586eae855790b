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

func check(passed bool, sev datatypes.Severity) datatypes.CheckResult {
	return datatypes.CheckResult{Name: "c", Passed: passed, Severity: sev}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		checks   []datatypes.CheckResult
		wantRisk int
		wantPass float64
	}{
		{
			"all passing",
			[]datatypes.CheckResult{
				check(true, datatypes.SeverityCritical),
				check(true, datatypes.SeverityLow),
			},
			0, 1,
		},
		{
			// (5+1)/50 * 100 = 12
			"large run stays low",
			append(
				manyPassing(48),
				check(false, datatypes.SeverityMedium),
				check(false, datatypes.SeverityLow),
			),
			12, 0.96,
		},
		{
			// 40/4 * 100 = 1000, clamped.
			"single critical saturates a small run",
			[]datatypes.CheckResult{
				check(false, datatypes.SeverityCritical),
				check(true, datatypes.SeverityLow),
				check(true, datatypes.SeverityLow),
				check(true, datatypes.SeverityLow),
			},
			100, 0.75,
		},
		{
			// Passed criticals contribute nothing: 20/80*100 = 25.
			"only failures weigh",
			append(
				manyPassing(79),
				check(false, datatypes.SeverityHigh),
			),
			25, 79.0 / 80.0,
		},
		{
			"unknown severity weighs like low",
			append(
				manyPassing(99),
				check(false, datatypes.Severity("bizarre")),
			),
			1, 0.99,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.checks)
			if got.RiskScore != tt.wantRisk {
				t.Errorf("RiskScore = %d, want %d", got.RiskScore, tt.wantRisk)
			}
			if got.PassRate != tt.wantPass {
				t.Errorf("PassRate = %v, want %v", got.PassRate, tt.wantPass)
			}
			if got.Total != len(tt.checks) {
				t.Errorf("Total = %d, want %d", got.Total, len(tt.checks))
			}
			if got.Passed+got.Failed != got.Total {
				t.Errorf("Passed(%d)+Failed(%d) != Total(%d)", got.Passed, got.Failed, got.Total)
			}
		})
	}
}

func TestScore_EmptyRunIsZeroNotNaN(t *testing.T) {
	got := Score(nil)
	if got.RiskScore != 0 || got.PassRate != 0 || got.Total != 0 {
		t.Errorf("empty run = %+v, want all zeros", got)
	}
}

func manyPassing(n int) []datatypes.CheckResult {
	checks := make([]datatypes.CheckResult, n)
	for i := range checks {
		checks[i] = check(true, datatypes.SeverityLow)
	}
	return checks
}
