// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package derive

import (
	"math"

	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/datatypes"
)

// Score computes the category-weighted risk score and pass rate of one
// check run.
//
// Only failed checks contribute weight (critical=40, high=20, medium=5,
// low=1). The score is min(100, round(Σweight / count × 100)), so a
// single critical failure in a small run saturates quickly while a
// large mostly-passing run stays low. An empty run scores zero risk
// and zero pass rate — never NaN.
func Score(checks []datatypes.CheckResult) datatypes.ScoreSummary {
	summary := datatypes.ScoreSummary{Total: len(checks)}
	if summary.Total == 0 {
		return summary
	}

	weight := 0
	for _, c := range checks {
		if c.Passed {
			summary.Passed++
			continue
		}
		summary.Failed++
		weight += c.Severity.Weight()
	}

	score := math.Round(float64(weight) / float64(summary.Total) * 100)
	summary.RiskScore = int(math.Min(100, score))
	summary.PassRate = float64(summary.Passed) / float64(summary.Total)
	return summary
}
