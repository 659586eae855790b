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

// WorkflowStats aggregates a recent-traces window: counts, error rate
// and duration rollups. An empty window yields zeros.
func WorkflowStats(traces []datatypes.TraceSummary) datatypes.WorkflowStats {
	stats := datatypes.WorkflowStats{Count: len(traces)}
	if stats.Count == 0 {
		return stats
	}

	var totalMillis int64
	for _, t := range traces {
		if t.Status == datatypes.WorkflowError {
			stats.ErrorCount++
		}
		totalMillis += t.DurationMillis
		if t.DurationMillis > stats.MaxDurationMillis {
			stats.MaxDurationMillis = t.DurationMillis
		}
	}

	stats.AvgDurationMillis = totalMillis / int64(stats.Count)
	stats.ErrorRatePercent = math.Round(float64(stats.ErrorCount)/float64(stats.Count)*10000) / 100
	return stats
}
