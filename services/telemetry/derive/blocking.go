// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package derive

import (
	"sort"

	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/datatypes"
)

// BlockingSummary rolls up one blocking snapshot. Counts come from the
// flat record list, not the reconstructed forest, so malformed records
// that could not be placed in a tree still count.
func BlockingSummary(sessions []datatypes.BlockedSession) datatypes.BlockingSummary {
	summary := datatypes.BlockingSummary{AffectedPrincipals: []string{}}
	principals := make(map[string]bool)

	for _, s := range sessions {
		if s.WaitSeconds > summary.MaxWaitSeconds {
			summary.MaxWaitSeconds = s.WaitSeconds
		}
		if s.BlockedBy == nil {
			summary.RootBlockers++
			continue
		}
		summary.TotalBlocked++
		if s.Username != "" && !principals[s.Username] {
			principals[s.Username] = true
			summary.AffectedPrincipals = append(summary.AffectedPrincipals, s.Username)
		}
	}

	sort.Strings(summary.AffectedPrincipals)
	return summary
}
