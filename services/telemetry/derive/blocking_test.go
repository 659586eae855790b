// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package derive

import (
	"reflect"
	"testing"

	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/datatypes"
)

func blocked(sid int64, blocker *datatypes.SessionKey, user string, wait float64) datatypes.BlockedSession {
	return datatypes.BlockedSession{
		Key:         datatypes.SessionKey{SessionID: sid, Instance: 1},
		BlockedBy:   blocker,
		Username:    user,
		WaitSeconds: wait,
	}
}

func blocker(sid int64) *datatypes.SessionKey {
	return &datatypes.SessionKey{SessionID: sid, Instance: 1}
}

func TestBlockingSummary_Chain(t *testing.T) {
	sessions := []datatypes.BlockedSession{
		blocked(145, nil, "APPUSER", 847),
		blocked(287, blocker(145), "BATCH", 623),
		blocked(156, blocker(287), "REPORTS", 212),
	}

	got := BlockingSummary(sessions)

	if got.TotalBlocked != 2 {
		t.Errorf("TotalBlocked = %d, want 2", got.TotalBlocked)
	}
	if got.RootBlockers != 1 {
		t.Errorf("RootBlockers = %d, want 1", got.RootBlockers)
	}
	// Max wait is taken over every record, the root blocker included.
	if got.MaxWaitSeconds != 847 {
		t.Errorf("MaxWaitSeconds = %v, want 847", got.MaxWaitSeconds)
	}
	if !reflect.DeepEqual(got.AffectedPrincipals, []string{"BATCH", "REPORTS"}) {
		t.Errorf("AffectedPrincipals = %v, want sorted blocked users only", got.AffectedPrincipals)
	}
}

func TestBlockingSummary_PrincipalsDistinctAndSorted(t *testing.T) {
	sessions := []datatypes.BlockedSession{
		blocked(1, nil, "ZED", 5),
		blocked(2, blocker(1), "ZED", 10),
		blocked(3, blocker(1), "ANNA", 15),
		blocked(4, blocker(1), "ZED", 20),
		blocked(5, blocker(1), "", 25), // anonymous sessions are not listed
	}

	got := BlockingSummary(sessions)

	if got.TotalBlocked != 4 {
		t.Errorf("TotalBlocked = %d, want 4", got.TotalBlocked)
	}
	if !reflect.DeepEqual(got.AffectedPrincipals, []string{"ANNA", "ZED"}) {
		t.Errorf("AffectedPrincipals = %v, want [ANNA ZED]", got.AffectedPrincipals)
	}
}

func TestBlockingSummary_RootUserNotAffected(t *testing.T) {
	sessions := []datatypes.BlockedSession{
		blocked(1, nil, "HOLDER", 900),
	}

	got := BlockingSummary(sessions)

	if got.RootBlockers != 1 || got.TotalBlocked != 0 {
		t.Errorf("roots/blocked = %d/%d, want 1/0", got.RootBlockers, got.TotalBlocked)
	}
	if len(got.AffectedPrincipals) != 0 {
		t.Errorf("AffectedPrincipals = %v, holder is not a victim", got.AffectedPrincipals)
	}
}

func TestBlockingSummary_EmptySerializesAsEmptyList(t *testing.T) {
	got := BlockingSummary(nil)
	if got.AffectedPrincipals == nil {
		t.Error("AffectedPrincipals = nil, want [] so JSON renders a list")
	}
	if got.TotalBlocked != 0 || got.RootBlockers != 0 || got.MaxWaitSeconds != 0 {
		t.Errorf("empty summary = %+v", got)
	}
}
