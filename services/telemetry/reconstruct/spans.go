// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package reconstruct

import (
	"time"

	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/datatypes"
)

// SpanIndex is the traversal structure built from one trace's flat span
// list. Root selection is first-nil-parent-wins; RootCandidates records
// every candidate so callers can detect the ambiguous case instead of
// having it silently resolved for them.
type SpanIndex struct {
	// Root is the first span with no parent, nil when the trace is empty
	// or every span names a parent.
	Root *datatypes.Span

	// RootCandidates lists the span ids of every parentless span in
	// input order. Length > 1 means the trace is ambiguous.
	RootCandidates []string

	// Children maps a span id to its child spans in input order.
	Children map[string][]datatypes.Span

	// Duration is the root span's duration when a root exists, otherwise
	// the envelope max(end) - min(start) across all spans.
	Duration time.Duration
}

// BuildSpanIndex indexes a flat span list belonging to one trace.
func BuildSpanIndex(spans []datatypes.Span) SpanIndex {
	idx := SpanIndex{Children: make(map[string][]datatypes.Span)}

	for i := range spans {
		s := spans[i]
		if s.ParentID == "" {
			idx.RootCandidates = append(idx.RootCandidates, s.SpanID)
			if idx.Root == nil {
				root := s
				idx.Root = &root
			}
			continue
		}
		idx.Children[s.ParentID] = append(idx.Children[s.ParentID], s)
	}

	idx.Duration = traceDuration(idx.Root, spans)
	return idx
}

func traceDuration(root *datatypes.Span, spans []datatypes.Span) time.Duration {
	if root != nil && root.Duration() > 0 {
		return root.Duration()
	}

	var earliest, latest time.Time
	for _, s := range spans {
		if s.Start.IsZero() {
			continue
		}
		if earliest.IsZero() || s.Start.Before(earliest) {
			earliest = s.Start
		}
		if s.End.After(latest) {
			latest = s.End
		}
	}
	if earliest.IsZero() || !latest.After(earliest) {
		return 0
	}
	return latest.Sub(earliest)
}
