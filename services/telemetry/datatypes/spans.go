// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import "time"

// Span is one normalized timed unit of work from the APM backend.
// ParentID is empty for a root span.
type Span struct {
	SpanID    string            `json:"spanId"`
	ParentID  string            `json:"parentId,omitempty"`
	TraceID   string            `json:"traceId"`
	Name      string            `json:"name"`
	Operation string            `json:"operation,omitempty"`
	Start     time.Time         `json:"start"`
	End       time.Time         `json:"end"`
	Error     bool              `json:"error"`
	Tags      map[string]string `json:"tags,omitempty"`
}

// Duration returns the span's wall-clock duration, never negative.
func (s Span) Duration() time.Duration {
	if s.End.Before(s.Start) {
		return 0
	}
	return s.End.Sub(s.Start)
}

// Stage is a logical phase of the coordinator agent pipeline. Spans are
// matched to stages by name pattern, not by an explicit upstream field.
type Stage string

const (
	StageIntake   Stage = "intake"
	StageClassify Stage = "classify"
	StageRetrieve Stage = "retrieve"
	StageGenerate Stage = "generate"
	StageExecute  Stage = "execute"
	StageRespond  Stage = "respond"
)

// StageOrder is the canonical presentation order of the pipeline when no
// timing information is available. Output sequences are sorted by
// aggregate start time, not by this order.
var StageOrder = []Stage{
	StageIntake, StageClassify, StageRetrieve,
	StageGenerate, StageExecute, StageRespond,
}

// StageExecution aggregates every span matched to one stage.
type StageExecution struct {
	Stage Stage `json:"stage"`

	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	// DurationMillis is the summed duration of all matched spans, which
	// can exceed End-Start when spans overlap.
	DurationMillis int64 `json:"durationMs"`

	SpanCount int  `json:"spanCount"`
	Error     bool `json:"error"`

	// SpanIDs preserves which spans were folded into this stage.
	SpanIDs []string `json:"spanIds,omitempty"`
}

// Workflow statuses.
const (
	WorkflowSuccess = "success"
	WorkflowError   = "error"
	WorkflowPending = "pending"
)

// WorkflowTrace is one coordinator request reconstructed as an ordered
// stage sequence. Derived, never mutated after construction.
type WorkflowTrace struct {
	TraceID        string           `json:"traceId"`
	Stages         []StageExecution `json:"stages"`
	Status         string           `json:"status"`
	DurationMillis int64            `json:"durationMs"`

	// Query and Response are extracted from root-span tags when present.
	Query    string `json:"query,omitempty"`
	Response string `json:"response,omitempty"`
}

// TraceSummary is one row of the recent-traces listing.
type TraceSummary struct {
	TraceID        string `json:"traceId"`
	RootName       string `json:"rootName"`
	Status         string `json:"status"`
	DurationMillis int64  `json:"durationMs"`
	SpanCount      int64  `json:"spanCount"`
	ErrorSpanCount int64  `json:"errorSpanCount"`
}

// WorkflowStats aggregates a recent-traces window.
type WorkflowStats struct {
	Count             int     `json:"count"`
	ErrorCount        int     `json:"errorCount"`
	ErrorRatePercent  float64 `json:"errorRatePercent"`
	AvgDurationMillis int64   `json:"avgDurationMs"`
	MaxDurationMillis int64   `json:"maxDurationMs"`
}

// WorkflowResponse is the /v1/traces/:traceId/workflow payload.
type WorkflowResponse struct {
	Envelope
	Workflow WorkflowTrace `json:"workflow"`

	// RootCandidates lists every span with no parent when the trace has
	// more than one; the first was used as root.
	RootCandidates []string `json:"rootCandidates,omitempty"`
}

// RecentTracesResponse is the /v1/traces/recent payload.
type RecentTracesResponse struct {
	Envelope
	Traces []TraceSummary `json:"traces"`
	Stats  WorkflowStats  `json:"stats"`
}
