// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package stages classifies APM spans into the logical phases of the
// coordinator agent pipeline and folds them into ordered stage
// executions.
package stages

import (
	"sort"
	"strings"
	"sync"

	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/datatypes"
	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/reconstruct"
)

// Root-span tag names the coordinator emits for the original user query
// and the final rendered answer.
const (
	tagQuery    = "coordinator.query"
	tagResponse = "coordinator.response"
)

// DefaultPatterns is the built-in stage pattern map. Matching is
// case-insensitive substring against span name and operation, so the
// entries here are lowercase fragments, not exact span names.
func DefaultPatterns() map[datatypes.Stage][]string {
	return map[datatypes.Stage][]string{
		datatypes.StageIntake:   {"intake", "receive", "ingress", "api.request"},
		datatypes.StageClassify: {"classify", "intent", "router", "triage"},
		datatypes.StageRetrieve: {"retrieve", "rag", "vector", "search", "context"},
		datatypes.StageGenerate: {"generate", "llm", "completion", "inference"},
		datatypes.StageExecute:  {"execute", "sql", "query", "tool"},
		datatypes.StageRespond:  {"respond", "render", "reply", "format"},
	}
}

// Mapper matches spans to stages. It is safe for concurrent use; the
// pattern map can be swapped at runtime by the config watcher.
type Mapper struct {
	mu       sync.RWMutex
	patterns map[datatypes.Stage][]string
}

// NewMapper returns a Mapper with the built-in pattern map.
func NewMapper() *Mapper {
	return &Mapper{patterns: DefaultPatterns()}
}

// SetPatterns replaces the pattern map. Stages absent from the new map
// stop matching entirely.
func (m *Mapper) SetPatterns(patterns map[datatypes.Stage][]string) {
	cloned := make(map[datatypes.Stage][]string, len(patterns))
	for stage, pats := range patterns {
		cloned[stage] = append([]string(nil), pats...)
	}
	m.mu.Lock()
	m.patterns = cloned
	m.mu.Unlock()
}

// MapStages folds a flat span list into stage executions.
//
// A span matches a stage when its name or operation contains any of the
// stage's patterns; one span may match several stages, which is
// accepted behavior since spans can represent multiple logical
// concerns. Stages with no matching span are omitted. The result is
// sorted by aggregate start time ascending — presentation order, not a
// causality claim.
func (m *Mapper) MapStages(spans []datatypes.Span) []datatypes.StageExecution {
	m.mu.RLock()
	patterns := m.patterns
	m.mu.RUnlock()

	var out []datatypes.StageExecution
	for _, stage := range datatypes.StageOrder {
		pats, ok := patterns[stage]
		if !ok {
			continue
		}
		exec := datatypes.StageExecution{Stage: stage}
		for _, s := range spans {
			if !matchesAny(s, pats) {
				continue
			}
			if !s.Start.IsZero() && (exec.Start.IsZero() || s.Start.Before(exec.Start)) {
				exec.Start = s.Start
			}
			if s.End.After(exec.End) {
				exec.End = s.End
			}
			exec.DurationMillis += s.Duration().Milliseconds()
			exec.Error = exec.Error || s.Error
			exec.SpanCount++
			exec.SpanIDs = append(exec.SpanIDs, s.SpanID)
		}
		if exec.SpanCount > 0 {
			out = append(out, exec)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

// BuildWorkflow assembles the full workflow view for one trace.
func (m *Mapper) BuildWorkflow(traceID string, spans []datatypes.Span, idx reconstruct.SpanIndex) datatypes.WorkflowTrace {
	wf := datatypes.WorkflowTrace{
		TraceID:        traceID,
		Stages:         m.MapStages(spans),
		DurationMillis: idx.Duration.Milliseconds(),
	}

	switch {
	case len(spans) == 0:
		wf.Status = datatypes.WorkflowPending
	case anyError(spans):
		wf.Status = datatypes.WorkflowError
	default:
		wf.Status = datatypes.WorkflowSuccess
	}

	if idx.Root != nil && idx.Root.Tags != nil {
		wf.Query = idx.Root.Tags[tagQuery]
		wf.Response = idx.Root.Tags[tagResponse]
	}
	return wf
}

func matchesAny(s datatypes.Span, patterns []string) bool {
	name := strings.ToLower(s.Name)
	op := strings.ToLower(s.Operation)
	for _, p := range patterns {
		if strings.Contains(name, p) || (op != "" && strings.Contains(op, p)) {
			return true
		}
	}
	return false
}

func anyError(spans []datatypes.Span) bool {
	for _, s := range spans {
		if s.Error {
			return true
		}
	}
	return false
}
