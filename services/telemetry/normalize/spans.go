// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package normalize

import (
	"time"

	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/datatypes"
)

var (
	aliasSpanID     = []string{"spanId", "span_id", "key", "SPAN_ID"}
	aliasParentID   = []string{"parentSpanId", "parent_span_id", "parentId", "PARENT_SPAN_ID"}
	aliasTraceID    = []string{"traceId", "trace_id", "traceKey", "TRACE_ID"}
	aliasSpanName   = []string{"displayName", "operationName", "name", "SPAN_NAME"}
	aliasOperation  = []string{"operation", "kind", "spanKind"}
	aliasSpanStart  = []string{"timeStarted", "startTime", "start_time", "startTimeMillis"}
	aliasSpanEnd    = []string{"timeEnded", "endTime", "end_time", "endTimeMillis"}
	aliasSpanDurMs  = []string{"durationInMs", "duration_ms", "durationMs", "duration"}
	aliasSpanError  = []string{"isError", "error", "error_flag", "hasError"}
	aliasSpanTags   = []string{"tags", "attributes", "tagMap"}
	aliasTagName    = []string{"tagName", "key", "name"}
	aliasTagValue   = []string{"tagValue", "value"}
	aliasRootName   = []string{"rootSpanServiceName", "rootName", "serviceName", "root_span_name"}
	aliasSpanCount  = []string{"spanCount", "span_count", "totalSpans"}
	aliasErrorSpans = []string{"errorSpanCount", "error_span_count", "errorSpans"}
)

// Span normalizes one APM span record. When an end timestamp is absent
// it is synthesized from start + duration; when both are absent the
// span keeps zero times and contributes nothing to aggregates.
func Span(r RawRecord) datatypes.Span {
	s := datatypes.Span{
		SpanID:    r.Str(aliasSpanID...),
		ParentID:  r.Str(aliasParentID...),
		TraceID:   r.Str(aliasTraceID...),
		Name:      r.Str(aliasSpanName...),
		Operation: r.Str(aliasOperation...),
		Start:     r.Time(aliasSpanStart...),
		End:       r.Time(aliasSpanEnd...),
		Error:     r.Bool(aliasSpanError...),
		Tags:      spanTags(r),
	}

	if s.End.IsZero() && !s.Start.IsZero() {
		if ms := r.Int(aliasSpanDurMs...); ms > 0 {
			s.End = s.Start.Add(time.Duration(ms) * time.Millisecond)
		} else {
			s.End = s.Start
		}
	}
	return s
}

// Spans normalizes a flat span list in input order.
func Spans(records []RawRecord) []datatypes.Span {
	out := make([]datatypes.Span, 0, len(records))
	for _, r := range records {
		out = append(out, Span(r))
	}
	return out
}

// spanTags accepts both tag shapes the APM backend has shipped: a plain
// object, and a list of {tagName, tagValue} pairs.
func spanTags(r RawRecord) map[string]string {
	if m := r.Map(aliasSpanTags...); m != nil {
		tags := make(map[string]string, len(m))
		for k, v := range m {
			tags[k] = RawRecord{"v": v}.Str("v")
		}
		return tags
	}
	list := r.List(aliasSpanTags...)
	if list == nil {
		return nil
	}
	tags := make(map[string]string, len(list))
	for _, item := range list {
		pair, ok := item.(map[string]any)
		if !ok {
			continue
		}
		rec := RawRecord(pair)
		name := rec.Str(aliasTagName...)
		if name == "" {
			continue
		}
		tags[name] = rec.Str(aliasTagValue...)
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

// TraceSummary normalizes one row of the recent-traces listing.
func TraceSummary(r RawRecord) datatypes.TraceSummary {
	summary := datatypes.TraceSummary{
		TraceID:        r.Str(aliasTraceID...),
		RootName:       r.Str(aliasRootName...),
		DurationMillis: r.Int(aliasSpanDurMs...),
		SpanCount:      r.Int(aliasSpanCount...),
		ErrorSpanCount: r.Int(aliasErrorSpans...),
	}
	switch {
	case summary.ErrorSpanCount > 0 || r.Bool(aliasSpanError...):
		summary.Status = datatypes.WorkflowError
	case summary.DurationMillis == 0 && summary.SpanCount == 0:
		summary.Status = datatypes.WorkflowPending
	default:
		summary.Status = datatypes.WorkflowSuccess
	}
	return summary
}

// TraceSummaries normalizes a recent-traces listing in input order.
func TraceSummaries(records []RawRecord) []datatypes.TraceSummary {
	out := make([]datatypes.TraceSummary, 0, len(records))
	for _, r := range records {
		out = append(out, TraceSummary(r))
	}
	return out
}
