// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adibirzu/oci-coordinator-dashboards/pkg/validation"
	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/cache"
	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/datatypes"
	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/derive"
	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/normalize"
	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/reconstruct"
	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/upstream"
)

// HandleWorkflow serves GET /v1/traces/:traceId/workflow: one trace
// reconstructed as an ordered pipeline-stage sequence.
func (s *Server) HandleWorkflow(c *gin.Context) {
	traceID, err := validation.SanitizeTraceID(c.Param("traceId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, datatypes.NewErrorEnvelope(
			datatypes.StatusError, err.Error()))
		return
	}
	key := cache.Key(endpointWorkflow, map[string]string{"traceId": traceID})

	if !parseSkipCache(c) {
		if v, age, hit := s.caches.Traces.Get(key); hit {
			s.recordCache(endpointWorkflow, true)
			resp := v.(datatypes.WorkflowResponse)
			resp.Cached = true
			resp.CacheAgeSeconds = int64(age.Seconds())
			s.recordRequest(endpointWorkflow, resp.Status)
			c.JSON(http.StatusOK, resp)
			return
		}
		s.recordCache(endpointWorkflow, false)
	}

	v, _, _ := s.flight.Do(key, func() (any, error) {
		return s.buildWorkflow(c.Request.Context(), key, traceID), nil
	})
	resp := v.(datatypes.WorkflowResponse)
	s.recordRequest(endpointWorkflow, resp.Status)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) buildWorkflow(ctx context.Context, key, traceID string) datatypes.WorkflowResponse {
	records, env := s.fetchRecords(ctx, backendAPM,
		func(ctx context.Context) ([]normalize.RawRecord, error) {
			return s.traces.FetchTraceSpans(ctx, traceID)
		},
		func() []normalize.RawRecord {
			return upstream.DemoTraceSpans(traceID)
		})

	resp := datatypes.WorkflowResponse{Envelope: env}
	if !usable(env) {
		return resp
	}

	spans := normalize.Spans(records)
	idx := reconstruct.BuildSpanIndex(spans)
	resp.Workflow = s.mapper.BuildWorkflow(traceID, spans, idx)
	if len(idx.RootCandidates) > 1 {
		resp.RootCandidates = idx.RootCandidates
	}

	s.caches.Traces.Put(key, resp)
	return resp
}

// HandleRecentTraces serves GET /v1/traces/recent: the latest
// coordinator workflow summaries with window aggregates. The offset
// applies after normalization, so stats always describe the returned
// window.
func (s *Server) HandleRecentTraces(c *gin.Context) {
	limit, ok := parseLimit(c, 25, 200)
	if !ok {
		return
	}
	offset, ok := parseOffset(c)
	if !ok {
		return
	}
	key := cache.Key(endpointRecent, map[string]string{
		"limit":  fmt.Sprintf("%d", limit),
		"offset": fmt.Sprintf("%d", offset),
	})

	if !parseSkipCache(c) {
		if v, age, hit := s.caches.Traces.Get(key); hit {
			s.recordCache(endpointRecent, true)
			resp := v.(datatypes.RecentTracesResponse)
			resp.Cached = true
			resp.CacheAgeSeconds = int64(age.Seconds())
			s.recordRequest(endpointRecent, resp.Status)
			c.JSON(http.StatusOK, resp)
			return
		}
		s.recordCache(endpointRecent, false)
	}

	v, _, _ := s.flight.Do(key, func() (any, error) {
		return s.buildRecentTraces(c.Request.Context(), key, limit, offset), nil
	})
	resp := v.(datatypes.RecentTracesResponse)
	s.recordRequest(endpointRecent, resp.Status)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) buildRecentTraces(ctx context.Context, key string, limit, offset int) datatypes.RecentTracesResponse {
	records, env := s.fetchRecords(ctx, backendAPM,
		func(ctx context.Context) ([]normalize.RawRecord, error) {
			return s.traces.FetchRecentTraces(ctx, limit+offset)
		},
		func() []normalize.RawRecord {
			return upstream.DemoRecentTraces(limit + offset)
		})

	resp := datatypes.RecentTracesResponse{Envelope: env}
	if !usable(env) {
		return resp
	}

	summaries := normalize.TraceSummaries(records)
	if offset >= len(summaries) {
		summaries = nil
	} else {
		summaries = summaries[offset:]
	}
	if len(summaries) > limit {
		summaries = summaries[:limit]
	}
	resp.Traces = summaries
	resp.Stats = derive.WorkflowStats(resp.Traces)

	s.caches.Traces.Put(key, resp)
	return resp
}
