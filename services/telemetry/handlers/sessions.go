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

	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/cache"
	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/datatypes"
	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/derive"
	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/normalize"
	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/reconstruct"
	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/upstream"
)

// HandleBlockingSessions serves GET /v1/sessions/blocking: the current
// blocking-session snapshot reconstructed into a dependency forest with
// chain and summary views.
func (s *Server) HandleBlockingSessions(c *gin.Context) {
	limit, ok := parseLimit(c, 50, 500)
	if !ok {
		return
	}
	key := cache.Key(endpointBlocking, map[string]string{
		"limit": fmt.Sprintf("%d", limit),
	})

	if !parseSkipCache(c) {
		if v, age, hit := s.caches.Sessions.Get(key); hit {
			s.recordCache(endpointBlocking, true)
			resp := v.(datatypes.BlockingResponse)
			resp.Cached = true
			resp.CacheAgeSeconds = int64(age.Seconds())
			s.recordRequest(endpointBlocking, resp.Status)
			c.JSON(http.StatusOK, resp)
			return
		}
		s.recordCache(endpointBlocking, false)
	}

	v, _, _ := s.flight.Do(key, func() (any, error) {
		return s.buildBlocking(c.Request.Context(), key, limit), nil
	})
	resp := v.(datatypes.BlockingResponse)
	s.recordRequest(endpointBlocking, resp.Status)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) buildBlocking(ctx context.Context, key string, limit int) datatypes.BlockingResponse {
	records, env := s.fetchRecords(ctx, backendSessions,
		func(ctx context.Context) ([]normalize.RawRecord, error) {
			return s.sessions.FetchBlockingSessions(ctx, limit)
		},
		upstream.DemoBlockingSessions)

	resp := datatypes.BlockingResponse{Envelope: env}
	if !usable(env) {
		return resp
	}

	sessions := normalize.BlockedSessions(records)
	forest := reconstruct.BuildBlockingForest(sessions)
	resp.Tree = forest.Roots
	resp.Chain = forest.Chain
	resp.Summary = derive.BlockingSummary(sessions)

	s.caches.Sessions.Put(key, resp)
	s.sink.RecordBlockingSummary(ctx, resp.Summary)
	return resp
}

// HandleSQLMonitor serves GET /v1/sqlmon/monitor: the SQL monitoring
// snapshot with hang flags and aggregate DOP efficiency.
func (s *Server) HandleSQLMonitor(c *gin.Context) {
	key := cache.Key(endpointSQLMon, nil)

	if !parseSkipCache(c) {
		if v, age, hit := s.caches.SQLMon.Get(key); hit {
			s.recordCache(endpointSQLMon, true)
			resp := v.(datatypes.SQLMonitorResponse)
			resp.Cached = true
			resp.CacheAgeSeconds = int64(age.Seconds())
			s.recordRequest(endpointSQLMon, resp.Status)
			c.JSON(http.StatusOK, resp)
			return
		}
		s.recordCache(endpointSQLMon, false)
	}

	v, _, _ := s.flight.Do(key, func() (any, error) {
		return s.buildSQLMonitor(c.Request.Context(), key), nil
	})
	resp := v.(datatypes.SQLMonitorResponse)
	s.recordRequest(endpointSQLMon, resp.Status)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) buildSQLMonitor(ctx context.Context, key string) datatypes.SQLMonitorResponse {
	records, env := s.fetchRecords(ctx, backendSessions,
		s.sessions.FetchMonitoredStatements,
		upstream.DemoMonitoredStatements)

	resp := datatypes.SQLMonitorResponse{Envelope: env}
	if !usable(env) {
		return resp
	}

	statements := normalize.MonitoredStatements(records)
	resp.HungCount = derive.FlagHung(statements)
	resp.Statements = statements
	resp.DOPEfficiencyPercent = derive.DOPEfficiency(statements)

	s.caches.SQLMon.Put(key, resp)
	s.sink.RecordSQLMonitor(ctx, resp.HungCount, resp.DOPEfficiencyPercent)
	return resp
}
