// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/cache"
	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/datatypes"
	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/derive"
	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/normalize"
	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/upstream"
)

// HandleChecksScore serves GET /v1/checks/score: the latest coordinator
// check run with the derived risk score and pass rate.
func (s *Server) HandleChecksScore(c *gin.Context) {
	key := cache.Key(endpointChecks, nil)

	if !parseSkipCache(c) {
		if v, age, hit := s.caches.Checks.Get(key); hit {
			s.recordCache(endpointChecks, true)
			resp := v.(datatypes.ChecksResponse)
			resp.Cached = true
			resp.CacheAgeSeconds = int64(age.Seconds())
			s.recordRequest(endpointChecks, resp.Status)
			c.JSON(http.StatusOK, resp)
			return
		}
		s.recordCache(endpointChecks, false)
	}

	v, _, _ := s.flight.Do(key, func() (any, error) {
		return s.buildChecksScore(c.Request.Context(), key), nil
	})
	resp := v.(datatypes.ChecksResponse)
	s.recordRequest(endpointChecks, resp.Status)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) buildChecksScore(ctx context.Context, key string) datatypes.ChecksResponse {
	records, env := s.fetchRecords(ctx, backendCoordinator,
		s.coord.FetchChecks,
		upstream.DemoChecks)

	resp := datatypes.ChecksResponse{Envelope: env}
	if !usable(env) {
		return resp
	}

	resp.Checks = normalize.CheckResults(records)
	resp.Score = derive.Score(resp.Checks)

	s.caches.Checks.Put(key, resp)
	s.sink.RecordScore(ctx, resp.Score)
	return resp
}

// HandleCoordinatorHealth serves GET /v1/coordinator/health: the
// coordinator agent's own health report, normalized.
func (s *Server) HandleCoordinatorHealth(c *gin.Context) {
	key := cache.Key(endpointCoordinator, nil)

	if !parseSkipCache(c) {
		if v, age, hit := s.caches.Coordinator.Get(key); hit {
			s.recordCache(endpointCoordinator, true)
			resp := v.(datatypes.CoordinatorResponse)
			resp.Cached = true
			resp.CacheAgeSeconds = int64(age.Seconds())
			s.recordRequest(endpointCoordinator, resp.Status)
			c.JSON(http.StatusOK, resp)
			return
		}
		s.recordCache(endpointCoordinator, false)
	}

	v, _, _ := s.flight.Do(key, func() (any, error) {
		return s.buildCoordinatorHealth(c.Request.Context(), key), nil
	})
	resp := v.(datatypes.CoordinatorResponse)
	s.recordRequest(endpointCoordinator, resp.Status)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) buildCoordinatorHealth(ctx context.Context, key string) datatypes.CoordinatorResponse {
	record, env := s.fetchRecord(ctx, backendCoordinator,
		s.coord.Health,
		upstream.DemoCoordinatorHealth)

	resp := datatypes.CoordinatorResponse{Envelope: env}
	if !usable(env) {
		return resp
	}

	resp.Coordinator = normalize.CoordinatorStatus(record)
	s.caches.Coordinator.Put(key, resp)
	return resp
}
