// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/cache"
)

// HandleHealth serves GET /health for load balancers. It reports the
// service's own liveness only; upstream reachability is a per-endpoint
// status, not a liveness concern.
func (s *Server) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   "telemetry",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleCacheStats serves GET /v1/cache/stats: per-endpoint cache
// counters for tuning TTLs.
func (s *Server) HandleCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, map[string]cache.Stats{
		"sessions":    s.caches.Sessions.Stats(),
		"sqlmon":      s.caches.SQLMon.Stats(),
		"traces":      s.caches.Traces.Stats(),
		"checks":      s.caches.Checks.Stats(),
		"coordinator": s.caches.Coordinator.Stats(),
	})
}

// HandleCacheClear serves POST /v1/cache/clear, dropping every cached
// response. Stats counters survive so hit rates stay comparable across
// a clear.
func (s *Server) HandleCacheClear(c *gin.Context) {
	s.caches.Sessions.Clear()
	s.caches.SQLMon.Clear()
	s.caches.Traces.Clear()
	s.caches.Checks.Clear()
	s.caches.Coordinator.Clear()
	s.logger.Info("response caches cleared")
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
