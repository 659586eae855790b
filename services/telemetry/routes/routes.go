// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/handlers"
)

// RequestID tags every request with an id for log correlation. An
// inbound X-Request-Id is honored so the dashboard's gateway can stitch
// its own traces to ours.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestId", id)
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

// SetupRoutes registers every telemetry endpoint on the router.
func SetupRoutes(router *gin.Engine, server *handlers.Server) {
	router.Use(RequestID())
	router.Use(otelgin.Middleware("telemetry"))

	router.GET("/health", server.HandleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version 1 group
	v1 := router.Group("/v1")
	{
		sessions := v1.Group("/sessions")
		{
			sessions.GET("/blocking", server.HandleBlockingSessions)
		}
		v1.GET("/sqlmon/monitor", server.HandleSQLMonitor)

		traces := v1.Group("/traces")
		{
			traces.GET("/recent", server.HandleRecentTraces)
			traces.GET("/:traceId/workflow", server.HandleWorkflow)
		}

		v1.GET("/checks/score", server.HandleChecksScore)
		v1.GET("/coordinator/health", server.HandleCoordinatorHealth)

		// Cache administration routes
		cacheAdmin := v1.Group("/cache")
		{
			cacheAdmin.GET("/stats", server.HandleCacheStats)
			cacheAdmin.POST("/clear", server.HandleCacheClear)
		}
	}
}
