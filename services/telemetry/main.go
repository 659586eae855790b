// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/handlers"
	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/observability"
	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/routes"
	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/sink"
	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/stages"
	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/upstream"
)

// initTracer wires the OTLP gRPC exporter. Tracing is optional: with no
// collector endpoint configured the service runs untraced rather than
// failing startup.
func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		slog.Info("OTEL_EXPORTER_OTLP_ENDPOINT not set, tracing disabled")
		return func(context.Context) {}, nil
	}
	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("telemetry-service")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

func main() {
	port := os.Getenv("TELEMETRY_PORT")
	if port == "" {
		port = "12310"
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cleanup, err := initTracer()
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	cfg := upstream.ConfigFromEnv()
	if cfg.SessionsURL == "" {
		slog.Info("SESSIONS_API_URL not set, session endpoints report pending_config")
	}
	if cfg.APMURL == "" {
		slog.Info("APM_API_URL not set, trace endpoints report pending_config")
	}
	if cfg.CoordinatorURL == "" {
		slog.Info("COORDINATOR_API_URL not set, coordinator endpoints report pending_config")
	}

	mapper := stages.NewMapper()
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	if path := os.Getenv("STAGE_PATTERNS_FILE"); path != "" {
		patterns, err := stages.LoadPatterns(path)
		if err != nil {
			log.Fatalf("failed to load stage patterns from %s: %v", path, err)
		}
		mapper.SetPatterns(patterns)
		go func() {
			if err := stages.Watch(ctx, path, mapper, logger); err != nil {
				slog.Error("stage pattern watcher stopped", "error", err)
			}
		}()
	}

	// Demo fallback is on unless explicitly disabled; a fresh deployment
	// with no upstreams wired should still render dashboards.
	demoFallback := true
	if raw := os.Getenv("DEMO_FALLBACK"); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			demoFallback = parsed
		}
	}

	influx := sink.NewFromEnv(logger)
	defer influx.Close()

	server := handlers.NewServer(handlers.Config{
		Sessions:     upstream.NewSessionBackend(cfg, nil),
		Traces:       upstream.NewAPMBackend(cfg, nil),
		Coordinator:  upstream.NewCoordinatorBackend(cfg, nil),
		Mapper:       mapper,
		Metrics:      observability.InitMetrics(),
		Sink:         influx,
		Logger:       logger,
		DemoFallback: demoFallback,
	})

	router := gin.Default()
	routes.SetupRoutes(router, server)

	slog.Info("starting the telemetry server", "port", port, "demo_fallback", demoFallback)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
