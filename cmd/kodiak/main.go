// Copyright (C) 2025 Kodiak Systems (engineering@kodiaksystems.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command kodiak starts the Kodiak AML monitoring API server.
//
// The server fronts the remote AML analysis agent: it normalizes the
// agent's step-event output into the dashboard and customer-analysis view
// models and serves them under /v1/aml.
//
// Usage:
//
//	go run ./cmd/kodiak
//	go run ./cmd/kodiak -port 9090
//
// Environment:
//
//	KODIAK_AGENT_BASE_URL   agent API base URL (default http://localhost:8000)
//	KODIAK_AGENT_APP_NAME   agent application name (default root_agent)
//	KODIAK_CACHE_DIR        analysis cache directory (empty disables caching)
//	KODIAK_SAMPLES_PATH     samples override file, hot-reloaded on change
//
// Example requests:
//
//	# Dashboard overview
//	curl http://localhost:8080/v1/aml/dashboard | jq
//
//	# Single-customer analysis
//	curl -X POST http://localhost:8080/v1/aml/customers/analyze \
//	  -H "Content-Type: application/json" \
//	  -d '{"customer_id": "C10045"}'
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/KodiakSystems/KodiakAML/services/agent"
	"github.com/KodiakSystems/KodiakAML/services/dashboard"
)

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	debug := flag.Bool("debug", false, "Enable debug mode")
	flag.Parse()

	if *debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// W3C TraceContext propagation so spans from the browser gateway and
	// the agent calls stitch into one trace.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	agentClient, err := agent.NewClientFromEnv()
	if err != nil {
		slog.Error("Invalid agent configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	samples := dashboard.NewSampleProvider()

	// Optional analysis cache. Unavailable cache disables caching, never
	// startup.
	cache := dashboard.OpenAnalysisCache(os.Getenv("KODIAK_CACHE_DIR"))

	svc := dashboard.NewService(agentClient, samples, cache)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("kodiak-aml"))
	if *debug {
		router.Use(gin.Logger())
	}

	svc.RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	watchCtx, cancelWatch := context.WithCancel(context.Background())
	if samplesPath := os.Getenv("KODIAK_SAMPLES_PATH"); samplesPath != "" {
		go dashboard.WatchSamples(watchCtx, samples, samplesPath)
	}

	printBanner(*port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		slog.Info("Shutting down Kodiak AML server")
		cancelWatch()
		if err := cache.Close(); err != nil {
			slog.Warn("Failed to close analysis cache", slog.String("error", err.Error()))
		}
		os.Exit(0)
	}()

	addr := fmt.Sprintf(":%d", *port)
	slog.Info("Starting Kodiak AML server", slog.String("address", addr))
	if err := router.Run(addr); err != nil {
		slog.Error("Failed to start server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func printBanner(port int) {
	banner := `
╔═══════════════════════════════════════════════════════════════════╗
║                       KODIAK AML SERVER                           ║
╠═══════════════════════════════════════════════════════════════════╣
║                                                                   ║
║  Anti-money-laundering monitoring API.                            ║
║                                                                   ║
║  Quick Start:                                                     ║
║  ┌─────────────────────────────────────────────────────────────┐  ║
║  │ # Health check                                              │  ║
║  │ curl http://localhost:%d/v1/aml/health                │  ║
║  │                                                             │  ║
║  │ # Dashboard overview (live data, sample fallback)           │  ║
║  │ curl http://localhost:%d/v1/aml/dashboard | jq        │  ║
║  │                                                             │  ║
║  │ # Analyze a customer                                        │  ║
║  │ curl -X POST http://localhost:%d/v1/aml/customers/analyze \ ║
║  │   -H "Content-Type: application/json" \                     │  ║
║  │   -d '{"customer_id": "C10045"}'                            │  ║
║  └─────────────────────────────────────────────────────────────┘  ║
║                                                                   ║
║  Endpoints:                                                       ║
║  ├── /v1/aml/dashboard            four overview result sets       ║
║  ├── /v1/aml/customers/analyze    single-customer analysis        ║
║  ├── /v1/aml/health, /ready       probes                          ║
║  └── /metrics                     Prometheus                      ║
║                                                                   ║
║  Press Ctrl+C to stop                                             ║
╚═══════════════════════════════════════════════════════════════════╝
`
	fmt.Printf(banner, port, port, port)
}
