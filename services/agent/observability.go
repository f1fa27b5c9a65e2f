// Copyright (C) 2025 Kodiak Systems (engineering@kodiaksystems.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("kodiak.agent")

var (
	callDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kodiak",
		Subsystem: "agent",
		Name:      "call_duration_seconds",
		Help:      "Latency of agent API calls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	callErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kodiak",
		Subsystem: "agent",
		Name:      "call_errors_total",
		Help:      "Failed agent API calls, labeled by operation and kind.",
	}, []string{"operation", "kind"})
)
