// Copyright (C) 2025 Kodiak Systems (engineering@kodiaksystems.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package normalizer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Prometheus Metrics
// =============================================================================

var (
	// fallbackTotal counts analysis results that degraded to the sentinel
	// "Data Processing Error" record set. A rising rate here means the
	// agent's output shape drifted.
	fallbackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "kodiak",
		Subsystem: "normalizer",
		Name:      "fallback_total",
		Help:      "Number of analysis results replaced by the data-processing-error fallback.",
	})

	// riskFactorSource splits risk factors by origin: parsed from report
	// text versus synthesized from transaction heuristics.
	riskFactorSource = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kodiak",
		Subsystem: "normalizer",
		Name:      "risk_factors_total",
		Help:      "Risk factors produced, labeled by source.",
	}, []string{"source"})
)
