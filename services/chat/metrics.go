// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package chat

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Prometheus Metrics for the Chat Turn Pipeline
// =============================================================================

var (
	// turnsTotal counts completed turns by final route label.
	// Labels: route (knowledge, support, handoff:ticket, slack:notify, ...)
	turnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agentswarm",
		Subsystem: "chat",
		Name:      "turns_total",
		Help:      "Total completed chat turns by final route label",
	}, []string{"route"})

	// guardrailActionsTotal counts input validation outcomes.
	// Labels: action (allow, sanitize, block)
	guardrailActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agentswarm",
		Subsystem: "chat",
		Name:      "guardrail_actions_total",
		Help:      "Input guardrail verdicts by action",
	}, []string{"action"})

	// redirectOverridesTotal counts clarification turns converted to handoff
	// by the auto-redirect policy.
	redirectOverridesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "agentswarm",
		Subsystem: "chat",
		Name:      "redirect_overrides_total",
		Help:      "Clarification turns escalated to handoff by the redirect policy",
	})

	// turnDurationSeconds measures end-to-end turn latency.
	turnDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "agentswarm",
		Subsystem: "chat",
		Name:      "turn_duration_seconds",
		Help:      "End-to-end chat turn latency",
		Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10, 30},
	})
)

// recordTurn records a completed turn.
func recordTurn(route string, durationSec float64) {
	turnsTotal.WithLabelValues(route).Inc()
	turnDurationSeconds.Observe(durationSec)
}
