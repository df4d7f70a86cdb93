// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package chat orchestrates a conversational turn: input guardrails, intent
// routing, the clarification redirect policy, personality framing, and
// outbound PII sanitization. It also owns the HTTP surface.
package chat

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/agentswarm/services/chat/guardrails"
	"github.com/AleutianAI/agentswarm/services/chat/routing"
)

// RouteBlocked labels turns refused by the input guardrails.
const RouteBlocked = "guardrails:unsafe_intent"

// piiRedactedSuffix is appended to the route label when output sanitization
// redacted anything. Stable wire format.
const piiRedactedSuffix = ":pii_redacted"

var serviceTracer = otel.Tracer("agentswarm/chat")

// Service runs the full turn pipeline.
//
// # Description
//
//	Fixed stage order per turn:
//
//	  1. Input guardrails — block short-circuits everything, sanitize
//	     rewrites the message for all downstream stages.
//	  2. Router — first matching intent category wins.
//	  3. Redirect policy — a clarification outcome increments the user's
//	     counter; at the threshold (when enabled) the turn is re-issued to
//	     the handoff agent instead.
//	  4. Personality framing.
//	  5. Output sanitization — PII redaction, reflected in the route label.
//
// # Thread Safety
//
// Safe for concurrent use; all mutable state lives in the collaborators.
type Service struct {
	guards       *guardrails.Guardrails
	router       *routing.Router
	redirect     *routing.RedirectPolicy
	handoff      routing.Handler
	autoRedirect bool
	logger       *slog.Logger
}

// NewService wires the turn pipeline.
//
// # Inputs
//
//   - handoff: The escalation handler invoked on redirect override. Must be
//     the same handler the router delegates explicit escalations to.
//   - autoRedirect: Enables the clarification-threshold override.
func NewService(
	guards *guardrails.Guardrails,
	router *routing.Router,
	redirect *routing.RedirectPolicy,
	handoff routing.Handler,
	autoRedirect bool,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		guards:       guards,
		router:       router,
		redirect:     redirect,
		handoff:      handoff,
		autoRedirect: autoRedirect,
		logger:       logger,
	}
}

// Respond runs one conversational turn and returns (route, answer).
//
// # Description
//
//	Never returns an error: every failure mode downstream resolves to a
//	labeled reply. The route label is the wire-format audit trail of what
//	the pipeline did, including the ":pii_redacted" suffix when output
//	sanitization fired.
func (s *Service) Respond(ctx context.Context, message, userID string) (string, string) {
	start := time.Now()
	ctx, span := serviceTracer.Start(ctx, "chat.respond",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	verdict := s.guards.ValidateInput(message, userID)
	guardrailActionsTotal.WithLabelValues(string(verdict.Action)).Inc()
	if !verdict.Allowed {
		route := RouteBlocked
		answer := ApplyPersonality(verdict.Text)
		span.SetAttributes(attribute.String("chat.route", route))
		recordTurn(route, time.Since(start).Seconds())
		return route, answer
	}
	// Downstream stages only ever see the (possibly masked) verdict text.
	message = verdict.Text

	route, answer := s.router.Route(ctx, message, userID)

	if route == routing.RouteClarification {
		count := s.redirect.NoteClarification(userID)
		if s.autoRedirect && s.redirect.ShouldRedirect(userID) {
			s.logger.Info("chat: redirect policy override to handoff",
				slog.String("user_id", userID),
				slog.Int("clarification_count", count),
			)
			redirectOverridesTotal.Inc()
			route, answer = s.handoff.Handle(ctx, message, userID)
		}
	}

	answer = ApplyPersonality(answer)

	sanitized, redacted := s.guards.SanitizeOutput(answer)
	if redacted {
		route += piiRedactedSuffix
	}

	span.SetAttributes(attribute.String("chat.route", route))
	recordTurn(route, time.Since(start).Seconds())
	s.logger.Debug("chat: turn complete",
		slog.String("user_id", userID),
		slog.String("route", route),
	)
	return route, sanitized
}
