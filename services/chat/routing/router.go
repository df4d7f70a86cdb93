// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package routing implements the ordered intent-routing decision procedure
// and the per-user clarification redirect policy.
package routing

import (
	"context"
	"log/slog"
	"strings"
)

// =============================================================================
// Route Labels and Contracts
// =============================================================================

// Route labels emitted by the router itself. Handler-produced labels
// (knowledge, support, handoff:ticket, slack:*) come from their packages.
// All labels are stable wire format.
const (
	// RouteClarification is the terminal default when no intent matches.
	RouteClarification = "router"

	// RouteWebSearch labels replies assembled from open web results.
	RouteWebSearch = "websearch"
)

// msgClarification asks the user to rephrase. Terminal fallback reply.
const msgClarification = "Não entendi bem o assunto. Pode reformular ou dar mais detalhes?"

// webSearchTopK bounds how many open web results feed a reply.
const webSearchTopK = 3

// Handler is the delegated call contract every agent implements.
//
// Handlers resolve their own collaborator failures internally and always
// produce a (route, answer) pair; they never abort the turn.
type Handler interface {
	Handle(ctx context.Context, message, userID string) (route string, answer string)
}

// SearchResult is one normalized open web result.
type SearchResult struct {
	Title string
	URL   string
}

// Searcher is the open web search collaborator contract. An empty result is
// a valid, non-error outcome; implementations own their timeouts and must
// degrade to empty rather than block.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) []SearchResult
}

// =============================================================================
// Router
// =============================================================================

// Router maps a message to a named route by fixed keyword precedence.
//
// # Description
//
//	Deterministic decision procedure, first matching category wins,
//	independent of any confidence score:
//
//	  1. Explicit team-notification vocabulary  → notify handler
//	  2. Business/product vocabulary            → knowledge handler
//	  3. Account/support vocabulary             → support handler
//	  4. Explicit human-escalation phrases      → handoff handler
//	  5. Open web search with results           → formatted result list
//	  6. Otherwise                              → clarification (terminal)
//
//	The router holds no per-call mutable state; clarification counting
//	lives in RedirectPolicy and is invoked by the orchestrator, not here.
//
// # Thread Safety
//
// Safe for concurrent use: the vocabulary is immutable and handlers must be
// concurrent-safe per the Handler contract.
type Router struct {
	notify    Handler
	knowledge Handler
	support   Handler
	handoff   Handler
	search    Searcher
	vocab     *intentVocabulary
	logger    *slog.Logger
}

// NewRouter constructs a Router over the given handlers.
//
// # Inputs
//
//   - knowledge: The business knowledge path. When the external generator is
//     enabled this is the grounded agent; otherwise the local BM25 agent.
//   - search: May be nil, which skips category 5 entirely.
//
// # Outputs
//
//   - *Router: The constructed router. Never nil.
//   - error: Non-nil only if the embedded vocabulary fails to parse.
func NewRouter(notify, knowledge, support, handoff Handler, search Searcher, logger *slog.Logger) (*Router, error) {
	vocab, err := loadIntentVocabulary()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		notify:    notify,
		knowledge: knowledge,
		support:   support,
		handoff:   handoff,
		search:    search,
		vocab:     vocab,
		logger:    logger,
	}, nil
}

// Route selects a handler for the message and returns its (route, answer).
//
// # Description
//
//	Pure keyword containment, case-insensitive, evaluated in fixed
//	precedence order. The clarification fallback is always reachable and
//	never errors.
//
// # Thread Safety
//
// Safe for concurrent use.
func (r *Router) Route(ctx context.Context, message, userID string) (string, string) {
	lower := strings.ToLower(message)

	if matchesAny(lower, r.vocab.Notify) {
		return r.notify.Handle(ctx, message, userID)
	}

	if matchesAny(lower, r.vocab.Knowledge) {
		r.logger.Debug("routing: business knowledge intent", slog.String("user_id", userID))
		return r.knowledge.Handle(ctx, message, userID)
	}

	if matchesAny(lower, r.vocab.Support) {
		return r.support.Handle(ctx, message, userID)
	}

	if matchesAny(lower, r.vocab.Handoff) {
		return r.handoff.Handle(ctx, message, userID)
	}

	if r.search != nil {
		if results := r.search.Search(ctx, message, webSearchTopK); len(results) > 0 {
			formatted := make([]string, 0, len(results))
			for _, res := range results {
				formatted = append(formatted, res.Title+" ("+res.URL+")")
			}
			return RouteWebSearch, "Resultados relacionados: " + strings.Join(formatted, "; ")
		}
	}

	r.logger.Debug("routing: no intent match, requesting clarification", slog.String("user_id", userID))
	return RouteClarification, msgClarification
}

func matchesAny(lower string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
