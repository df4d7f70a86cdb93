// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routing

import (
	"context"
	"strings"
	"testing"
)

// =============================================================================
// Helpers
// =============================================================================

// stubHandler records invocations and returns a fixed (route, answer).
type stubHandler struct {
	route  string
	answer string
	calls  int
}

func (s *stubHandler) Handle(_ context.Context, _, _ string) (string, string) {
	s.calls++
	return s.route, s.answer
}

// stubSearcher returns a fixed result list.
type stubSearcher struct {
	results []SearchResult
	calls   int
}

func (s *stubSearcher) Search(_ context.Context, _ string, topK int) []SearchResult {
	s.calls++
	if len(s.results) > topK {
		return s.results[:topK]
	}
	return s.results
}

type testRouter struct {
	router    *Router
	notify    *stubHandler
	knowledge *stubHandler
	support   *stubHandler
	handoff   *stubHandler
	search    *stubSearcher
}

func newTestRouter(t *testing.T, search *stubSearcher) *testRouter {
	t.Helper()
	tr := &testRouter{
		notify:    &stubHandler{route: "slack:notify", answer: "sent"},
		knowledge: &stubHandler{route: "knowledge", answer: "answer"},
		support:   &stubHandler{route: "support", answer: "account"},
		handoff:   &stubHandler{route: "handoff:ticket", answer: "ticket"},
		search:    search,
	}
	var searcher Searcher
	if search != nil {
		searcher = search
	}
	r, err := NewRouter(tr.notify, tr.knowledge, tr.support, tr.handoff, searcher, nil)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	tr.router = r
	return tr
}

// =============================================================================
// Precedence Tests
// =============================================================================

func TestRoute_NotifyIntent(t *testing.T) {
	tr := newTestRouter(t, nil)
	route, _ := tr.router.Route(context.Background(), "Envie no Slack: deploy concluído", "u1")
	if route != "slack:notify" || tr.notify.calls != 1 {
		t.Errorf("route = %q, notify calls = %d", route, tr.notify.calls)
	}
}

func TestRoute_KnowledgeIntent(t *testing.T) {
	tr := newTestRouter(t, nil)
	route, _ := tr.router.Route(context.Background(), "Quais as taxas da maquininha?", "u1")
	if route != "knowledge" || tr.knowledge.calls != 1 {
		t.Errorf("route = %q, knowledge calls = %d", route, tr.knowledge.calls)
	}
}

func TestRoute_SupportIntent(t *testing.T) {
	tr := newTestRouter(t, nil)
	route, _ := tr.router.Route(context.Background(), "I can't sign in to my account", "u1")
	if route != "support" || tr.support.calls != 1 {
		t.Errorf("route = %q, support calls = %d", route, tr.support.calls)
	}
}

func TestRoute_HandoffIntent(t *testing.T) {
	tr := newTestRouter(t, nil)
	route, _ := tr.router.Route(context.Background(), "I want to talk to a human", "u1")
	if route != "handoff:ticket" || tr.handoff.calls != 1 {
		t.Errorf("route = %q, handoff calls = %d", route, tr.handoff.calls)
	}
}

func TestRoute_NotifyBeatsKnowledge(t *testing.T) {
	tr := newTestRouter(t, nil)
	// Contains both Slack and product vocabulary; notification wins.
	route, _ := tr.router.Route(context.Background(), "Avise no slack sobre as taxas do pix", "u1")
	if route != "slack:notify" {
		t.Errorf("route = %q, want notify to win precedence", route)
	}
	if tr.knowledge.calls != 0 {
		t.Errorf("knowledge handler must not run, calls = %d", tr.knowledge.calls)
	}
}

func TestRoute_KnowledgeBeatsSupport(t *testing.T) {
	tr := newTestRouter(t, nil)
	route, _ := tr.router.Route(context.Background(), "Posso pagar minha senha com pix?", "u1")
	if route != "knowledge" {
		t.Errorf("route = %q, want knowledge to win precedence", route)
	}
}

func TestRoute_CaseInsensitive(t *testing.T) {
	tr := newTestRouter(t, nil)
	route, _ := tr.router.Route(context.Background(), "MAQUININHA", "u1")
	if route != "knowledge" {
		t.Errorf("route = %q, want knowledge for uppercase match", route)
	}
}

// =============================================================================
// Web Search and Clarification Tests
// =============================================================================

func TestRoute_WebSearchFallback(t *testing.T) {
	search := &stubSearcher{results: []SearchResult{
		{Title: "Primeiro", URL: "https://a.example/x"},
		{Title: "Segundo", URL: "https://b.example/y"},
	}}
	tr := newTestRouter(t, search)

	route, answer := tr.router.Route(context.Background(), "notícias de hoje", "u1")
	if route != RouteWebSearch {
		t.Fatalf("route = %q, want %q", route, RouteWebSearch)
	}
	want := "Resultados relacionados: Primeiro (https://a.example/x); Segundo (https://b.example/y)"
	if answer != want {
		t.Errorf("answer = %q, want %q", answer, want)
	}
}

func TestRoute_EmptySearchFallsToClarification(t *testing.T) {
	search := &stubSearcher{}
	tr := newTestRouter(t, search)

	route, answer := tr.router.Route(context.Background(), "zzzz qqqq", "u1")
	if route != RouteClarification {
		t.Errorf("route = %q, want %q", route, RouteClarification)
	}
	if answer != msgClarification {
		t.Errorf("answer = %q", answer)
	}
	if search.calls != 1 {
		t.Errorf("search calls = %d, want 1", search.calls)
	}
}

func TestRoute_NilSearcherSkipsWebSearch(t *testing.T) {
	tr := newTestRouter(t, nil)
	route, _ := tr.router.Route(context.Background(), "zzzz qqqq", "u1")
	if route != RouteClarification {
		t.Errorf("route = %q, want clarification with nil searcher", route)
	}
}

func TestRoute_IntentMatchSkipsSearch(t *testing.T) {
	search := &stubSearcher{results: []SearchResult{{Title: "x", URL: "https://x.example"}}}
	tr := newTestRouter(t, search)

	if route, _ := tr.router.Route(context.Background(), "extrato da conta", "u1"); !strings.HasPrefix(route, "knowledge") && route != "support" {
		t.Errorf("route = %q", route)
	}
	if search.calls != 0 {
		t.Errorf("search must not run on intent match, calls = %d", search.calls)
	}
}
