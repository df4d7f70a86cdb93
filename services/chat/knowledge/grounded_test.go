// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package knowledge

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/AleutianAI/agentswarm/services/llm"
)

// fakeGenerator returns a canned answer or error.
type fakeGenerator struct {
	answer string
	err    error
	calls  int
	docs   []string
}

func (f *fakeGenerator) Generate(_ context.Context, _ string, contextDocs []string) (string, error) {
	f.calls++
	f.docs = contextDocs
	return f.answer, f.err
}

func newKnowledgeAgent(t *testing.T, docs []string) *Agent {
	t.Helper()
	a, err := NewAgent(NewCorpus(docs, nil), nil)
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}
	return a
}

// =============================================================================
// Knowledge Agent Tests
// =============================================================================

func TestAgent_EmptyCorpusReply(t *testing.T) {
	a := newKnowledgeAgent(t, nil)
	route, answer := a.Handle(context.Background(), "taxas?", "u1")
	if route != RouteKnowledge || answer != msgNoRelevantInfo {
		t.Errorf("route = %q, answer = %q", route, answer)
	}
}

func TestAgent_AnswersFromCorpus(t *testing.T) {
	a := newKnowledgeAgent(t, []string{"Taxas do Pix: 0% para receber na hora"})
	route, answer := a.Handle(context.Background(), "qual a taxa do pix", "u1")
	if route != RouteKnowledge {
		t.Fatalf("route = %q", route)
	}
	if answer == "" || answer == msgNoRelevantInfo {
		t.Errorf("answer = %q", answer)
	}
}

// =============================================================================
// GroundedAgent Tests
// =============================================================================

func TestGroundedAgent_GeneratorAnswer(t *testing.T) {
	a := newKnowledgeAgent(t, []string{"Taxas do Pix: 0%"})
	gen := &fakeGenerator{answer: "resposta gerada"}
	g := NewGroundedAgent(a, gen, nil)

	route, answer := g.Handle(context.Background(), "taxas pix", "u1")
	if route != RouteLLM || answer != "resposta gerada" {
		t.Errorf("route = %q, answer = %q", route, answer)
	}
	if gen.calls != 1 || len(gen.docs) == 0 {
		t.Errorf("generator calls = %d, docs = %v", gen.calls, gen.docs)
	}
}

func TestGroundedAgent_UnavailableFallsBackToExtraction(t *testing.T) {
	a := newKnowledgeAgent(t, []string{"Taxas do Pix: 0% para receber"})
	g := NewGroundedAgent(a, llm.PassthroughGenerator{}, nil)

	route, answer := g.Handle(context.Background(), "taxa pix", "u1")
	if route != RouteLLMFallback {
		t.Fatalf("route = %q, want %q", route, RouteLLMFallback)
	}
	if answer == "" {
		t.Error("expected local extraction answer")
	}
}

func TestGroundedAgent_NilGeneratorBehavesAsPassthrough(t *testing.T) {
	a := newKnowledgeAgent(t, []string{"Taxas do Pix: 0%"})
	g := NewGroundedAgent(a, nil, nil)

	route, _ := g.Handle(context.Background(), "taxa", "u1")
	if route != RouteLLMFallback {
		t.Errorf("route = %q", route)
	}
}

func TestGroundedAgent_FailureReturnsRetrievedContext(t *testing.T) {
	a := newKnowledgeAgent(t, []string{"Taxas do Pix: 0%"})
	gen := &fakeGenerator{err: errors.New("rate limited")}
	g := NewGroundedAgent(a, gen, nil)

	route, answer := g.Handle(context.Background(), "taxa pix", "u1")
	if route != RouteLLMFallback {
		t.Fatalf("route = %q", route)
	}
	if !strings.Contains(answer, "Taxas do Pix: 0%") {
		t.Errorf("answer = %q, want retrieved context", answer)
	}
}

func TestGroundedAgent_FailureWithEmptyCorpus(t *testing.T) {
	a := newKnowledgeAgent(t, nil)
	gen := &fakeGenerator{err: errors.New("boom")}
	g := NewGroundedAgent(a, gen, nil)

	_, answer := g.Handle(context.Background(), "qualquer", "u1")
	if answer != msgNoContext {
		t.Errorf("answer = %q, want %q", answer, msgNoContext)
	}
}
