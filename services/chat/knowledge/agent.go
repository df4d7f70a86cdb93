// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package knowledge implements the business-knowledge answering path:
// a BM25 index over unstructured product snapshots plus an ordered chain of
// heuristic extractors that reduce retrieved pages to one concise answer.
package knowledge

import (
	"context"
	"log/slog"
)

// RouteKnowledge labels replies produced by the local retrieval path.
// Route labels are the stable wire format callers branch on.
const RouteKnowledge = "knowledge"

// msgNoRelevantInfo is returned when retrieval produces zero documents.
// Degraded retrieval is resolved locally, never raised (spec'd behavior).
const msgNoRelevantInfo = "Desculpe, não encontrei informações relevantes nos materiais disponíveis."

// retrievalK is how many ranked documents feed the extractor chain.
const retrievalK = 5

// Agent answers business knowledge questions grounded on BM25 retrieval.
//
// # Thread Safety
//
// Safe for concurrent use: the corpus index is immutable between reloads and
// the extractor is stateless.
type Agent struct {
	corpus    *Corpus
	extractor *Extractor
	logger    *slog.Logger
}

// NewAgent wires a knowledge Agent over an existing corpus.
func NewAgent(corpus *Corpus, logger *slog.Logger) (*Agent, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ex, err := NewExtractor()
	if err != nil {
		return nil, err
	}
	return &Agent{corpus: corpus, extractor: ex, logger: logger}, nil
}

// Retrieve returns up to k ranked documents for the query.
func (a *Agent) Retrieve(query string, k int) []string {
	return a.corpus.Search(query, k)
}

// Handle returns (route, answer) for a business knowledge message.
//
// # Description
//
//	Retrieves the top documents and runs the extractor chain. Zero retrieved
//	documents short-circuit to a fixed "no relevant information" reply
//	before any extractor runs.
func (a *Agent) Handle(ctx context.Context, message, userID string) (string, string) {
	_ = ctx // retrieval and extraction are synchronous and in-memory

	matches := a.corpus.Search(message, retrievalK)
	if len(matches) == 0 {
		a.logger.Debug("knowledge: no retrieval matches", slog.String("user_id", userID))
		return RouteKnowledge, msgNoRelevantInfo
	}
	return RouteKnowledge, a.extractor.Answer(message, matches)
}
