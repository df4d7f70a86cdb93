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
	"log/slog"
	"strings"

	"github.com/AleutianAI/agentswarm/services/llm"
)

// Route labels for the generation path. The fallback variant tells observers
// the reply was produced locally after the generator declined or failed.
const (
	RouteLLM         = "llm"
	RouteLLMFallback = "llm:fallback"
)

// contextBudgetChars caps how much retrieved text is passed to the generator.
const contextBudgetChars = 4000

// msgNoContext is the degraded reply when generation fails with no usable
// retrieved context.
const msgNoContext = "Sem contexto relevante encontrado."

// GroundedAgent answers with the external generator, grounded on retrieved
// documents, degrading to the local extraction path when the generator is
// unavailable or fails.
//
// # Thread Safety
//
// Safe for concurrent use.
type GroundedAgent struct {
	knowledge *Agent
	generator llm.Generator
	logger    *slog.Logger
}

// NewGroundedAgent wires a GroundedAgent. A nil generator behaves as the
// pass-through fallback.
func NewGroundedAgent(knowledge *Agent, generator llm.Generator, logger *slog.Logger) *GroundedAgent {
	if logger == nil {
		logger = slog.Default()
	}
	if generator == nil {
		generator = llm.PassthroughGenerator{}
	}
	return &GroundedAgent{knowledge: knowledge, generator: generator, logger: logger}
}

// Handle returns (route, answer) for a business knowledge message.
//
// # Description
//
//	Retrieves the top documents, trims them to the context character budget
//	and asks the generator. When the generator is unavailable, the extractor
//	chain produces the answer; when a started generation fails, the trimmed
//	context itself is the best-effort reply. Both degraded outcomes carry
//	the fallback route label.
func (a *GroundedAgent) Handle(ctx context.Context, message, userID string) (string, string) {
	chunks := a.knowledge.Retrieve(message, retrievalK)

	trimmed := make([]string, 0, len(chunks))
	total := 0
	for _, ch := range chunks {
		if total+len(ch) > contextBudgetChars {
			break
		}
		trimmed = append(trimmed, ch)
		total += len(ch)
	}

	answer, err := a.generator.Generate(ctx, message, trimmed)
	if err == nil {
		return RouteLLM, answer
	}

	if errors.Is(err, llm.ErrGeneratorUnavailable) {
		a.logger.Debug("knowledge: generator unavailable, using extraction path",
			slog.String("user_id", userID),
		)
		_, local := a.knowledge.Handle(ctx, message, userID)
		return RouteLLMFallback, local
	}

	a.logger.Warn("knowledge: generation failed, returning retrieved context",
		slog.String("error", err.Error()),
	)
	joined := strings.Join(trimmed, "\n\n")
	if joined == "" {
		joined = msgNoContext
	}
	return RouteLLMFallback, joined
}
