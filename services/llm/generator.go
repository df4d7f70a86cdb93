// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// =============================================================================
// Generator Capability
// =============================================================================

// ErrGeneratorUnavailable signals that no real generation backend is
// configured. Callers branch on it to choose the local extraction path.
var ErrGeneratorUnavailable = errors.New("llm: generator unavailable")

// Generator produces a grounded answer from a query plus retrieved context.
//
// # Description
//
//	The capability is abstracted so the routing core never knows whether a
//	real model or the pass-through fallback is active — only the route label
//	it reports differs. Implementations are selected by configuration, never
//	by build conditions.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use.
type Generator interface {
	// Generate returns the answer text, or an error when generation fails.
	// A failed or unavailable generation must be resolved by the caller with
	// a local fallback; it never aborts the turn.
	Generate(ctx context.Context, query string, contextDocs []string) (string, error)
}

// systemPrompt instructs the model to answer strictly from provided context,
// admit not knowing, and cite short quotes. Part of the collaborator
// contract; changing it changes answer grounding behavior.
const systemPrompt = "Você é um assistente especializado nos produtos InfinitePay. " +
	"Responda com base estritamente no contexto fornecido. " +
	"Se a resposta não estiver no contexto, diga explicitamente que não sabe e proponha próximos passos seguros. " +
	"Quando possível, cite trechos relevantes do contexto entre aspas curtas para justificar a resposta. " +
	"Seja conciso, claro e útil."

// BuildUserPrompt assembles the user prompt from the query and the trimmed
// context chunks.
func BuildUserPrompt(query string, chunks []string) string {
	header := "Pergunta do usuário:\n" + strings.TrimSpace(query)
	if len(chunks) == 0 {
		return header + "\n\nContexto:\n(não há contexto disponível)\n\n" +
			"Instruções adicionais:\n- Se não houver contexto suficiente, responda: " +
			"'Não sei com base no contexto disponível.' e sugira o que o usuário pode fornecer."
	}
	return header + "\n\nContexto:\n" + strings.Join(chunks, "\n\n") + "\n\n" +
		"Instruções adicionais:\n- Cite trechos relevantes entre aspas curtas quando justificar a resposta.\n" +
		"- Se a pergunta não for respondida pelo contexto, diga que não sabe e proponha próximos passos."
}

var generatorTracer = otel.Tracer("agentswarm.llm.generator")

// OpenAIGenerator implements Generator over an OpenAIClient.
//
// Thread Safety: safe for concurrent use.
type OpenAIGenerator struct {
	client      *OpenAIClient
	maxTokens   int
	temperature float32
	logger      *slog.Logger
}

// NewOpenAIGenerator wires a Generator over the given client.
func NewOpenAIGenerator(client *OpenAIClient, maxTokens int, temperature float32, logger *slog.Logger) *OpenAIGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	if maxTokens <= 0 {
		maxTokens = 512
	}
	return &OpenAIGenerator{
		client:      client,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

// Generate calls the model with the fixed system instruction and a prompt
// assembled from the query plus the retrieved context.
func (g *OpenAIGenerator) Generate(ctx context.Context, query string, contextDocs []string) (string, error) {
	if g.client == nil {
		return "", ErrGeneratorUnavailable
	}

	ctx, span := generatorTracer.Start(ctx, "llm.OpenAIGenerator.Generate",
		oteltrace.WithAttributes(
			attribute.Int("context_docs", len(contextDocs)),
		),
	)
	defer span.End()

	messages := []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: BuildUserPrompt(query, contextDocs)},
	}
	params := GenerationParams{
		Temperature: &g.temperature,
		MaxTokens:   &g.maxTokens,
	}

	start := time.Now()
	answer, err := g.client.Chat(ctx, messages, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		g.logger.Warn("llm: generation failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)),
		)
		return "", err
	}
	return answer, nil
}

// PassthroughGenerator is the configured fallback when no model backend is
// available. Generate always reports ErrGeneratorUnavailable so the caller
// takes the local extraction path.
type PassthroughGenerator struct{}

// Generate implements Generator.
func (PassthroughGenerator) Generate(context.Context, string, []string) (string, error) {
	return "", ErrGeneratorUnavailable
}
