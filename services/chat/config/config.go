// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads service configuration from the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// Config holds all service configuration.
//
// Description:
//
//	Loaded from environment variables at startup via FromEnv(). All fields
//	have safe defaults; the service starts with no environment at all and
//	degrades features (LLM generation, Slack delivery, web retrieval) that
//	lack their credentials or toggles.
//
// Thread Safety: Config is a value type. Safe to copy and share after loading.
type Config struct {
	// Port is the HTTP listen port.
	// Env: PORT (default: "8080")
	Port string

	// DataDir is the root directory for local state.
	// Env: DATA_DIR (default: "./data")
	DataDir string

	// KnowledgeDir holds the retrieval corpus as *.txt files.
	// Always DataDir/knowledge.
	KnowledgeDir string

	// StorePath is the BadgerDB directory for tickets and the outbox.
	// Always DataDir/store.
	StorePath string

	// FetchWebCorpus enables seeding the corpus from product pages when the
	// knowledge directory is empty.
	// Env: RAG_USE_WEB (default: true)
	FetchWebCorpus bool

	// UseLLM enables LLM answer generation over retrieved context. When
	// false, the heuristic extractor answers directly.
	// Env: USE_LLM (default: false)
	UseLLM bool

	// LLMModel is the chat completion model name.
	// Env: LLM_MODEL (default: "gpt-4o-mini")
	LLMModel string

	// LLMMaxTokens caps the generated completion length.
	// Env: LLM_MAX_TOKENS (default: 512)
	LLMMaxTokens int

	// LLMTemperature is the sampling temperature for generation.
	// Env: LLM_TEMPERATURE (default: 0.2)
	LLMTemperature float64

	// OpenAIAPIKey authenticates LLM requests. Empty disables generation
	// even when UseLLM is set.
	// Env: OPENAI_API_KEY (default: "")
	OpenAIAPIKey string

	// SlackWebhookURL receives team notifications. Empty routes every
	// notification to the local outbox.
	// Env: SLACK_WEBHOOK_URL (default: "")
	SlackWebhookURL string

	// AutoRedirectOnFallback escalates users to handoff once they hit the
	// clarification threshold.
	// Env: AUTO_REDIRECT_ON_FALLBACK (default: false)
	AutoRedirectOnFallback bool

	// RedirectMaxClarifications is the clarification-count threshold for
	// the auto-redirect policy.
	// Env: REDIRECT_MAX_CLARIFICATIONS (default: 2)
	RedirectMaxClarifications int
}

// FromEnv reads the service configuration from environment variables.
//
// Outputs:
//   - Config: Fully populated configuration.
func FromEnv() Config {
	dataDir := envStr("DATA_DIR", "./data")
	return Config{
		Port:                      envStr("PORT", "8080"),
		DataDir:                   dataDir,
		KnowledgeDir:              filepath.Join(dataDir, "knowledge"),
		StorePath:                 filepath.Join(dataDir, "store"),
		FetchWebCorpus:            envBool("RAG_USE_WEB", true),
		UseLLM:                    envBool("USE_LLM", false),
		LLMModel:                  envStr("LLM_MODEL", "gpt-4o-mini"),
		LLMMaxTokens:              envInt("LLM_MAX_TOKENS", 512),
		LLMTemperature:            envFloat("LLM_TEMPERATURE", 0.2),
		OpenAIAPIKey:              envStr("OPENAI_API_KEY", ""),
		SlackWebhookURL:           envStr("SLACK_WEBHOOK_URL", ""),
		AutoRedirectOnFallback:    envBool("AUTO_REDIRECT_ON_FALLBACK", false),
		RedirectMaxClarifications: envInt("REDIRECT_MAX_CLARIFICATIONS", 2),
	}
}

// envStr reads a string environment variable with a default value.
func envStr(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// envBool reads a boolean environment variable with a default value.
// Accepts the strconv.ParseBool forms plus "1"/"0".
func envBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

// envInt reads an integer environment variable with a default value.
func envInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

// envFloat reads a float64 environment variable with a default value.
func envFloat(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}
