// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command agentswarm starts the conversational routing API server.
//
// The server front-ends a swarm of specialized agents:
//   - Business knowledge answers grounded on a local BM25 corpus
//   - Account/support lookups over a keyed mock store
//   - Human handoff with durable ticket persistence
//   - Slack team notifications with a local outbox fallback
//   - Open web search as the last resort before clarification
//
// Usage:
//
//	go run ./cmd/agentswarm serve
//	go run ./cmd/agentswarm serve --debug
//
// With LLM generation over retrieved context:
//
//	USE_LLM=1 OPENAI_API_KEY=sk-... go run ./cmd/agentswarm serve
//
// Example requests:
//
//	# Health check
//	curl http://localhost:8080/v1/chat/health
//
//	# One conversational turn
//	curl -X POST http://localhost:8080/v1/chat \
//	  -H "Content-Type: application/json" \
//	  -d '{"message": "Quais as taxas da maquininha?", "user_id": "client789"}'
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/AleutianAI/agentswarm/services/chat"
	"github.com/AleutianAI/agentswarm/services/chat/config"
	"github.com/AleutianAI/agentswarm/services/chat/guardrails"
	"github.com/AleutianAI/agentswarm/services/chat/handoff"
	"github.com/AleutianAI/agentswarm/services/chat/knowledge"
	"github.com/AleutianAI/agentswarm/services/chat/notify"
	"github.com/AleutianAI/agentswarm/services/chat/routing"
	"github.com/AleutianAI/agentswarm/services/chat/storage"
	"github.com/AleutianAI/agentswarm/services/chat/support"
	"github.com/AleutianAI/agentswarm/services/chat/websearch"
	"github.com/AleutianAI/agentswarm/services/llm"
)

var debugFlag bool

func main() {
	root := &cobra.Command{
		Use:          "agentswarm",
		Short:        "Conversational routing API for the agent swarm",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging and Gin debug mode")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
	root.AddCommand(serveCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe() error {
	// Local .env is a developer convenience; absence is not an error.
	_ = godotenv.Load()

	level := slog.LevelInfo
	if debugFlag {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := config.FromEnv()

	if debugFlag {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	// Durable store for tickets and the notification outbox. Graceful
	// degradation: the agents accept nil stores and keep replying.
	var store *storage.Store
	if s, err := storage.Open(cfg.StorePath); err != nil {
		logger.Warn("BadgerDB store unavailable, tickets and outbox will not persist",
			slog.String("path", cfg.StorePath),
			slog.String("error", err.Error()),
		)
	} else {
		store = s
		defer func() { _ = store.Close() }()
		logger.Info("BadgerDB store opened", slog.String("path", cfg.StorePath))
	}

	// Knowledge corpus: local snapshots first, live product pages as seed
	// when the directory is empty.
	docs := knowledge.LoadDir(cfg.KnowledgeDir, logger)
	if len(docs) == 0 && cfg.FetchWebCorpus {
		logger.Info("knowledge directory empty, fetching product pages",
			slog.String("dir", cfg.KnowledgeDir),
		)
		fetchCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		docs = knowledge.FetchPages(fetchCtx, knowledge.DefaultProductURLs, logger)
		cancel()
	}
	corpus := knowledge.NewCorpus(docs, logger)
	logger.Info("knowledge corpus ready", slog.Int("documents", corpus.Len()))

	knowledgeAgent, err := knowledge.NewAgent(corpus, logger)
	if err != nil {
		return fmt.Errorf("build knowledge agent: %w", err)
	}

	// Generation backend is configuration-selected; the pass-through
	// fallback keeps the grounded agent honest about its route labels.
	var generator llm.Generator = llm.PassthroughGenerator{}
	if cfg.UseLLM && cfg.OpenAIAPIKey != "" {
		client := llm.NewOpenAIClientWithConfig(cfg.OpenAIAPIKey, cfg.LLMModel, "")
		generator = llm.NewOpenAIGenerator(client, cfg.LLMMaxTokens, float32(cfg.LLMTemperature), logger)
		logger.Info("LLM generation enabled", slog.String("model", cfg.LLMModel))
	}

	var knowledgeHandler routing.Handler = knowledgeAgent
	if cfg.UseLLM {
		knowledgeHandler = knowledge.NewGroundedAgent(knowledgeAgent, generator, logger)
	}

	supportStore := support.NewStore()
	supportAgent := support.NewAgent(supportStore, logger)
	handoffAgent := handoff.NewAgent(ticketStore(store), logger)
	notifyAgent := notify.NewAgent(cfg.SlackWebhookURL, outboxStore(store), logger)

	searcher := &searchAdapter{client: websearch.NewClient(logger)}

	router, err := routing.NewRouter(notifyAgent, knowledgeHandler, supportAgent, handoffAgent, searcher, logger)
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	redirect := routing.NewRedirectPolicy(cfg.RedirectMaxClarifications)
	guards := guardrails.New()
	svc := chat.NewService(guards, router, redirect, handoffAgent, cfg.AutoRedirectOnFallback, logger)
	handlers := chat.NewHandlers(svc, supportStore, redirect, logger)

	engine := gin.New()
	engine.Use(gin.Recovery())
	if debugFlag {
		engine.Use(gin.Logger())
	}

	v1 := engine.Group("/v1")
	chat.RegisterRoutes(v1, handlers)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Hot-reload the corpus when snapshot files change.
	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	if _, statErr := os.Stat(cfg.KnowledgeDir); statErr == nil {
		go func() {
			if err := corpus.Watch(watchCtx, cfg.KnowledgeDir); err != nil {
				logger.Warn("knowledge watcher stopped", slog.String("error", err.Error()))
			}
		}()
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: engine,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting agentswarm server", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
		logger.Info("Shutting down agentswarm server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// ticketStore adapts the optional concrete store to the nil-safe interface
// without producing a typed-nil interface value.
func ticketStore(s *storage.Store) handoff.TicketStore {
	if s == nil {
		return nil
	}
	return s
}

// outboxStore mirrors ticketStore for the notification outbox.
func outboxStore(s *storage.Store) notify.OutboxStore {
	if s == nil {
		return nil
	}
	return s
}

// searchAdapter bridges the websearch client to the router's Searcher
// contract.
type searchAdapter struct {
	client *websearch.Client
}

func (a *searchAdapter) Search(ctx context.Context, query string, topK int) []routing.SearchResult {
	results := a.client.Search(ctx, query, topK)
	out := make([]routing.SearchResult, 0, len(results))
	for _, r := range results {
		out = append(out, routing.SearchResult{Title: r.Title, URL: r.URL})
	}
	return out
}
