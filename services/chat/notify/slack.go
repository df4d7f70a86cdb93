// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package notify implements the team-notification route: a Slack incoming
// webhook post with a durable local outbox fallback. A notification is never
// silently dropped — if the webhook is missing or unreachable, the record
// lands in the outbox for later delivery.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Route labels for the notification path.
const (
	// RouteNotify marks a successful webhook delivery.
	RouteNotify = "slack:notify"

	// RouteFallback marks a notification queued in the local outbox.
	RouteFallback = "slack:fallback"
)

// Fixed user-facing replies.
const (
	msgSent   = "Notificação enviada ao Slack com sucesso."
	msgQueued = "Mensagem enviada ao Slack (fila local)."
)

// webhookTimeout bounds the webhook post; a slow Slack degrades to the
// outbox rather than stalling the turn.
const webhookTimeout = 5 * time.Second

// OutboxRecord is the queued notification payload.
type OutboxRecord struct {
	UserID    string `json:"user_id"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

// OutboxStore durably queues notifications that could not be delivered.
//
// Implementations must be safe for concurrent use. A nil OutboxStore is
// valid for tests; queuing then only logs.
type OutboxStore interface {
	AppendOutbox(ctx context.Context, rec OutboxRecord) error
}

// Agent posts team notifications to a Slack incoming webhook.
//
// # Thread Safety
//
// Safe for concurrent use.
type Agent struct {
	webhookURL string
	httpClient *http.Client
	outbox     OutboxStore
	logger     *slog.Logger
}

// NewAgent wires a notify Agent. An empty webhookURL sends everything to
// the outbox.
func NewAgent(webhookURL string, outbox OutboxStore, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: webhookTimeout},
		outbox:     outbox,
		logger:     logger,
	}
}

// Handle posts the notification, or queues it locally on any failure.
func (a *Agent) Handle(ctx context.Context, message, userID string) (string, string) {
	text := "[AgentSwarm] From " + userID + ": " + message

	if a.sendWebhook(ctx, text) {
		return RouteNotify, msgSent
	}

	a.logger.Debug("notify: webhook missing or failed, queuing to outbox",
		slog.String("user_id", userID),
	)
	rec := OutboxRecord{
		UserID:    userID,
		Message:   message,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if a.outbox != nil {
		if err := a.outbox.AppendOutbox(ctx, rec); err != nil {
			a.logger.Warn("notify: outbox append failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}
	return RouteFallback, msgQueued
}

// sendWebhook posts {"text": ...} to the configured webhook. Any error or
// non-2xx status reports failure; the caller owns the fallback.
func (a *Agent) sendWebhook(ctx context.Context, text string) bool {
	if a.webhookURL == "" {
		return false
	}

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.webhookURL, bytes.NewReader(body))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
