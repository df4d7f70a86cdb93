// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handoff implements the human-escalation route: creating a support
// ticket and telling the user a human will follow up.
package handoff

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RouteTicket labels replies that created an escalation ticket.
const RouteTicket = "handoff:ticket"

// Ticket is the persisted escalation record.
type Ticket struct {
	TicketID  string `json:"ticket_id"`
	UserID    string `json:"user_id"`
	Message   string `json:"message"`
	RouteHint string `json:"route_hint"`
	CreatedAt string `json:"created_at"`
}

// TicketStore persists escalation tickets.
//
// # Description
//
//	Implementations must be safe for concurrent use. A nil TicketStore is
//	valid: the agent still issues an identifier and replies, it just skips
//	persistence (used by tests and storage-less deployments).
type TicketStore interface {
	// AppendTicket durably records the ticket.
	AppendTicket(ctx context.Context, t Ticket) error
}

// Agent escalates the conversation by creating a ticket for human support.
//
// # Thread Safety
//
// Safe for concurrent use.
type Agent struct {
	store  TicketStore
	logger *slog.Logger
}

// NewAgent wires a handoff Agent. store may be nil (see TicketStore).
func NewAgent(store TicketStore, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{store: store, logger: logger}
}

// Handle creates a ticket and returns (route, reply).
//
// # Description
//
//	The core only needs the ticket identifier for the reply text. A store
//	failure is logged and the reply still carries the identifier — losing
//	the persisted record is preferable to failing the escalation itself.
func (a *Agent) Handle(ctx context.Context, message, userID string) (string, string) {
	ticket := Ticket{
		TicketID:  NewTicketID(),
		UserID:    userID,
		Message:   message,
		RouteHint: "handoff",
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if a.store != nil {
		if err := a.store.AppendTicket(ctx, ticket); err != nil {
			a.logger.Warn("handoff: ticket persistence failed",
				slog.String("ticket_id", ticket.TicketID),
				slog.String("error", err.Error()),
			)
		}
	}

	a.logger.Debug("handoff: ticket created",
		slog.String("ticket_id", ticket.TicketID),
		slog.String("user_id", userID),
	)
	return RouteTicket, "Ticket criado #" + ticket.TicketID + ". Nosso time humano entrará em contato em breve."
}

// NewTicketID returns an identifier like "T-4F2A91BC": a fixed prefix plus
// eight uppercase hex characters.
func NewTicketID() string {
	hexID := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "T-" + strings.ToUpper(hexID[:8])
}
