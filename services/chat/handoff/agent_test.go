// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handoff

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
)

var ticketIDRE = regexp.MustCompile(`^T-[0-9A-F]{8}$`)

// recordingStore captures appended tickets and optionally fails.
type recordingStore struct {
	tickets []Ticket
	err     error
}

func (r *recordingStore) AppendTicket(_ context.Context, t Ticket) error {
	if r.err != nil {
		return r.err
	}
	r.tickets = append(r.tickets, t)
	return nil
}

func TestNewTicketID_Format(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewTicketID()
		if !ticketIDRE.MatchString(id) {
			t.Fatalf("ticket id %q does not match %s", id, ticketIDRE)
		}
		if seen[id] {
			t.Fatalf("duplicate ticket id %q", id)
		}
		seen[id] = true
	}
}

func TestAgent_CreatesAndPersistsTicket(t *testing.T) {
	store := &recordingStore{}
	a := NewAgent(store, nil)

	route, answer := a.Handle(context.Background(), "preciso de ajuda urgente", "u1")
	if route != RouteTicket {
		t.Fatalf("route = %q, want %q", route, RouteTicket)
	}
	if len(store.tickets) != 1 {
		t.Fatalf("expected 1 persisted ticket, got %d", len(store.tickets))
	}

	ticket := store.tickets[0]
	if !ticketIDRE.MatchString(ticket.TicketID) {
		t.Errorf("persisted ticket id = %q", ticket.TicketID)
	}
	if ticket.UserID != "u1" || ticket.Message != "preciso de ajuda urgente" || ticket.RouteHint != "handoff" {
		t.Errorf("persisted ticket = %+v", ticket)
	}
	if ticket.CreatedAt == "" {
		t.Error("expected RFC3339 timestamp")
	}
	if !strings.Contains(answer, "Ticket criado #"+ticket.TicketID) {
		t.Errorf("reply %q does not carry the ticket id", answer)
	}
	if !strings.Contains(answer, "Nosso time humano entrará em contato em breve.") {
		t.Errorf("reply = %q", answer)
	}
}

func TestAgent_NilStoreStillReplies(t *testing.T) {
	a := NewAgent(nil, nil)

	route, answer := a.Handle(context.Background(), "help", "u1")
	if route != RouteTicket || !strings.Contains(answer, "Ticket criado #T-") {
		t.Errorf("route = %q, answer = %q", route, answer)
	}
}

func TestAgent_StoreFailureStillReplies(t *testing.T) {
	store := &recordingStore{err: errors.New("disk full")}
	a := NewAgent(store, nil)

	route, answer := a.Handle(context.Background(), "help", "u1")
	if route != RouteTicket || !strings.Contains(answer, "Ticket criado #") {
		t.Errorf("persistence failure must not fail the escalation: route=%q answer=%q", route, answer)
	}
}
