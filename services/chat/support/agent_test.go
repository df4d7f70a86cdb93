// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package support

import (
	"context"
	"strings"
	"testing"
)

func TestAgent_SignInIntent(t *testing.T) {
	s := NewStore()
	a := NewAgent(s, nil)

	route, answer := a.Handle(context.Background(), "I can't sign in", "u1")
	if route != RouteSupport {
		t.Fatalf("route = %q, want %q", route, RouteSupport)
	}
	if !strings.HasPrefix(answer, "Account status: ") {
		t.Errorf("answer = %q", answer)
	}
	if s.Account("u1").FailedSignins > 0 && !strings.Contains(answer, "Password reset link") {
		t.Errorf("expected reset link for user with failed sign-ins, got %q", answer)
	}
}

func TestAgent_UserInfoIntent(t *testing.T) {
	a := NewAgent(NewStore(), nil)

	_, answer := a.Handle(context.Background(), "quero ver meus dados", "u1")
	if !strings.Contains(answer, "Usuário: User u1 (u1@example.com)") {
		t.Errorf("answer = %q", answer)
	}
}

func TestAgent_TransferIntent(t *testing.T) {
	s := NewStore()
	a := NewAgent(s, nil)

	if _, err := s.ForceTransfer("u1", "completed", 50); err != nil {
		t.Fatalf("ForceTransfer: %v", err)
	}
	_, answer := a.Handle(context.Background(), "why can't I make a transfer?", "u1")
	if !strings.Contains(answer, "Transferência") || !strings.Contains(answer, "completed") {
		t.Errorf("answer = %q", answer)
	}
}

func TestAgent_TransferHintsOnStuckTransfer(t *testing.T) {
	s := NewStore()
	a := NewAgent(s, nil)

	if _, err := s.ForceTransfer("u1", "queued", 75); err != nil {
		t.Fatalf("ForceTransfer: %v", err)
	}
	_, answer := a.Handle(context.Background(), "cadê minha transferir?", "u1")
	if !strings.Contains(answer, "Dica:") {
		t.Errorf("expected diagnostic hint for queued transfer, got %q", answer)
	}
}

func TestAgent_TransactionsIntent(t *testing.T) {
	a := NewAgent(NewStore(), nil)

	_, answer := a.Handle(context.Background(), "me mostra o extrato", "u1")
	if !strings.HasPrefix(answer, "Últimas transações: ") {
		t.Fatalf("answer = %q", answer)
	}
	if !strings.Contains(answer, "tx-0") {
		t.Errorf("expected transaction ids in %q", answer)
	}
}

func TestAgent_FallbackAsksForDetail(t *testing.T) {
	a := NewAgent(NewStore(), nil)

	route, answer := a.Handle(context.Background(), "ajuda com a minha senha", "u1")
	if route != RouteSupport || answer != msgSupportFallback {
		t.Errorf("route = %q, answer = %q", route, answer)
	}
}
