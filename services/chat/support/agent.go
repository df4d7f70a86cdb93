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
	"fmt"
	"log/slog"
	"strings"
)

// RouteSupport labels every reply from this agent.
const RouteSupport = "support"

// msgSupportFallback is the reply when no support intent matches. The router
// only sends messages with support vocabulary here, so this asks for detail
// rather than clarifying the topic.
const msgSupportFallback = "Posso ajudar com login, transfers, ou extrato. Pode detalhar?"

// Agent handles account/support intents with lookups over the mock store.
//
// # Thread Safety
//
// Safe for concurrent use; all state lives in the Store.
type Agent struct {
	store  *Store
	logger *slog.Logger
}

// NewAgent wires a support Agent over the given store.
func NewAgent(store *Store, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{store: store, logger: logger}
}

// Handle returns (route, answer) for an account/support message.
//
// # Description
//
//	Sub-intents evaluated in order: sign-in trouble, profile/user info,
//	transfer status (with simple diagnostics), recent transactions. The
//	results are opaque store lookups string-formatted into the reply; no
//	routing logic depends on how the store is implemented.
func (a *Agent) Handle(ctx context.Context, message, userID string) (string, string) {
	_ = ctx // store lookups are synchronous and in-memory
	lower := strings.ToLower(message)

	if strings.Contains(lower, "sign in") || strings.Contains(lower, "login") || strings.Contains(lower, "signin") {
		status := a.store.AccountStatus(userID)
		// With recent failures, proactively include the reset link.
		if a.store.Account(userID).FailedSignins > 0 {
			return RouteSupport, status + ". " + a.store.ResetPassword(userID)
		}
		return RouteSupport, status
	}

	if containsAny(lower, []string{"user info", "perfil", "cadastro", "meus dados", "dados da conta", "account info"}) {
		return RouteSupport, a.store.UserInfo(userID)
	}

	if strings.Contains(lower, "transfer") || strings.Contains(lower, "transferir") || strings.Contains(lower, "status da transferência") {
		base := a.store.TransferStatus(userID)
		acct := a.store.Account(userID)

		var hints []string
		if acct.Status == "blocked" {
			hints = append(hints, "Conta bloqueada: verifique documentação e suporte.")
		}
		if acct.AvailableTransferLimit <= 0 {
			hints = append(hints, "Limite diário de transferência esgotado.")
		}
		if strings.Contains(base, "queued") || strings.Contains(base, "processing") {
			hints = append(hints, "Aguarde o processamento alguns minutos; se persistir, verifique limite diário e status da conta.")
		}
		if len(hints) > 0 {
			base = base + " Dica: " + strings.Join(hints, " ")
		}
		return RouteSupport, base
	}

	if strings.Contains(lower, "transaction") || strings.Contains(lower, "extrato") {
		txs := a.store.RecentTransactions(userID, 3)
		items := make([]string, 0, len(txs))
		for _, t := range txs {
			items = append(items, fmt.Sprintf("%s R$%.2f %s", t.ID, t.Amount, t.Status))
		}
		return RouteSupport, "Últimas transações: " + strings.Join(items, ", ")
	}

	a.logger.Debug("support: no sub-intent matched", slog.String("user_id", userID))
	return RouteSupport, msgSupportFallback
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
