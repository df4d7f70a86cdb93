// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package support implements the account/support route: a keyed in-memory
// mock account store and the agent that formats its lookups into replies.
package support

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"strings"
	"sync"
)

// =============================================================================
// Mock Account Store
// =============================================================================

// Transaction is a settled or pending card transaction.
type Transaction struct {
	ID     string
	Amount float64
	Status string
}

// Transfer is an outbound money transfer and its processing state.
type Transfer struct {
	ID     string
	Amount float64
	Status string
}

// Transfer states. ForceTransfer validates against this set.
var TransferStatuses = []string{"queued", "processing", "completed", "failed"}

// Account is the mock profile materialized on first reference to a user id.
type Account struct {
	Status                 string
	FailedSignins          int
	Name                   string
	Email                  string
	Balance                float64
	DailyTransferLimit     float64
	AvailableTransferLimit float64
	Transactions           []Transaction
	Transfers              []Transfer
}

var accountStatuses = []string{"active", "pending_verification", "blocked"}

// Store is a keyed mock account data provider.
//
// # Description
//
//	Accounts are generated deterministically from the user id on first
//	reference: a per-user seeded PRNG replaces ad-hoc global randomness so
//	repeated lookups for the same user agree and tests are stable, while
//	different users still get plausible variety. The store is an explicit
//	handle passed into the orchestrator, not module-level state.
//
// # Thread Safety
//
// Safe for concurrent use. A single mutex guards the map; all accessors
// return copies, never interior pointers.
type Store struct {
	mu       sync.Mutex
	accounts map[string]*Account
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{accounts: make(map[string]*Account)}
}

// ensureLocked materializes the account for userID. Caller holds s.mu.
func (s *Store) ensureLocked(userID string) *Account {
	if acct, ok := s.accounts[userID]; ok {
		return acct
	}

	h := fnv.New64a()
	h.Write([]byte(userID))
	seed := h.Sum64()
	rng := rand.New(rand.NewPCG(seed, seed))

	acct := &Account{
		Status:                 accountStatuses[rng.IntN(len(accountStatuses))],
		FailedSignins:          rng.IntN(4),
		Name:                   "User " + userID,
		Email:                  userID + "@example.com",
		Balance:                round2(rng.Float64() * 10000),
		DailyTransferLimit:     5000.0,
		AvailableTransferLimit: round2(1000 + rng.Float64()*4000),
	}
	for i := 0; i < 5; i++ {
		status := "settled"
		if rng.IntN(2) == 1 {
			status = "pending"
		}
		acct.Transactions = append(acct.Transactions, Transaction{
			ID:     fmt.Sprintf("tx-%d", i),
			Amount: round2(10 + rng.Float64()*490),
			Status: status,
		})
	}
	n := 1 + rng.IntN(3)
	for i := 0; i < n; i++ {
		acct.Transfers = append(acct.Transfers, Transfer{
			ID:     fmt.Sprintf("tr-%d", i),
			Amount: round2(5 + rng.Float64()*1495),
			Status: TransferStatuses[rng.IntN(len(TransferStatuses))],
		})
	}

	s.accounts[userID] = acct
	return acct
}

// Account returns a copy of the user's account, materializing it if needed.
func (s *Store) Account(userID string) Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.ensureLocked(userID)
	cp := *acct
	cp.Transactions = append([]Transaction(nil), acct.Transactions...)
	cp.Transfers = append([]Transfer(nil), acct.Transfers...)
	return cp
}

// AccountStatus formats the account state and failed sign-in count.
func (s *Store) AccountStatus(userID string) string {
	acct := s.Account(userID)
	return fmt.Sprintf("Account status: %s, failed sign-ins: %d", acct.Status, acct.FailedSignins)
}

// ResetPassword simulates sending a password reset link.
func (s *Store) ResetPassword(userID string) string {
	s.mu.Lock()
	s.ensureLocked(userID)
	s.mu.Unlock()
	return "Password reset link sent to your registered email."
}

// RecentTransactions returns up to limit most recent transactions.
func (s *Store) RecentTransactions(userID string, limit int) []Transaction {
	acct := s.Account(userID)
	if limit > len(acct.Transactions) {
		limit = len(acct.Transactions)
	}
	if limit < 0 {
		limit = 0
	}
	return acct.Transactions[:limit]
}

// UserInfo formats the profile summary shown for user-info intents.
func (s *Store) UserInfo(userID string) string {
	acct := s.Account(userID)
	return fmt.Sprintf(
		"Usuário: %s (%s). Status: %s. Saldo: R$%.2f. Limite de transferência: R$%.2f/R$%.2f.",
		acct.Name, acct.Email, acct.Status, acct.Balance,
		acct.AvailableTransferLimit, acct.DailyTransferLimit,
	)
}

// TransferStatus formats the most recent transfer's state.
func (s *Store) TransferStatus(userID string) string {
	acct := s.Account(userID)
	if len(acct.Transfers) == 0 {
		return "Nenhuma transferência encontrada para este usuário."
	}
	last := acct.Transfers[len(acct.Transfers)-1]
	return fmt.Sprintf("Transferência %s de R$%.2f: %s.", last.ID, last.Amount, last.Status)
}

// ForceTransfer overrides the user's last transfer, creating one if needed.
// Exposed through the test-only HTTP endpoint.
//
// # Outputs
//
//   - Transfer: The resulting transfer state.
//   - error: Non-nil when status is not one of TransferStatuses.
func (s *Store) ForceTransfer(userID, status string, amount float64) (Transfer, error) {
	valid := false
	for _, v := range TransferStatuses {
		if v == status {
			valid = true
			break
		}
	}
	if !valid {
		return Transfer{}, fmt.Errorf("support: invalid transfer status %q (want one of %s)",
			status, strings.Join(TransferStatuses, ", "))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.ensureLocked(userID)
	if len(acct.Transfers) == 0 {
		acct.Transfers = append(acct.Transfers, Transfer{ID: "tr-test"})
	}
	last := &acct.Transfers[len(acct.Transfers)-1]
	last.Status = status
	last.Amount = amount
	return *last, nil
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
