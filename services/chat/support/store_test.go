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
	"reflect"
	"strings"
	"testing"
)

// =============================================================================
// Store Tests
// =============================================================================

func TestStore_DeterministicPerUser(t *testing.T) {
	s := NewStore()
	first := s.Account("client789")
	second := s.Account("client789")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated lookups disagree:\n%+v\n%+v", first, second)
	}

	// A fresh store generates the same account for the same user id.
	other := NewStore().Account("client789")
	if !reflect.DeepEqual(first, other) {
		t.Errorf("fresh store generated different account:\n%+v\n%+v", first, other)
	}
}

func TestStore_AccountShape(t *testing.T) {
	s := NewStore()
	acct := s.Account("u1")

	if acct.Name != "User u1" || acct.Email != "u1@example.com" {
		t.Errorf("identity fields: %+v", acct)
	}
	if len(acct.Transactions) != 5 {
		t.Errorf("expected 5 transactions, got %d", len(acct.Transactions))
	}
	if len(acct.Transfers) < 1 || len(acct.Transfers) > 3 {
		t.Errorf("expected 1-3 transfers, got %d", len(acct.Transfers))
	}
	if acct.DailyTransferLimit != 5000.0 {
		t.Errorf("daily limit = %v", acct.DailyTransferLimit)
	}
	for _, tr := range acct.Transfers {
		valid := false
		for _, st := range TransferStatuses {
			if tr.Status == st {
				valid = true
			}
		}
		if !valid {
			t.Errorf("invalid transfer status %q", tr.Status)
		}
	}
}

func TestStore_AccountReturnsCopy(t *testing.T) {
	s := NewStore()
	acct := s.Account("u1")
	acct.Transactions[0].Amount = -1

	if s.Account("u1").Transactions[0].Amount == -1 {
		t.Error("mutating a returned account leaked into the store")
	}
}

func TestStore_AccountStatusFormat(t *testing.T) {
	s := NewStore()
	got := s.AccountStatus("u1")
	if !strings.HasPrefix(got, "Account status: ") || !strings.Contains(got, "failed sign-ins: ") {
		t.Errorf("AccountStatus = %q", got)
	}
}

func TestStore_RecentTransactionsLimit(t *testing.T) {
	s := NewStore()
	if got := s.RecentTransactions("u1", 3); len(got) != 3 {
		t.Errorf("limit 3 returned %d", len(got))
	}
	if got := s.RecentTransactions("u1", 99); len(got) != 5 {
		t.Errorf("oversized limit returned %d", len(got))
	}
	if got := s.RecentTransactions("u1", -1); len(got) != 0 {
		t.Errorf("negative limit returned %d", len(got))
	}
}

func TestStore_TransferStatusFormat(t *testing.T) {
	s := NewStore()
	got := s.TransferStatus("u1")
	if !strings.HasPrefix(got, "Transferência tr-") {
		t.Errorf("TransferStatus = %q", got)
	}
}

// =============================================================================
// ForceTransfer Tests
// =============================================================================

func TestStore_ForceTransfer(t *testing.T) {
	s := NewStore()

	tr, err := s.ForceTransfer("u1", "failed", 123.45)
	if err != nil {
		t.Fatalf("ForceTransfer: %v", err)
	}
	if tr.Status != "failed" || tr.Amount != 123.45 {
		t.Errorf("forced transfer = %+v", tr)
	}

	got := s.TransferStatus("u1")
	if !strings.Contains(got, "failed") || !strings.Contains(got, "123.45") {
		t.Errorf("TransferStatus after force = %q", got)
	}
}

func TestStore_ForceTransferInvalidStatus(t *testing.T) {
	s := NewStore()
	if _, err := s.ForceTransfer("u1", "teleported", 10); err == nil {
		t.Error("expected error for invalid status")
	}
}
