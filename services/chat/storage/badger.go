// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package storage persists escalation tickets and the notification outbox in
// an embedded BadgerDB instance.
//
// Design choices:
//
//  1. BadgerDB (not an external database): tickets and outbox records are
//     service infrastructure, not user data at scale. An embedded store means
//     no network call and no availability dependency; the service degrades to
//     memory-only operation when the data directory is unusable.
//
//  2. JSON values: records are small and read by humans during debugging.
//     The few hundred nanoseconds JSON costs over gob is irrelevant at
//     ticket/outbox volume.
//
// Storage layout:
//
//	tickets/v1/{ticketID}  →  JSON handoff.Ticket
//	outbox/v1/{uuid}       →  JSON notify.OutboxRecord
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	dgbadger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/AleutianAI/agentswarm/services/chat/handoff"
	"github.com/AleutianAI/agentswarm/services/chat/notify"
)

// Versioned key prefixes. Versioning (v1) allows future format changes
// without collision.
const (
	ticketKeyPrefix = "tickets/v1/"
	outboxKeyPrefix = "outbox/v1/"
)

// Store is the BadgerDB-backed implementation of handoff.TicketStore and
// notify.OutboxStore.
//
// # Thread Safety
//
// Safe for concurrent use. BadgerDB transactions are per-goroutine.
type Store struct {
	db *dgbadger.DB
}

// Open opens (or creates) the BadgerDB directory at path.
//
// # Inputs
//
//   - path: Directory for the database files. Created if absent.
//
// # Outputs
//
//   - *Store: Ready-to-use store. Caller owns the lifecycle; call Close.
//   - error: Non-nil when the directory cannot be opened.
func Open(path string) (*Store, error) {
	opts := dgbadger.DefaultOptions(path).
		WithLogger(nil) // suppress BadgerDB internal logs
	db, err := dgbadger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("storage: open badger at %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// AppendTicket durably records an escalation ticket.
func (s *Store) AppendTicket(ctx context.Context, t handoff.Ticket) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("storage: encode ticket: %w", err)
	}
	key := []byte(ticketKeyPrefix + t.TicketID)
	err = s.db.Update(func(txn *dgbadger.Txn) error {
		return txn.Set(key, raw)
	})
	if err != nil {
		return fmt.Errorf("storage: save ticket %s: %w", t.TicketID, err)
	}
	return nil
}

// ListTickets returns all stored tickets in key order.
func (s *Store) ListTickets(ctx context.Context) ([]handoff.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var tickets []handoff.Ticket
	err := s.db.View(func(txn *dgbadger.Txn) error {
		return iteratePrefix(txn, ticketKeyPrefix, func(raw []byte) error {
			var t handoff.Ticket
			if err := json.Unmarshal(raw, &t); err != nil {
				return fmt.Errorf("decode ticket: %w", err)
			}
			tickets = append(tickets, t)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list tickets: %w", err)
	}
	return tickets, nil
}

// AppendOutbox queues a notification record for later delivery.
func (s *Store) AppendOutbox(ctx context.Context, rec notify.OutboxRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("storage: encode outbox record: %w", err)
	}
	key := []byte(outboxKeyPrefix + uuid.New().String())
	err = s.db.Update(func(txn *dgbadger.Txn) error {
		return txn.Set(key, raw)
	})
	if err != nil {
		return fmt.Errorf("storage: save outbox record: %w", err)
	}
	return nil
}

// ListOutbox returns all queued notification records in key order.
func (s *Store) ListOutbox(ctx context.Context) ([]notify.OutboxRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var recs []notify.OutboxRecord
	err := s.db.View(func(txn *dgbadger.Txn) error {
		return iteratePrefix(txn, outboxKeyPrefix, func(raw []byte) error {
			var rec notify.OutboxRecord
			if err := json.Unmarshal(raw, &rec); err != nil {
				return fmt.Errorf("decode outbox record: %w", err)
			}
			recs = append(recs, rec)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list outbox: %w", err)
	}
	return recs, nil
}

// iteratePrefix calls fn with the value of every key under prefix.
func iteratePrefix(txn *dgbadger.Txn, prefix string, fn func(raw []byte) error) error {
	opts := dgbadger.DefaultIteratorOptions
	opts.PrefetchValues = true
	it := txn.NewIterator(opts)
	defer it.Close()

	p := []byte(prefix)
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		raw, err := it.Item().ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("copy value: %w", err)
		}
		if err := fn(raw); err != nil {
			return err
		}
	}
	return nil
}
