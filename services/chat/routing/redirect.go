// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routing

import "sync"

// RedirectPolicy counts clarification turns per user and decides when a
// repeatedly-unresolved conversation must be escalated to a human.
//
// # Description
//
//	Counters are monotonic for the process lifetime: they increment on every
//	clarification and never reset, so a permanently-confused user escalates
//	sooner on later visits. This is a deliberate behavior choice, pinned by
//	test, not an oversight. Counters are never persisted.
//
// # Thread Safety
//
// Safe for concurrent use. A single mutex guards the counter map — two
// concurrent clarifications from the same user must not lose an increment,
// and contention is low enough that per-key locking buys nothing.
type RedirectPolicy struct {
	mu             sync.Mutex
	clarifyCounts  map[string]int
	maxClarifCount int
}

// NewRedirectPolicy creates a policy that triggers once a user's counter
// reaches maxClarifications.
func NewRedirectPolicy(maxClarifications int) *RedirectPolicy {
	return &RedirectPolicy{
		clarifyCounts:  make(map[string]int),
		maxClarifCount: maxClarifications,
	}
}

// NoteClarification increments and returns the user's clarification count.
// The counter is initialized at zero on first reference.
func (p *RedirectPolicy) NoteClarification(userID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clarifyCounts[userID]++
	return p.clarifyCounts[userID]
}

// ForceRedirect raises the user's counter to the threshold so the next
// clarification escalates. Exposed through the test-only HTTP endpoint;
// a counter already past the threshold is left alone.
func (p *RedirectPolicy) ForceRedirect(userID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.clarifyCounts[userID] < p.maxClarifCount {
		p.clarifyCounts[userID] = p.maxClarifCount
	}
	return p.clarifyCounts[userID]
}

// ShouldRedirect reports whether the user's counter has reached the
// configured threshold.
func (p *RedirectPolicy) ShouldRedirect(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clarifyCounts[userID] >= p.maxClarifCount
}
