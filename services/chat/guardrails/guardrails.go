// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package guardrails implements the input/output safety layer: unsafe-intent
// blocking and profanity masking on the way in, PII redaction on the way out.
// All checks are pure, stateless pattern matches over the full text.
package guardrails

import (
	"regexp"
	"strings"
)

// =============================================================================
// Verdict Types
// =============================================================================

// Action is the outcome class of an input validation.
type Action string

const (
	// ActionAllow passes the message through unchanged.
	ActionAllow Action = "allow"

	// ActionSanitize passes a masked copy of the message through.
	ActionSanitize Action = "sanitize"

	// ActionBlock refuses the message and short-circuits the entire turn.
	ActionBlock Action = "block"
)

// Reason codes reported alongside each action. Stable strings; the service
// embeds them in route labels.
const (
	ReasonOK              = "ok"
	ReasonUnsafeIntent    = "unsafe_intent"
	ReasonProfanityMasked = "profanity_masked"
)

// BlockedMessage is the fixed safe refusal carried by every block verdict.
const BlockedMessage = "Não posso ajudar com esse tipo de solicitação."

// RedactionToken replaces every PII match in outbound text.
const RedactionToken = "[redacted]"

// Verdict is the result of validating an inbound message.
//
// Invariant: Action == ActionBlock implies Allowed == false and
// Text == BlockedMessage; no downstream handler may run.
type Verdict struct {
	Allowed bool
	Action  Action
	Reason  string
	Text    string
}

// =============================================================================
// Guardrails
// =============================================================================

// Guardrails holds the compiled safety patterns.
//
// # Description
//
//	Input validation runs checks in order: unsafe-intent patterns block
//	immediately; profanity patterns mask in place and continue; everything
//	else passes unchanged. Order matters — block takes precedence over
//	sanitize. Output sanitization independently scans for email and phone
//	patterns and replaces every match with the redaction token.
//
// # Thread Safety
//
// Immutable after construction; safe for concurrent use.
type Guardrails struct {
	blockPatterns     []*regexp.Regexp
	profanityPatterns []*regexp.Regexp
	piiPatterns       []*regexp.Regexp
}

// New compiles the guardrail pattern set.
//
// Pattern order matters within each class: more specific intent patterns
// come first so the reported reason stays stable.
func New() *Guardrails {
	return &Guardrails{
		blockPatterns: []*regexp.Regexp{
			// Weapon/violence construction requests.
			regexp.MustCompile(`(?i)\b(make|build|how to)\b.*\b(bomb|weapon|gun|explosive)\b`),
			// Security bypass against financial or account systems.
			regexp.MustCompile(`(?i)\b(hack|bypass|break into)\b.*\b(bank|account|system)\b`),
			// Harm imperatives.
			regexp.MustCompile(`(?i)\b(kill|harm|hurt)\b`),
		},
		profanityPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(fuck|shit|bitch|porra|caralho)\b`),
		},
		piiPatterns: []*regexp.Regexp{
			// Email addresses.
			regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`),
			// Phone numbers with optional country code, separators, parens.
			regexp.MustCompile(`\b\+?\d{1,3}[\s-]?\(?\d{2,3}\)?[\s-]?\d{3,4}[\s-]?\d{3,4}\b`),
		},
	}
}

// ValidateInput checks an inbound message against the safety patterns.
//
// # Description
//
//	Runs over the full message, never a truncated prefix. A block verdict
//	carries the fixed refusal text and must short-circuit all downstream
//	processing; a sanitize verdict carries the masked message and the turn
//	continues with it. Not logged as a system error — a safety violation is
//	an expected outcome, not a fault.
//
// # Inputs
//
//   - message: The raw user message.
//   - userID: Unused by the pure checks; part of the call contract.
//
// # Thread Safety
//
// Safe for concurrent use.
func (g *Guardrails) ValidateInput(message, userID string) Verdict {
	_ = userID

	for _, p := range g.blockPatterns {
		if p.MatchString(message) {
			return Verdict{
				Allowed: false,
				Action:  ActionBlock,
				Reason:  ReasonUnsafeIntent,
				Text:    BlockedMessage,
			}
		}
	}

	for _, p := range g.profanityPatterns {
		if p.MatchString(message) {
			return Verdict{
				Allowed: true,
				Action:  ActionSanitize,
				Reason:  ReasonProfanityMasked,
				Text:    g.maskProfanity(message),
			}
		}
	}

	return Verdict{
		Allowed: true,
		Action:  ActionAllow,
		Reason:  ReasonOK,
		Text:    message,
	}
}

// SanitizeOutput redacts email addresses and phone numbers from outbound
// text, reporting whether any redaction occurred so the route label can be
// augmented for downstream observers.
func (g *Guardrails) SanitizeOutput(text string) (string, bool) {
	redacted := text
	found := false
	for _, p := range g.piiPatterns {
		if p.MatchString(redacted) {
			found = true
			redacted = p.ReplaceAllString(redacted, RedactionToken)
		}
	}
	return redacted, found
}

// maskProfanity keeps the first character of each matched word and replaces
// the remainder with asterisks.
func (g *Guardrails) maskProfanity(text string) string {
	masked := text
	for _, p := range g.profanityPatterns {
		masked = p.ReplaceAllStringFunc(masked, func(m string) string {
			if len(m) <= 1 {
				return m
			}
			return m[:1] + strings.Repeat("*", len(m)-1)
		})
	}
	return masked
}
