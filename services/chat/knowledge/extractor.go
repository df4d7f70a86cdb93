// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package knowledge

import (
	"regexp"
	"strings"
)

// =============================================================================
// Heuristic Answer Extraction
// =============================================================================
//
// Each extractor is a narrow, auditable pattern-matcher tuned to one business
// question type. The chain is an explicit ordered list of (trigger, extract)
// pairs with early exit on the first non-empty result, so precedence is
// visible in one place and each extractor is testable on its own.

// Fixed reply fragments. These are part of the user-visible contract.
const (
	feeSummaryTitle      = "Taxas da Maquininha Smart (referência):"
	feeSummaryDisclaimer = "Obs.: As taxas variam por faturamento e pelo plano de recebimento (na hora ou em 1 dia útil)."
	priceSummaryPrefix   = "Preço da Maquininha Smart: "
	phonePOSTitle        = "Como usar o celular como maquininha (InfiniteTap):"
)

// Candidate line bounds. Lines above these lengths are policy or marketing
// text, not facts worth quoting.
const (
	feeLineMaxLen       = 220
	phoneLineMaxLen     = 160
	phoneLineMinLen     = 12
	snippetLineMaxLen   = 280
	snippetBudgetChars  = 800
	fallbackExcerptLen  = 200
	concatenationMaxLen = 600
)

// percentRE matches the first rate figure in a line: 1-2 digits, optional
// decimal part with either separator, optional space before the percent sign.
var percentRE = regexp.MustCompile(`\b\d{1,2}(?:[.,]\d{1,2})?\s*%`)

// decimalCommaRE matches Brazilian currency decimals ("149,90").
var decimalCommaRE = regexp.MustCompile(`\d+,\d{2}`)

// Extractor turns ranked documents plus the original query into one concise,
// domain-specific answer.
//
// # Thread Safety
//
// Stateless apart from the immutable vocabulary; safe for concurrent use.
type Extractor struct {
	vocab *extractorVocabulary
}

// NewExtractor builds an Extractor over the embedded vocabulary.
func NewExtractor() (*Extractor, error) {
	v, err := loadVocabulary()
	if err != nil {
		return nil, err
	}
	return &Extractor{vocab: v}, nil
}

// extractorStep pairs a query trigger with its line extractor. Steps run in
// slice order; the first non-empty extraction wins.
type extractorStep struct {
	triggered func(lowerQuery string) bool
	extract   func(query string, docs []string) string
}

// Answer produces a concise answer from the ranked documents.
//
// # Description
//
//	Runs the extractor chain in strict precedence order: fee summary, price
//	summary, phone-as-POS steps, generic keyword snippets. If no extractor
//	produces output, falls back to a trimmed concatenation of the ranked
//	documents. The caller handles the zero-documents case before invoking
//	any extractor.
//
// # Inputs
//
//   - query: The original user message.
//   - docs: Ranked documents, best first. Must be non-empty.
//
// # Outputs
//
//   - string: The answer text. Never empty for non-empty docs.
func (e *Extractor) Answer(query string, docs []string) string {
	lower := strings.ToLower(query)

	steps := []extractorStep{
		{
			triggered: func(q string) bool { return containsAny(q, e.vocab.FeeTriggers) },
			extract:   func(_ string, d []string) string { return e.summarizeFees(d) },
		},
		{
			triggered: func(q string) bool {
				return containsAny(q, e.vocab.PriceTriggers) && containsAny(q, e.vocab.PriceDeviceTerms)
			},
			extract: func(_ string, d []string) string { return e.summarizePrice(d) },
		},
		{
			triggered: func(q string) bool {
				return containsAny(q, e.vocab.PhoneTriggers) && containsAny(q, e.vocab.PhoneUsageTerms)
			},
			extract: func(_ string, d []string) string { return e.summarizePhonePOS(d) },
		},
		{
			triggered: func(string) bool { return true },
			extract:   func(q string, d []string) string { return e.extractSnippets(q, d, snippetBudgetChars) },
		},
	}

	for _, step := range steps {
		if !step.triggered(lower) {
			continue
		}
		if out := step.extract(query, docs); out != "" {
			return out
		}
	}

	// Last resort: heavily trimmed concatenation of the top matches.
	joined := strings.Join(docs, "\n\n")
	if len([]rune(joined)) > concatenationMaxLen {
		joined = strings.TrimRight(truncateRunes(joined, concatenationMaxLen), " ") + "..."
	}
	return joined
}

// summarizeFees builds the fixed-order rate summary (Pix, Débito, Crédito à
// vista, Crédito 12x), each entry reduced to its percentage when one can be
// extracted. Returns "" when no qualifying line exists, causing fall-through.
func (e *Extractor) summarizeFees(docs []string) string {
	var candidates []string
	for _, doc := range docs {
		for _, raw := range strings.Split(doc, "\n") {
			line := strings.TrimSpace(raw)
			low := strings.ToLower(line)
			if len(line) > feeLineMaxLen {
				continue
			}
			if containsAny(low, e.vocab.FeeLegalTerms) {
				continue
			}
			if containsAny(low, e.vocab.FeeNoiseTerms) {
				continue
			}
			if (strings.Contains(line, "%") || strings.Contains(low, "por cento")) && containsAny(low, e.vocab.FeeTerms) {
				candidates = append(candidates, line)
			}
		}
	}
	if len(candidates) == 0 {
		return ""
	}

	pickWith := func(predicates []string, requirePercent bool, exclude []string) string {
		for _, c := range candidates {
			low := strings.ToLower(c)
			if containsAny(low, exclude) {
				continue
			}
			if !containsAny(low, predicates) {
				continue
			}
			if !requirePercent || extractPercent(c) != "" {
				return c
			}
		}
		return ""
	}

	// Pix may legitimately be "taxa zero" with no percent figure.
	pixLine := pickWith([]string{"pix", "taxa zero", "taxa 0"}, false, []string{"cashback"})
	debitoLine := pickWith([]string{"débito", "debito"}, true, nil)
	credito12xLine := pickWith([]string{"12x"}, true, nil)

	// Favor explicit à vista/1x and avoid 12x lines.
	creditoVistaLine := pickWith([]string{
		"crédito à vista", "credito a vista", "crédito a vista", "credito à vista",
		"crédito 1x", "credito 1x",
	}, true, nil)
	if creditoVistaLine == "" {
		creditoVistaLine = pickWith([]string{"crédito", "credito"}, true, []string{"12x"})
	}

	entry := func(label, line string) string {
		if p := extractPercent(line); p != "" {
			return "- " + label + ": " + p
		}
		return "- " + label + ": " + line
	}

	parts := []string{feeSummaryTitle}
	if pixLine != "" {
		p := extractPercent(pixLine)
		if p == "" {
			p = "0%"
		}
		parts = append(parts, "- Pix: "+p)
	}
	if debitoLine != "" {
		parts = append(parts, entry("Débito", debitoLine))
	}
	if creditoVistaLine != "" {
		parts = append(parts, entry("Crédito à vista", creditoVistaLine))
	}
	if credito12xLine != "" {
		parts = append(parts, entry("Crédito 12x", credito12xLine))
	}
	if len(parts) <= 1 {
		return ""
	}
	parts = append(parts, feeSummaryDisclaimer)
	return strings.Join(parts, "\n")
}

// summarizePrice picks the single line most likely to state a concrete price,
// preferring currency amounts and installment info over question-only lines.
func (e *Extractor) summarizePrice(docs []string) string {
	var candidates []string
	for _, doc := range docs {
		for _, raw := range strings.Split(doc, "\n") {
			line := strings.TrimSpace(raw)
			if line == "" {
				continue
			}
			if containsAny(strings.ToLower(line), e.vocab.PriceCandidateTerms) {
				candidates = append(candidates, line)
			}
		}
	}
	if len(candidates) == 0 {
		return ""
	}

	score := func(s string) int {
		l := strings.ToLower(s)
		sc := 0
		if strings.Contains(l, "r$") {
			sc += 5
		}
		if strings.Contains(l, "12x") || strings.Contains(l, "12 parcelas") || strings.Contains(l, "parcelas") {
			sc += 3
		}
		if decimalCommaRE.MatchString(s) {
			sc += 2
		}
		if strings.Contains(l, "maquininha") || strings.Contains(l, "smart") {
			sc += 1
		}
		// Penalize lines that are themselves the question.
		if strings.Contains(l, "quanto custa") ||
			(strings.Contains(l, "preço") && strings.Contains(s, "?")) ||
			(strings.Contains(l, "preco") && strings.Contains(s, "?")) {
			sc -= 5
		}
		return sc
	}

	best := candidates[0]
	bestScore := score(best)
	for _, c := range candidates[1:] {
		sc := score(c)
		if sc > bestScore || (sc == bestScore && len(c) < len(best)) {
			best, bestScore = c, sc
		}
	}
	return priceSummaryPrefix + best
}

// summarizePhonePOS canonicalizes actionable lines into at most three
// fixed-wording steps: NFC enablement, app open plus identity confirmation,
// and the tap-to-pay action, backfilling with remaining unique lines.
func (e *Extractor) summarizePhonePOS(docs []string) string {
	var steps []string
	for _, doc := range docs {
		for _, raw := range strings.Split(doc, "\n") {
			line := strings.TrimSpace(raw)
			if line == "" {
				continue
			}
			low := strings.ToLower(line)
			if containsAny(low, e.vocab.PhoneExcludeTerms) {
				continue
			}
			if len(line) > phoneLineMaxLen {
				continue
			}
			if !containsAny(low, e.vocab.PhoneActionTerms) {
				continue
			}
			// Ultra-short fragments and lines without spaces are headings.
			if len(line) < phoneLineMinLen || !strings.Contains(line, " ") {
				continue
			}
			steps = append(steps, line)
		}
	}
	if len(steps) == 0 {
		return ""
	}

	// De-duplicate case-insensitively, keeping first-seen order.
	seen := make(map[string]bool)
	var uniq []string
	for _, s := range steps {
		ls := strings.ToLower(s)
		if seen[ls] {
			continue
		}
		seen[ls] = true
		uniq = append(uniq, s)
	}

	joined := strings.ToLower(strings.Join(uniq, "\n"))
	var canonical []string
	if strings.Contains(joined, "nfc") {
		canonical = append(canonical, "Habilite o NFC no celular.")
	}
	if strings.Contains(joined, "abra o app") || strings.Contains(joined, "abra o aplicativo") || strings.Contains(joined, "confirme sua identidade") {
		canonical = append(canonical, "Abra o app e confirme sua identidade.")
	}
	if containsAny(joined, []string{"aproxime o cartão", "aproxime o cartao", "aproximação", "aproximacao", "aceite pagamentos"}) {
		canonical = append(canonical, "Aproxime o cartão para cobrar (até 12x).")
	}
	for _, s := range uniq {
		if len(canonical) >= 3 {
			break
		}
		if !containsString(canonical, s) {
			canonical = append(canonical, s)
		}
	}
	if len(canonical) > 3 {
		canonical = canonical[:3]
	}
	return phonePOSTitle + "\n- " + strings.Join(canonical, "\n- ")
}

// extractSnippets keeps lines matching the query keyword set (augmented with
// bilingual synonyms and fixed domain terms) up to a total character budget.
// A partial result is valid; hitting the budget stops accumulation.
func (e *Extractor) extractSnippets(query string, docs []string, maxTotal int) string {
	keywords := make(map[string]bool)
	for _, tok := range Tokenize(query) {
		keywords[tok] = true
	}
	for k, vals := range e.vocab.SnippetSynonyms {
		if keywords[k] {
			for _, v := range vals {
				keywords[v] = true
			}
		}
	}
	for _, t := range e.vocab.SnippetDomainTerms {
		keywords[t] = true
	}

	lineMatches := func(low string) bool {
		for k := range keywords {
			if strings.Contains(low, k) {
				return true
			}
		}
		return false
	}

	var selected []string
	seen := make(map[string]bool)
	total := 0
	for _, doc := range docs {
		for _, raw := range strings.Split(doc, "\n") {
			line := strings.TrimSpace(raw)
			if line == "" {
				continue
			}
			low := strings.ToLower(line)
			if !lineMatches(low) {
				continue
			}
			if len([]rune(line)) > snippetLineMaxLen {
				line = strings.TrimRight(truncateRunes(line, snippetLineMaxLen), " ") + "..."
			}
			if seen[low] {
				continue
			}
			seen[low] = true
			if total+len(line)+1 > maxTotal {
				return strings.Join(selected, "\n")
			}
			selected = append(selected, line)
			total += len(line) + 1
			if total >= maxTotal {
				return strings.Join(selected, "\n")
			}
		}
	}
	if len(selected) > 0 {
		return strings.Join(selected, "\n")
	}

	// Nothing matched: minimal excerpt per document.
	var chunks []string
	sum := 0
	for _, doc := range docs {
		frag := strings.TrimSpace(truncateRunes(doc, fallbackExcerptLen))
		if frag == "" {
			continue
		}
		if len([]rune(doc)) > fallbackExcerptLen {
			frag += "..."
		}
		chunks = append(chunks, frag)
		sum += len(frag)
		if sum > maxTotal {
			break
		}
	}
	return strings.Join(chunks, "\n\n")
}

// extractPercent returns the first percentage token in text, or "".
func extractPercent(text string) string {
	m := percentRE.FindString(text)
	if m == "" {
		return ""
	}
	m = strings.ReplaceAll(m, " .", ".")
	m = strings.ReplaceAll(m, " ,", ",")
	return m
}

// containsAny reports whether s contains any of the substrings. An empty or
// nil list never matches.
func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// truncateRunes returns the first n runes of s without splitting UTF-8.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
