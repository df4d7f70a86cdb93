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
	"reflect"
	"testing"
)

// =============================================================================
// Tokenize Tests
// =============================================================================

func TestTokenize_LowercasesAndSplits(t *testing.T) {
	got := Tokenize("Maquininha SMART, taxas: 2,5%!")
	want := []string{"maquininha", "smart", "taxas", "2", "5"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}

func TestTokenize_PreservesAccentedTerms(t *testing.T) {
	got := Tokenize("Débito e crédito")
	want := []string{"débito", "e", "crédito"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}

func TestTokenize_NoAlphanumericContent(t *testing.T) {
	if got := Tokenize("!!! ??? ..."); len(got) != 0 {
		t.Errorf("expected no tokens, got %v", got)
	}
}

// =============================================================================
// Index Tests
// =============================================================================

func TestIndex_EmptyCorpus(t *testing.T) {
	idx := NewIndex(nil)
	if !idx.IsEmpty() {
		t.Error("expected empty index")
	}
	if got := idx.Search("anything", 5); got != nil {
		t.Errorf("expected nil results from empty index, got %v", got)
	}
}

func TestIndex_RanksMatchingDocumentFirst(t *testing.T) {
	docs := []string{
		"A Maquininha Smart aceita pagamentos por aproximação.",
		"Taxas do Pix: 0% para receber na hora.",
		"Empréstimo com análise em minutos.",
	}
	idx := NewIndex(docs)

	got := idx.Search("taxas pix", 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0] != docs[1] {
		t.Errorf("expected pix document first, got %q", got[0])
	}
}

func TestIndex_RepeatedTermsSaturate(t *testing.T) {
	docs := []string{
		"pix pix pix pix pix pix pix pix",
		"pix taxas",
	}
	idx := NewIndex(docs)

	// Both documents must rank; repetition alone cannot make the first one
	// win on a two-term query that only the second fully covers.
	got := idx.Search("pix taxas", 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0] != docs[1] {
		t.Errorf("expected two-term match first, got %q", got[0])
	}
}

func TestIndex_ZeroTokenQueryReturnsCorpusOrder(t *testing.T) {
	docs := []string{"first doc", "second doc", "third doc"}
	idx := NewIndex(docs)

	got := idx.Search("???", 2)
	want := []string{"first doc", "second doc"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("zero-token query = %v, want corpus order %v", got, want)
	}
}

func TestIndex_TiesKeepCorpusOrder(t *testing.T) {
	docs := []string{"banana banana", "banana banana", "banana banana"}
	idx := NewIndex(docs)

	got := idx.Search("banana", 3)
	if !reflect.DeepEqual(got, docs) {
		t.Errorf("tied scores reordered documents: %v", got)
	}
}

func TestIndex_KBounds(t *testing.T) {
	idx := NewIndex([]string{"only document"})

	if got := idx.Search("document", 0); got != nil {
		t.Errorf("k=0 should yield nil, got %v", got)
	}
	if got := idx.Search("document", -1); got != nil {
		t.Errorf("k<0 should yield nil, got %v", got)
	}
	if got := idx.Search("document", 10); len(got) != 1 {
		t.Errorf("k beyond corpus should cap at corpus size, got %d", len(got))
	}
}
