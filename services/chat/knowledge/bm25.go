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
	"math"
	"sort"
	"strings"
	"unicode"
)

// =============================================================================
// BM25 Index
// =============================================================================

// BM25 tuning constants. Standard values recommended by Robertson et al.
const (
	// bm25K1 controls term frequency saturation. Higher = slower saturation.
	// Range [1.2, 2.0] is typical. 1.5 is a robust middle ground.
	bm25K1 = 1.5

	// bm25B controls document length normalization.
	// 0 = no normalization, 1 = full normalization. 0.75 is the standard default.
	bm25B = 0.75
)

// bm25Doc holds the tokenized representation of a single knowledge document.
type bm25Doc struct {
	// tf maps each term to its frequency within the document.
	tf map[string]int

	// len is the total number of terms in the document (after tokenization).
	len int
}

// Index is a pre-built BM25 index over a static knowledge corpus.
//
// # Description
//
// Implements Okapi BM25 ranking over whole-page knowledge documents. At query
// time, every document receives a score proportional to how well it matches
// the query terms, weighted by term rarity across the corpus (IDF), with
// repeated-term contributions saturating via the k1 factor and long documents
// normalized against the corpus average length via the b factor.
//
// Unlike a routing index over short keyword specs, the corpus here is free
// text, so true term frequencies are tracked rather than binary presence.
//
// # Thread Safety
//
// Index is immutable after construction via NewIndex. Safe for concurrent
// use without additional synchronization.
type Index struct {
	// docs holds the original document texts, in load order.
	docs []string

	// reps holds the per-document tokenized representations. Always the same
	// length as docs with 1:1 index correspondence.
	reps []bm25Doc

	// idf maps each term to its inverse document frequency score.
	// Computed once at build time as: log((N+1)/(df+1)) + 1 (Lucene-style smoothing).
	idf map[string]float64

	// avgLen is the average document length across the corpus.
	avgLen float64
}

// Tokenize splits text into lowercase alphanumeric terms.
//
// # Description
//
//	Splits on any run of non-alphanumeric characters and discards empty
//	tokens. Unicode-aware, so accented Portuguese terms ("débito", "crédito")
//	survive as single tokens. Documents and queries must go through the same
//	tokenizer for scores to be comparable.
//
// # Outputs
//
//   - []string: The terms in order of appearance. Empty slice for text with
//     no alphanumeric content.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// NewIndex constructs a BM25 Index from a slice of document texts.
//
// # Description
//
//	Tokenizes every document and precomputes term frequencies, document
//	frequencies and IDF. An empty or nil slice returns a valid index that
//	yields empty results for every query.
//
// # Outputs
//
//   - *Index: The constructed index. Never nil.
//
// # Thread Safety
//
// The returned index is immutable and safe for concurrent use.
func NewIndex(docs []string) *Index {
	if len(docs) == 0 {
		return &Index{idf: make(map[string]float64)}
	}

	reps := make([]bm25Doc, 0, len(docs))
	totalLen := 0

	// df[term] = number of documents containing term.
	df := make(map[string]int)

	for _, doc := range docs {
		tf := make(map[string]int)
		terms := Tokenize(doc)
		for _, term := range terms {
			tf[term]++
		}
		reps = append(reps, bm25Doc{tf: tf, len: len(terms)})
		totalLen += len(terms)

		for term := range tf {
			df[term]++
		}
	}

	N := len(docs)

	// Formula: log((N + 1) / (df + 1)) + 1
	// The +1 in numerator and denominator is Lucene-style smoothing.
	// The trailing +1 ensures IDF is always >= 1.
	idf := make(map[string]float64, len(df))
	for term, docFreq := range df {
		idf[term] = math.Log(float64(N+1)/float64(docFreq+1)) + 1.0
	}

	return &Index{
		docs:   docs,
		reps:   reps,
		idf:    idf,
		avgLen: float64(totalLen) / float64(N),
	}
}

// Len returns the number of documents in the index.
func (idx *Index) Len() int {
	return len(idx.docs)
}

// IsEmpty reports whether the index contains no documents.
func (idx *Index) IsEmpty() bool {
	return len(idx.docs) == 0
}

// Search returns up to k documents ranked by descending BM25 relevance.
//
// # Description
//
//	Tokenizes the query and scores every document. Results are ordered
//	score-descending with ties broken by original corpus order (stable).
//	A query with no recognized tokens scores 0 for every document, so the
//	result is the first k documents in corpus order — a defined edge case,
//	not a failure. An empty corpus yields an empty result for any query.
//
// # Inputs
//
//   - query: The raw query string.
//   - k: Maximum number of documents to return. Values <= 0 yield an empty
//     result.
//
// # Outputs
//
//   - []string: The ranked document texts, length <= k. Never nil for a
//     non-empty corpus with k > 0.
//
// # Thread Safety
//
// Safe for concurrent use. Does not modify the index.
func (idx *Index) Search(query string, k int) []string {
	if k <= 0 || len(idx.docs) == 0 {
		return nil
	}

	queryTF := make(map[string]int)
	for _, term := range Tokenize(query) {
		queryTF[term]++
	}

	type scored struct {
		i     int
		score float64
	}
	ranked := make([]scored, len(idx.reps))
	for i, rep := range idx.reps {
		ranked[i] = scored{i: i, score: idx.score(queryTF, rep)}
	}

	// Stable sort keeps corpus order for equal scores.
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].score > ranked[b].score
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]string, 0, k)
	for _, r := range ranked[:k] {
		out = append(out, idx.docs[r.i])
	}
	return out
}

// score computes the raw BM25 score for a single (query, doc) pair.
//
//	score(doc, query) = Σ_t [ idf(t) × (tf(t,doc) × (k1+1)) / (tf(t,doc) + k1 × (1 - b + b × dl/avgdl)) ]
//
// where t ranges over unique query terms present in the document.
func (idx *Index) score(queryTF map[string]int, doc bm25Doc) float64 {
	dl := float64(doc.len)
	var score float64

	for term := range queryTF {
		tf, inDoc := doc.tf[term]
		if !inDoc {
			continue
		}

		termIDF, knownTerm := idx.idf[term]
		if !knownTerm {
			continue
		}

		tfFloat := float64(tf)
		numerator := tfFloat * (bm25K1 + 1)
		lengthNorm := bm25K1 * (1.0 - bm25B + bm25B*dl/idx.avgLen)
		denominator := tfFloat + lengthNorm

		score += termIDF * (numerator / denominator)
	}

	return score
}
