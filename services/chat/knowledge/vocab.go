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
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Embedded Extractor Vocabulary
// =============================================================================

//go:embed extractor_vocabulary.yaml
var extractorVocabularyYAML []byte

// extractorVocabulary holds the substring vocabularies that drive the
// heuristic extractors. Loaded once from the embedded YAML and cached.
//
// # Thread Safety
//
// Immutable after load; safe for concurrent use.
type extractorVocabulary struct {
	FeeTriggers         []string            `yaml:"fee_triggers"`
	FeeTerms            []string            `yaml:"fee_terms"`
	FeeLegalTerms       []string            `yaml:"fee_legal_terms"`
	FeeNoiseTerms       []string            `yaml:"fee_noise_terms"`
	PriceTriggers       []string            `yaml:"price_triggers"`
	PriceDeviceTerms    []string            `yaml:"price_device_terms"`
	PriceCandidateTerms []string            `yaml:"price_candidate_terms"`
	PhoneTriggers       []string            `yaml:"phone_triggers"`
	PhoneUsageTerms     []string            `yaml:"phone_usage_terms"`
	PhoneActionTerms    []string            `yaml:"phone_action_terms"`
	PhoneExcludeTerms   []string            `yaml:"phone_exclude_terms"`
	SnippetSynonyms     map[string][]string `yaml:"snippet_synonyms"`
	SnippetDomainTerms  []string            `yaml:"snippet_domain_terms"`
}

var (
	cachedVocabulary *extractorVocabulary
	vocabularyOnce   sync.Once
	vocabularyErr    error
)

// loadVocabulary parses and caches the embedded extractor vocabulary.
//
// Safe for concurrent use (sync.Once internally).
func loadVocabulary() (*extractorVocabulary, error) {
	vocabularyOnce.Do(func() {
		var v extractorVocabulary
		if err := yaml.Unmarshal(extractorVocabularyYAML, &v); err != nil {
			vocabularyErr = fmt.Errorf("parsing extractor_vocabulary.yaml: %w", err)
			return
		}
		cachedVocabulary = &v
	})
	return cachedVocabulary, vocabularyErr
}
