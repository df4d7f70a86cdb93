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

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Embedded Intent Vocabulary
// =============================================================================

//go:embed intent_vocabulary.yaml
var intentVocabularyYAML []byte

// intentVocabulary holds the per-category trigger phrase lists.
//
// # Thread Safety
//
// Immutable after load; safe for concurrent use.
type intentVocabulary struct {
	Notify    []string `yaml:"notify"`
	Knowledge []string `yaml:"knowledge"`
	Support   []string `yaml:"support"`
	Handoff   []string `yaml:"handoff"`
}

var (
	cachedIntents *intentVocabulary
	intentsOnce   sync.Once
	intentsErr    error
)

// loadIntentVocabulary parses and caches the embedded intent vocabulary.
//
// Safe for concurrent use (sync.Once internally).
func loadIntentVocabulary() (*intentVocabulary, error) {
	intentsOnce.Do(func() {
		var v intentVocabulary
		if err := yaml.Unmarshal(intentVocabularyYAML, &v); err != nil {
			intentsErr = fmt.Errorf("parsing intent_vocabulary.yaml: %w", err)
			return
		}
		cachedIntents = &v
	})
	return cachedIntents, intentsErr
}
