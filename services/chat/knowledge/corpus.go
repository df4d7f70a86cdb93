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
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// Corpus — document loading and index lifecycle
// =============================================================================

var (
	spaceRunRE    = regexp.MustCompile(`[\t\f\v ]+`)
	newlineTrimRE = regexp.MustCompile(` *\n+ *`)
	newlineRunRE  = regexp.MustCompile(`\n{3,}`)
)

// CleanText normalizes whitespace while preserving line boundaries.
//
// # Description
//
//	Line boundaries matter downstream: the extractor chain operates on
//	individual lines, so paragraph structure must survive loading. The
//	normalization is:
//	  1. CRLF / CR converted to LF.
//	  2. Runs of spaces and tabs collapsed to a single space.
//	  3. Spaces trimmed around newlines, newline runs collapsed to one.
//	  4. Three or more consecutive newlines limited to two (paragraph break).
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = spaceRunRE.ReplaceAllString(text, " ")
	text = newlineTrimRE.ReplaceAllString(text, "\n")
	text = newlineRunRE.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// LoadDir loads every *.txt snapshot from dir, sorted by filename.
//
// # Description
//
//	A missing directory is not an error: it yields an empty corpus, which
//	the caller may choose to populate from the web instead. Unreadable
//	files are skipped with a warning rather than failing the whole load.
//
// # Outputs
//
//   - []string: Cleaned document texts in filename order. Nil when the
//     directory does not exist or contains no snapshots.
func LoadDir(dir string, logger *slog.Logger) []string {
	if logger == nil {
		logger = slog.Default()
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil
	}
	sort.Strings(paths)

	var docs []string
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			logger.Warn("knowledge: skipping unreadable snapshot",
				slog.String("path", p),
				slog.String("error", err.Error()),
			)
			continue
		}
		if doc := CleanText(string(raw)); doc != "" {
			docs = append(docs, doc)
		}
	}
	return docs
}

// Corpus owns the knowledge documents and their BM25 index.
//
// # Description
//
//	The index is built once and treated as immutable; Replace swaps in a
//	freshly built index atomically, so concurrent searches observe either
//	the old corpus or the new one, never a partial state. The tokenized
//	representation always has 1:1 index correspondence with the document
//	sequence (maintained inside Index).
//
// # Thread Safety
//
// Safe for concurrent use. Reads take a read lock; Replace takes the write
// lock only for the pointer swap.
type Corpus struct {
	mu     sync.RWMutex
	index  *Index
	logger *slog.Logger
}

// NewCorpus builds a Corpus over the given documents.
func NewCorpus(docs []string, logger *slog.Logger) *Corpus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Corpus{
		index:  NewIndex(docs),
		logger: logger,
	}
}

// Search returns up to k documents ranked by BM25 relevance.
func (c *Corpus) Search(query string, k int) []string {
	c.mu.RLock()
	idx := c.index
	c.mu.RUnlock()
	return idx.Search(query, k)
}

// Len returns the number of documents currently indexed.
func (c *Corpus) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index.Len()
}

// Replace rebuilds the index over a new document set and swaps it in.
func (c *Corpus) Replace(docs []string) {
	idx := NewIndex(docs)
	c.mu.Lock()
	c.index = idx
	c.mu.Unlock()
	c.logger.Info("knowledge: corpus replaced", slog.Int("documents", idx.Len()))
}

// watchDebounce coalesces bursts of filesystem events into a single reload.
// Editors and scrapers typically touch several snapshot files in quick
// succession.
const watchDebounce = 500 * time.Millisecond

// Watch reloads the corpus whenever the knowledge directory changes.
//
// # Description
//
//	Blocks until ctx is cancelled or the watcher fails. Intended to run in
//	its own goroutine from the serve command. Reload failures leave the
//	current index in place.
//
// # Inputs
//
//   - ctx: Cancels the watch loop.
//   - dir: The knowledge snapshot directory. Must exist at call time.
//
// # Outputs
//
//   - error: Non-nil if the watcher cannot be created or attached.
func (c *Corpus) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}
	c.logger.Info("knowledge: watching snapshot directory", slog.String("dir", dir))

	var timer *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case <-reload:
			c.Replace(LoadDir(dir, c.logger))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("knowledge: watcher error", slog.String("error", err.Error()))
		}
	}
}
