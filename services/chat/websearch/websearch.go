// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package websearch implements the external search fallback against
// DuckDuckGo, with no API key required.
//
// Two endpoints are tried in order:
//
//  1. The HTML endpoint (html.duckduckgo.com/html/), scraped for organic
//     result anchors. Richer results, but occasionally rate-limited.
//  2. The Instant Answer API (api.duckduckgo.com), a JSON endpoint that
//     covers abstracts and related topics. Sparser, but reliable.
//
// All failures collapse to an empty result list — search is a best-effort
// fallback route, never an error the user sees.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	htmlEndpoint = "https://html.duckduckgo.com/html/"
	jsonEndpoint = "https://api.duckduckgo.com/"

	// Without a browser user agent the HTML endpoint serves a bot page
	// with no result anchors.
	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

	searchTimeout = 10 * time.Second

	// maxRelatedTopics caps how many Instant Answer related topics are
	// considered; beyond the first few they drift off-query.
	maxRelatedTopics = 5
)

// Result is one search hit.
type Result struct {
	Title string
	URL   string
}

// Client performs DuckDuckGo searches.
//
// # Thread Safety
//
// Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	htmlURL    string
	jsonURL    string
	logger     *slog.Logger
}

// NewClient creates a search client with the production endpoints.
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: searchTimeout},
		htmlURL:    htmlEndpoint,
		jsonURL:    jsonEndpoint,
		logger:     logger,
	}
}

// Search returns up to topK results for query.
//
// # Description
//
//	HTML scrape first, Instant Answer API second. Results are normalized
//	(redirect-unwrapped, query/fragment stripped), deduplicated in order,
//	and capped at topK. Any failure on both endpoints yields an empty
//	slice and no error — callers route the empty case themselves.
func (c *Client) Search(ctx context.Context, query string, topK int) []Result {
	if topK <= 0 || strings.TrimSpace(query) == "" {
		return nil
	}

	results := c.searchHTML(ctx, query)
	if len(results) == 0 {
		results = c.searchInstantAnswer(ctx, query)
	}

	seen := make(map[string]bool, len(results))
	out := make([]Result, 0, topK)
	for _, r := range results {
		u := normalizeURL(r.URL)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		title := strings.TrimSpace(r.Title)
		if title == "" {
			title = u
		}
		out = append(out, Result{Title: title, URL: u})
		if len(out) == topK {
			break
		}
	}
	return out
}

// searchHTML scrapes the organic result anchors from the HTML endpoint.
func (c *Client) searchHTML(ctx context.Context, query string) []Result {
	endpoint := c.htmlURL + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("websearch: html endpoint failed", slog.String("error", err.Error()))
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("websearch: html endpoint status", slog.Int("status", resp.StatusCode))
		return nil
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil
	}

	var results []Result
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" && hasClass(n, "result__a") {
			href := attr(n, "href")
			title := nodeText(n)
			if href != "" {
				results = append(results, Result{Title: title, URL: href})
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return results
}

// instantAnswer is the subset of the Instant Answer API response we read.
type instantAnswer struct {
	AbstractURL   string `json:"AbstractURL"`
	Heading       string `json:"Heading"`
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

// searchInstantAnswer queries the JSON Instant Answer API.
func (c *Client) searchInstantAnswer(ctx context.Context, query string) []Result {
	endpoint := fmt.Sprintf("%s?q=%s&format=json&no_html=1", c.jsonURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("websearch: instant answer failed", slog.String("error", err.Error()))
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}
	var ia instantAnswer
	if err := json.Unmarshal(raw, &ia); err != nil {
		return nil
	}

	var results []Result
	if ia.AbstractURL != "" {
		results = append(results, Result{Title: ia.Heading, URL: ia.AbstractURL})
	}
	for i, t := range ia.RelatedTopics {
		if i >= maxRelatedTopics {
			break
		}
		if t.FirstURL != "" {
			results = append(results, Result{Title: t.Text, URL: t.FirstURL})
		}
	}
	return results
}

// normalizeURL unwraps DuckDuckGo redirect links and strips query/fragment.
//
// # Description
//
//	HTML-endpoint anchors point at /l/?uddg=<encoded target>; the target is
//	unwrapped recursively in case of nested redirects. Non-http(s) schemes
//	and duckduckgo.com hosts are dropped (returned as ""). The query string
//	and fragment are stripped so the same page deduplicates regardless of
//	tracking parameters.
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	if strings.HasSuffix(u.Hostname(), "duckduckgo.com") || u.Host == "" {
		if target := u.Query().Get("uddg"); target != "" {
			return normalizeURL(target)
		}
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}

	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// hasClass reports whether the element carries cls in its class attribute.
func hasClass(n *html.Node, cls string) bool {
	for _, f := range strings.Fields(attr(n, "class")) {
		if f == cls {
			return true
		}
	}
	return false
}

// attr returns the value of the named attribute, or "".
func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// nodeText concatenates all text descendants of n.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
