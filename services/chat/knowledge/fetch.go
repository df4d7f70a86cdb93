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
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// =============================================================================
// Web page fetching — used only when no local snapshots exist
// =============================================================================

// DefaultProductURLs is the product page set the corpus can be seeded from
// when no local snapshots are present.
var DefaultProductURLs = []string{
	"https://www.infinitepay.io",
	"https://www.infinitepay.io/maquininha",
	"https://www.infinitepay.io/maquininha-celular",
	"https://www.infinitepay.io/tap-to-pay",
	"https://www.infinitepay.io/pdv",
	"https://www.infinitepay.io/receba-na-hora",
	"https://www.infinitepay.io/gestao-de-cobranca-2",
	"https://www.infinitepay.io/gestao-de-cobranca",
	"https://www.infinitepay.io/link-de-pagamento",
	"https://www.infinitepay.io/loja-online",
	"https://www.infinitepay.io/boleto",
	"https://www.infinitepay.io/conta-digital",
	"https://www.infinitepay.io/conta-pj",
	"https://www.infinitepay.io/pix",
	"https://www.infinitepay.io/pix-parcelado",
	"https://www.infinitepay.io/emprestimo",
	"https://www.infinitepay.io/cartao",
	"https://www.infinitepay.io/rendimento",
}

// fetchTimeout bounds each page request. Slow pages are skipped, not waited on.
const fetchTimeout = 10 * time.Second

// FetchPages downloads the given pages and extracts their visible text.
//
// # Description
//
//	Each URL is fetched independently; any failure (network, non-2xx,
//	unparseable HTML) skips that page and continues. The result may be
//	shorter than the input, including empty — degraded retrieval is
//	resolved downstream with a fixed message, never an error.
//
// # Inputs
//
//   - ctx: Cancels in-flight requests.
//   - urls: Pages to fetch. Nil defaults to DefaultProductURLs.
//
// # Outputs
//
//   - []string: Cleaned visible text per successfully fetched page.
func FetchPages(ctx context.Context, urls []string, logger *slog.Logger) []string {
	if logger == nil {
		logger = slog.Default()
	}
	if urls == nil {
		urls = DefaultProductURLs
	}

	client := &http.Client{Timeout: fetchTimeout}
	var docs []string
	for _, u := range urls {
		doc, err := fetchPage(ctx, client, u)
		if err != nil {
			logger.Warn("knowledge: page fetch failed",
				slog.String("url", u),
				slog.String("error", err.Error()),
			)
			continue
		}
		if doc != "" {
			docs = append(docs, doc)
		}
	}
	return docs
}

func fetchPage(ctx context.Context, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &httpStatusError{status: resp.Status}
	}

	root, err := html.Parse(resp.Body)
	if err != nil {
		return "", err
	}
	return CleanText(visibleText(root)), nil
}

type httpStatusError struct{ status string }

func (e *httpStatusError) Error() string { return "unexpected status " + e.status }

// visibleText walks the DOM collecting text nodes, skipping script/style
// subtrees. Text nodes are joined with spaces; the caller normalizes.
func visibleText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
