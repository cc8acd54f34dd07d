// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/meshintelligence/primer-engine/pkg/types"
)

// defaultMaxChars caps extracted text per record to keep the downstream
// prompt cost roughly constant per paper (~3,750 tokens each).
const defaultMaxChars = 15000

// Publishers often reject non-browser clients, so downloads carry a
// browser request identity.
var browserHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/124.0.0.0 Safari/537.36",
	"Accept":          "application/pdf,*/*",
	"Accept-Language": "en-US,en;q=0.9",
}

// downloadAndExtract fetches the PDF at url and returns its plain text,
// trimmed to the configured character budget. Any download, HTTP-status,
// or parse failure returns an error; the orchestrator degrades that
// record rather than failing the batch.
func downloadAndExtract(ctx context.Context, client *http.Client, url string, cfg types.EnrichConfig) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading download: %w", err)
	}

	text, err := extractText(data)
	if err != nil {
		return "", fmt.Errorf("extracting %s: %w", url, err)
	}
	if text == "" {
		return "", fmt.Errorf("no extractable text in %s", url)
	}

	maxChars := cfg.MaxChars
	if maxChars <= 0 {
		maxChars = defaultMaxChars
	}
	if len(text) > maxChars {
		text = text[:maxChars]
	}
	return text, nil
}

// extractText pulls plain text from a PDF page by page and joins the
// pages with blank lines. The parser panics on some malformed documents;
// the recover turns that into an ordinary error.
func extractText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parsing PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if pageText = strings.TrimSpace(pageText); pageText != "" {
			pages = append(pages, pageText)
		}
	}
	return strings.TrimSpace(strings.Join(pages, "\n\n")), nil
}
