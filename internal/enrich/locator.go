// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/meshintelligence/primer-engine/pkg/types"
)

// unpaywallAPIBase is the Unpaywall DOI lookup endpoint. Declared as a var
// so tests can substitute an httptest server.
var unpaywallAPIBase = "https://api.unpaywall.org/v2/"

// unpaywallResponse captures the fields we need from an Unpaywall record.
type unpaywallResponse struct {
	BestOALocation *unpaywallLocation  `json:"best_oa_location"`
	OALocations    []unpaywallLocation `json:"oa_locations"`
}

type unpaywallLocation struct {
	URLForPDF string `json:"url_for_pdf"`
}

// ResolveMissingURLs fills in full-text URLs for records that have a DOI
// but no known PDF URL, using the Unpaywall lookup service. Lookups for
// independent records run concurrently; an individual failure or a
// definitive not-found leaves that record unchanged. The input slice is
// not modified; the returned slice preserves input order.
func ResolveMissingURLs(ctx context.Context, client *http.Client, records []types.Record, cfg types.EnrichConfig) []types.Record {
	out := make([]types.Record, len(records))
	copy(out, records)

	var wg sync.WaitGroup
	for i := range out {
		if out[i].PDFURL != "" || out[i].DOI == "" {
			continue
		}
		wg.Add(1)
		go func(r *types.Record) {
			defer wg.Done()
			pdfURL, err := lookupOpenAccessPDF(ctx, client, r.DOI, cfg)
			if err != nil || pdfURL == "" {
				return
			}
			r.PDFURL = pdfURL
			r.IsOpenAccess = true
		}(&out[i])
	}
	wg.Wait()
	return out
}

// lookupOpenAccessPDF queries Unpaywall for one DOI. It prefers the
// location the service marks best, falling back to the first listed
// location that carries a direct PDF URL. A 404 is a definitive miss,
// reported as no URL rather than an error.
func lookupOpenAccessPDF(ctx context.Context, client *http.Client, doi string, cfg types.EnrichConfig) (string, error) {
	apiURL := unpaywallAPIBase + url.PathEscape(doi)
	if cfg.ContactEmail != "" {
		apiURL += "?email=" + url.QueryEscape(cfg.ContactEmail)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating Unpaywall request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("Unpaywall API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Unpaywall API returned HTTP %d", resp.StatusCode)
	}

	var up unpaywallResponse
	if err := json.NewDecoder(resp.Body).Decode(&up); err != nil {
		return "", fmt.Errorf("parsing Unpaywall response: %w", err)
	}

	if up.BestOALocation != nil && up.BestOALocation.URLForPDF != "" {
		return up.BestOALocation.URLForPDF, nil
	}
	for _, loc := range up.OALocations {
		if loc.URLForPDF != "" {
			return loc.URLForPDF, nil
		}
	}
	return "", nil
}
