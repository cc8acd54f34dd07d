// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/meshintelligence/primer-engine/internal/httputil"
	"github.com/meshintelligence/primer-engine/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

// semanticPaperBase is the landing-page prefix for canonical record URLs.
const semanticPaperBase = "https://www.semanticscholar.org/paper/"

const semanticFields = "title,authors,year,abstract,citationCount,influentialCitationCount,isOpenAccess,openAccessPdf,venue,externalIds,paperId"

// Preprint repositories are excluded: the venue bonus downstream treats a
// venue string as a peer-review proxy, so preprints must not slip through.
var (
	preprintExternalIDKeys  = []string{"ArXiv", "bioRxiv", "medRxiv", "chemRxiv"}
	preprintVenueSubstrings = []string{"arxiv", "biorxiv", "medrxiv", "ssrn", "chemrxiv", "techrxiv", "preprint"}
)

// SemanticScholarBackend queries the Semantic Scholar Graph API, the
// primary broad-coverage catalog.
type SemanticScholarBackend struct {
	Client *http.Client
	APIKey string
}

// Name returns the backend identifier.
func (b *SemanticScholarBackend) Name() string { return "semantic_scholar" }

// Search issues one paginated request ordered by citation count descending
// with a minimum-citation floor, and parses the JSON payload into Records.
// HTTP 429 is retried with exponential backoff inside httputil.DoWithRetry.
func (b *SemanticScholarBackend) Search(ctx context.Context, query string, cfg types.SearchConfig) ([]types.Record, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty Semantic Scholar query")
	}

	limit := cfg.Limit
	if limit <= 0 {
		limit = 50
	}
	minCitations := cfg.MinCitations
	if minCitations <= 0 {
		minCitations = 2
	}

	params := url.Values{
		"query":            {query},
		"fields":           {semanticFields},
		"limit":            {fmt.Sprintf("%d", limit)},
		"sort":             {"citationCount"},
		"minCitationCount": {fmt.Sprintf("%d", minCitations)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, semanticAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", cfg.UserAgent)
	if b.APIKey != "" {
		req.Header.Set("x-api-key", b.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}

	var records []types.Record
	for _, paper := range sr.Data {
		if r, ok := parseSemanticPaper(paper); ok {
			records = append(records, r)
		}
	}
	return records, nil
}

// parseSemanticPaper converts one raw API paper into a Record. Raw records
// with an empty title, and preprints, are rejected at this boundary.
func parseSemanticPaper(paper semanticPaper) (types.Record, bool) {
	if paper.Title == "" {
		return types.Record{}, false
	}
	if isPreprint(paper) {
		return types.Record{}, false
	}

	r := types.Record{
		Title:                    paper.Title,
		Year:                     paper.Year,
		Abstract:                 paper.Abstract,
		CitationCount:            paper.CitationCount,
		InfluentialCitationCount: paper.InfluentialCitationCount,
		IsOpenAccess:             paper.IsOpenAccess,
		Venue:                    paper.Venue,
		DOI:                      externalIDString(paper.ExternalIDs, "DOI"),
		SourceID:                 paper.PaperID,
		Source:                   "semantic_scholar",
	}
	for _, a := range paper.Authors {
		if a.Name != "" {
			r.Authors = append(r.Authors, a.Name)
		}
	}
	if paper.OpenAccessPDF != nil {
		r.PDFURL = paper.OpenAccessPDF.URL
	}
	if paper.PaperID != "" {
		r.URL = semanticPaperBase + paper.PaperID
	}
	return r, true
}

// isPreprint reports whether the raw record comes from a preprint
// repository, judged by its external-identifier keys and venue string.
func isPreprint(paper semanticPaper) bool {
	for _, key := range preprintExternalIDKeys {
		if _, ok := paper.ExternalIDs[key]; ok {
			return true
		}
	}
	venue := strings.ToLower(paper.Venue)
	for _, sub := range preprintVenueSubstrings {
		if strings.Contains(venue, sub) {
			return true
		}
	}
	return false
}

// externalIDString returns the string value under key, or "" when the key
// is absent or not a string (CorpusId, for one, is numeric).
func externalIDString(ids map[string]any, key string) string {
	if s, ok := ids[key].(string); ok {
		return s
	}
	return ""
}

// Semantic Scholar API JSON structures. ExternalIds is a map: the preprint
// check cares about key presence, not just known values.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID                  string           `json:"paperId"`
	Title                    string           `json:"title"`
	Abstract                 string           `json:"abstract"`
	Year                     int              `json:"year"`
	CitationCount            int              `json:"citationCount"`
	InfluentialCitationCount int              `json:"influentialCitationCount"`
	IsOpenAccess             bool             `json:"isOpenAccess"`
	OpenAccessPDF            *semanticPDF     `json:"openAccessPdf"`
	Venue                    string           `json:"venue"`
	Authors                  []semanticAuthor `json:"authors"`
	ExternalIDs              map[string]any   `json:"externalIds"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticPDF struct {
	URL string `json:"url"`
}
