// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline composes discovery, ranking, and enrichment into the
// two operations callers consume: Discover (ranked, unenriched records
// for a preview) and EnrichRecords (full-text enrichment of a ranked or
// caller-curated list). The pipeline is stateless per invocation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/meshintelligence/primer-engine/internal/enrich"
	"github.com/meshintelligence/primer-engine/internal/quality"
	"github.com/meshintelligence/primer-engine/internal/search"
	"github.com/meshintelligence/primer-engine/pkg/types"
)

// Systemic conditions callers must be able to distinguish: an empty
// result is never surfaced as a silent success.
var (
	// ErrEmptyTopic rejects caller input before any pipeline work begins.
	ErrEmptyTopic = errors.New("topic is empty")

	// ErrNoResults means every backend returned nothing for the topic.
	ErrNoResults = errors.New("no papers found")

	// ErrNoUsableAbstracts means papers were found but none carried an
	// abstract long enough to rank.
	ErrNoUsableAbstracts = errors.New("no papers with usable abstracts")
)

// defaultTopN is how many ranked records the preview and the primer use.
const defaultTopN = 10

// Pipeline owns the injected collaborators for one engine instance. The
// HTTP client is constructed by the caller and shared by the enrichment
// stages; backends carry their own.
type Pipeline struct {
	Scheduler *search.Scheduler
	Client    *http.Client
	Enrich    types.EnrichConfig

	// TopN caps the ranked set (default 10).
	TopN int

	// Log receives progress and warning lines. Defaults to io.Discard.
	Log io.Writer
}

func (p *Pipeline) log() io.Writer {
	if p.Log == nil {
		return io.Discard
	}
	return p.Log
}

func (p *Pipeline) topN() int {
	if p.TopN <= 0 {
		return defaultTopN
	}
	return p.TopN
}

// Discover runs the expanded queries through search, deduplication, and
// ranking, returning the top-N records. Quoted phrases in the original
// topic become required phrases for eligibility. The returned records are
// scored but unenriched, directly consumable for a preview listing.
func (p *Pipeline) Discover(ctx context.Context, topic string, qs types.QuerySet) ([]types.Record, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, ErrEmptyTopic
	}
	queries := qs.Queries
	if len(queries) == 0 {
		queries = []string{topic}
	}

	raw := p.Scheduler.SearchAll(ctx, queries, qs.Field)
	if len(raw) == 0 {
		return nil, ErrNoResults
	}
	fmt.Fprintf(p.log(), "ranking %d records\n", len(raw))

	required := quality.ExtractQuotedPhrases(topic)
	ranked := quality.FilterAndRank(raw, p.topN(), required)
	if len(ranked) == 0 {
		return nil, ErrNoUsableAbstracts
	}
	return ranked, nil
}

// EnrichRecords resolves missing full-text URLs, then downloads and
// extracts text for every open-access record, partitioning the input into
// enriched and failed. It accepts any record list, including one curated
// by the caller without a prior search.
func (p *Pipeline) EnrichRecords(ctx context.Context, records []types.Record) (enriched, failed []types.Record) {
	located := enrich.ResolveMissingURLs(ctx, p.Client, records, p.Enrich)

	candidates := 0
	for _, r := range located {
		if r.IsOpenAccess && r.PDFURL != "" {
			candidates++
		}
	}
	fmt.Fprintf(p.log(), "fetching full text for %d open-access records\n", candidates)

	result := enrich.Enrich(ctx, p.Client, located, p.Enrich)
	return result.Enriched, result.Failed
}
