// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/meshintelligence/primer-engine/pkg/types"
)

// biomedicalFields gates the PubMed backend: it is only worth querying for
// fields where PubMed has authoritative coverage.
var biomedicalFields = []string{"biology", "medicine", "neuroscience", "biochemistry", "genetics", "pharmacology"}

// Scheduler runs a QuerySet's queries against the configured backends.
// Queries run sequentially with an enforced inter-query delay; running
// them in parallel triggers provider throttling.
type Scheduler struct {
	Semantic Backend
	PubMed   Backend
	Config   types.SearchConfig

	// Log receives per-call warnings and progress lines. Defaults to
	// io.Discard when nil.
	Log io.Writer
}

// SearchAll runs every query against Semantic Scholar, then against PubMed
// when the field label is biomedical-adjacent, and concatenates the results
// in backend-then-query order. A failing call is logged and skipped; it
// never aborts the remaining calls.
func (s *Scheduler) SearchAll(ctx context.Context, queries []string, field string) []types.Record {
	log := s.Log
	if log == nil {
		log = io.Discard
	}

	var records []types.Record

	ssLimiter := newPacer(s.Config.SemanticScholarDelay, 2*time.Second, s.Config.SemanticScholarAPIKey != "")
	records = append(records, s.runBackend(ctx, s.Semantic, queries, ssLimiter, log)...)

	if s.PubMed != nil && isBiomedical(field) {
		pmLimiter := newPacer(s.Config.PubMedDelay, 400*time.Millisecond, s.Config.NCBIAPIKey != "")
		records = append(records, s.runBackend(ctx, s.PubMed, queries, pmLimiter, log)...)
	}

	return records
}

// runBackend executes the queries sequentially against one backend,
// waiting on the pacer between calls and isolating failures.
func (s *Scheduler) runBackend(ctx context.Context, b Backend, queries []string, pacer *rate.Limiter, log io.Writer) []types.Record {
	if b == nil {
		return nil
	}

	var records []types.Record
	for _, query := range queries {
		if pacer != nil {
			if err := pacer.Wait(ctx); err != nil {
				return records
			}
		}
		results, err := b.Search(ctx, query, s.Config)
		if err != nil {
			fmt.Fprintf(log, "warning: %s query %q failed: %v\n", b.Name(), query, err)
			continue
		}
		fmt.Fprintf(log, "%s: %d records for %q\n", b.Name(), len(results), query)
		records = append(records, results...)
	}
	return records
}

// newPacer builds the inter-query limiter for one backend. With an API key
// the provider's ceiling is high enough that no pacing is needed. The
// limiter starts with one token, so the first query is never delayed.
func newPacer(delay, fallback time.Duration, hasKey bool) *rate.Limiter {
	if hasKey {
		return nil
	}
	if delay <= 0 {
		delay = fallback
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

// isBiomedical reports whether the expanded field label names a
// biomedical-adjacent domain.
func isBiomedical(field string) bool {
	field = strings.ToLower(field)
	for _, f := range biomedicalFields {
		if strings.Contains(field, f) {
			return true
		}
	}
	return false
}
