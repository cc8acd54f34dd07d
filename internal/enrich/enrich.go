// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich resolves full-text URLs and replaces abstract-only
// content with extracted PDF text, isolating per-record failure.
package enrich

import (
	"context"
	"net/http"
	"sync"

	"github.com/meshintelligence/primer-engine/pkg/types"
)

// Result holds the two output partitions of an enrichment run. Enriched
// records carry either extracted full text or their original abstract
// (pass-through); Failed records are open-access candidates whose PDF
// could not be fetched, suitable for a further-reading listing.
type Result struct {
	Enriched []types.Record
	Failed   []types.Record
}

// Enrich attempts to fetch full text for every open-access record with a
// resolved PDF URL. Downloads for distinct records run concurrently;
// publisher hosts are independent per record and share no rate budget.
// The input slice is not modified. Within each partition the
// pre-enrichment record order is preserved.
//
// If every candidate fails and no pass-through records exist, the
// original input is returned as Enriched so downstream generation always
// has at least abstracts to work from.
func Enrich(ctx context.Context, client *http.Client, records []types.Record, cfg types.EnrichConfig) Result {
	candidates := make([]int, 0, len(records))
	for i, r := range records {
		if r.IsOpenAccess && r.PDFURL != "" {
			candidates = append(candidates, i)
		}
	}

	if len(candidates) == 0 {
		return Result{Enriched: append([]types.Record(nil), records...)}
	}

	texts := make([]string, len(candidates))
	var wg sync.WaitGroup
	for slot, idx := range candidates {
		wg.Add(1)
		go func(slot int, r types.Record) {
			defer wg.Done()
			text, err := downloadAndExtract(ctx, client, r.PDFURL, cfg)
			if err != nil {
				return
			}
			texts[slot] = text
		}(slot, records[idx])
	}
	wg.Wait()

	isCandidate := make(map[int]int, len(candidates))
	for slot, idx := range candidates {
		isCandidate[idx] = slot
	}

	var out Result
	for i, r := range records {
		slot, ok := isCandidate[i]
		if !ok {
			out.Enriched = append(out.Enriched, r)
			continue
		}
		if texts[slot] == "" {
			out.Failed = append(out.Failed, r)
			continue
		}
		r.FullText = texts[slot]
		out.Enriched = append(out.Enriched, r)
	}

	if len(out.Enriched) == 0 {
		return Result{Enriched: append([]types.Record(nil), records...)}
	}
	return out
}
