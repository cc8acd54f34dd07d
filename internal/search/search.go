// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries scholarly catalog APIs and returns uniform records.
// Each backend owns its transport, retry discipline, and wire-format parsing;
// the scheduler runs the expanded queries against every configured backend
// with backend-specific pacing and isolates per-call failures.
package search

import (
	"context"

	"github.com/meshintelligence/primer-engine/pkg/types"
)

// Backend searches a single scholarly catalog. Each backend (Semantic
// Scholar, PubMed) implements this interface per the Strategy pattern.
// A backend returns an error rather than swallowing it; the scheduler
// decides to degrade-and-continue.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, cfg types.SearchConfig) ([]types.Record, error)
}
