// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the primer-engine pipeline.
package types

// Record represents one discovered scholarly work, normalized across
// backends. Discovery fields are fixed once a backend parses the record;
// QualityScore is set by the ranking stage and FullText by the enrichment
// stage, each exactly once.
type Record struct {
	// Title is the work's title as returned by the source. Never empty;
	// backends drop title-less raw records at the parse boundary.
	Title string `json:"title" yaml:"title"`

	// Authors lists author display names in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Year is the publication year, or 0 when the source omitted it.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Abstract is the work's abstract, possibly empty.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// CitationCount is the total citation count reported by the source.
	CitationCount int `json:"citation_count" yaml:"citation_count"`

	// InfluentialCitationCount counts citations judged to build
	// substantially on this work.
	InfluentialCitationCount int `json:"influential_citation_count" yaml:"influential_citation_count"`

	// IsOpenAccess reports whether a freely readable copy is known to exist.
	IsOpenAccess bool `json:"is_open_access" yaml:"is_open_access"`

	// PDFURL is a direct full-text URL, when one is known. The locator
	// stage fills it for DOI-bearing records that lack one.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// Venue is the journal or conference name, when known.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// DOI is the work's DOI, when known.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// SourceID is the backend-native identifier (Semantic Scholar paper
	// ID or PubMed PMID).
	SourceID string `json:"source_id,omitempty" yaml:"source_id,omitempty"`

	// URL is a canonical landing page for the work.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Source identifies the backend that produced this record
	// (e.g. "semantic_scholar", "pubmed").
	Source string `json:"source" yaml:"source"`

	// QualityScore is the composite ranking score. Zero until ranked.
	QualityScore float64 `json:"quality_score" yaml:"quality_score"`

	// FullText is the extracted full text, set by enrichment. Excluded
	// from serialized output; it can run to thousands of characters.
	FullText string `json:"-" yaml:"-"`
}

// QuerySet holds the expanded form of a research topic: 2-3 search query
// strings, a free-text field label (e.g. "neuroscience"), and key technical
// terms. Produced by query expansion and consumed read-only by the scheduler.
type QuerySet struct {
	Queries  []string `json:"queries" yaml:"queries"`
	Field    string   `json:"field" yaml:"field"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}
