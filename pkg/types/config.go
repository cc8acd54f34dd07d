// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "primer-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the discovery stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Limit is the per-query result cap requested from Semantic Scholar
	// (default 50).
	Limit int `json:"limit" yaml:"limit"`

	// PubMedLimit is the per-query result cap requested from PubMed
	// (default 25).
	PubMedLimit int `json:"pubmed_limit" yaml:"pubmed_limit"`

	// MinCitations is the minimum-citation floor passed to Semantic
	// Scholar to suppress noise (default 2).
	MinCitations int `json:"min_citations" yaml:"min_citations"`

	// SemanticScholarAPIKey lifts the public rate ceiling when set; the
	// scheduler then drops its inter-query delay.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// NCBIAPIKey lifts the PubMed rate ceiling when set.
	NCBIAPIKey string `json:"ncbi_api_key,omitempty" yaml:"ncbi_api_key,omitempty"`

	// SemanticScholarDelay is the gap between unauthenticated Semantic
	// Scholar queries (default 2s; the public ceiling is 1 req/s and the
	// extra second gives the rolling window room).
	SemanticScholarDelay time.Duration `json:"semantic_scholar_delay" yaml:"semantic_scholar_delay"`

	// PubMedDelay is the gap between unauthenticated PubMed queries
	// (default 400ms; the public ceiling is 3 req/s).
	PubMedDelay time.Duration `json:"pubmed_delay" yaml:"pubmed_delay"`
}

// EnrichConfig holds settings for the PDF locator and enrichment stages.
type EnrichConfig struct {
	HTTPConfig `yaml:",inline"`

	// ContactEmail identifies us to the open-access lookup service.
	ContactEmail string `json:"contact_email,omitempty" yaml:"contact_email,omitempty"`

	// MaxChars caps extracted full text per record (default 15000,
	// roughly constant downstream prompt cost per paper).
	MaxChars int `json:"max_chars" yaml:"max_chars"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "llama-3.3-70b-versatile").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the API endpoint for OpenAI-compatible providers
	// (default is the Groq endpoint).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// ExpandConfig holds settings for the query-expansion collaborator.
type ExpandConfig struct {
	AIConfig `yaml:",inline"`
}

// PrimerConfig holds settings for primer generation.
type PrimerConfig struct {
	AIConfig `yaml:",inline"`

	// MaxTokens caps the generated primer length (default 3000).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// LibraryConfig holds settings for the optional discovery library.
type LibraryConfig struct {
	// Dir is the directory holding the library database (default "library").
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Search  SearchConfig  `json:"search" yaml:"search"`
	Enrich  EnrichConfig  `json:"enrich" yaml:"enrich"`
	Expand  ExpandConfig  `json:"expand" yaml:"expand"`
	Primer  PrimerConfig  `json:"primer" yaml:"primer"`
	Library LibraryConfig `json:"library" yaml:"library"`
}
