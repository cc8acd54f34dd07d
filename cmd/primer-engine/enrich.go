// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/meshintelligence/primer-engine/internal/pipeline"
	"github.com/meshintelligence/primer-engine/pkg/types"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich <records-file>",
	Short: "Fetch full text for a list of discovered papers",
	Long: `Enrich reads a record list (JSON or YAML, as produced by
'discover --json' or 'discover --yaml'), resolves missing full-text URLs
by DOI, downloads open-access PDFs concurrently, and extracts their text.
Extracted text is written one file per paper into the text directory;
papers whose PDFs could not be fetched are listed separately.`,
	Args: cobra.ExactArgs(1),
	RunE: runEnrich,
}

func init() {
	enrichCmd.Flags().String("text-dir", "fulltext", "directory for extracted text files")

	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, args []string) error {
	records, err := readRecordsFile(args[0])
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no records in %s", args[0])
	}

	cfg := enrichConfig()
	p := &pipeline.Pipeline{
		Client: &http.Client{Timeout: cfg.Timeout},
		Enrich: cfg,
		Log:    os.Stderr,
	}

	enriched, failed := p.EnrichRecords(cmd.Context(), records)

	textDir, _ := cmd.Flags().GetString("text-dir")
	written := 0
	for _, r := range enriched {
		if r.FullText == "" {
			continue
		}
		if err := writeFullText(textDir, r); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			continue
		}
		written++
	}

	fmt.Printf("%d enriched (%d with full text), %d failed\n", len(enriched), written, len(failed))
	for _, r := range failed {
		fmt.Printf("failed: %s\n", r.Title)
	}
	return nil
}

// readRecordsFile loads a record list from a JSON or YAML file.
func readRecordsFile(path string) ([]types.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var records []types.Record
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	return records, nil
}

// writeFullText stores one record's extracted text under dir, named by a
// slug of its identifier or title.
func writeFullText(dir string, r types.Record) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, recordSlug(r)+".txt")
	if err := os.WriteFile(path, []byte(r.FullText), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// recordSlug returns a filesystem-safe filename stem for a record.
func recordSlug(r types.Record) string {
	base := r.DOI
	if base == "" {
		base = r.SourceID
	}
	if base == "" {
		base = r.Title
		if len(base) > 60 {
			base = base[:60]
		}
	}
	return strings.Map(func(c rune) rune {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '.', c == '-':
			return c
		default:
			return '-'
		}
	}, base)
}
