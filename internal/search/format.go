// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/meshintelligence/primer-engine/pkg/types"
)

// FormatTable writes ranked records as a human-readable table to w.
func FormatTable(records []types.Record, w io.Writer) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No records found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-4s  %-6s  %-5s  %s\n",
		"Rank", "Title", "Authors", "Year", "Score", "Cites", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 118))

	for i, r := range records {
		title := r.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		year := ""
		if r.Year > 0 {
			year = fmt.Sprintf("%d", r.Year)
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-4s  %-6.1f  %-5d  %s\n",
			i+1, title, formatAuthors(r.Authors), year, r.QualityScore, r.CitationCount, r.Source)
	}

	fmt.Fprintf(w, "\n%d records\n", len(records))
}

// FormatJSON writes records as indented JSON to w.
func FormatJSON(records []types.Record, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// FormatYAML writes records as a YAML document to w.
func FormatYAML(records []types.Record, w io.Writer) error {
	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshaling records: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
