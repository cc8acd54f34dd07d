// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meshintelligence/primer-engine/internal/expand"
	"github.com/meshintelligence/primer-engine/internal/library"
	"github.com/meshintelligence/primer-engine/internal/pipeline"
	"github.com/meshintelligence/primer-engine/internal/search"
	"github.com/meshintelligence/primer-engine/pkg/types"
)

var discoverCmd = &cobra.Command{
	Use:   "discover [topic]",
	Short: "Search, deduplicate, and rank papers for a topic",
	Long: `Discover expands the topic into search queries, runs them against
Semantic Scholar (and PubMed for biomedical fields), deduplicates the
results, and ranks them by composite quality score. Quoted phrases in the
topic are required to appear in a paper's title or abstract.

Without a Groq API key, expansion is skipped and the topic itself is used
as the only query.`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().Int("top", 10, "number of ranked papers to return")
	discoverCmd.Flags().Bool("no-expand", false, "skip LLM query expansion")
	discoverCmd.Flags().Bool("json", false, "output papers as JSON")
	discoverCmd.Flags().Bool("yaml", false, "output papers as YAML")
	discoverCmd.Flags().Bool("save", false, "save the run to the local library")
	discoverCmd.Flags().String("library-dir", "library", "library directory for --save")

	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a research topic")
	}
	topic := strings.Join(args, " ")

	topN, _ := cmd.Flags().GetInt("top")
	noExpand, _ := cmd.Flags().GetBool("no-expand")

	qs := expandTopic(cmd.Context(), topic, noExpand)
	fmt.Fprintf(os.Stderr, "queries: %v (field: %q)\n", qs.Queries, qs.Field)

	cfg := searchConfig()
	p := &pipeline.Pipeline{
		Scheduler: newScheduler(cfg),
		Client:    &http.Client{Timeout: cfg.Timeout},
		Enrich:    enrichConfig(),
		TopN:      topN,
		Log:       os.Stderr,
	}

	records, err := p.Discover(cmd.Context(), topic, qs)
	if err != nil {
		return err
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		dir, _ := cmd.Flags().GetString("library-dir")
		store, err := library.Open(types.LibraryConfig{Dir: dir})
		if err != nil {
			return err
		}
		defer store.Close()
		runID, err := store.Save(topic, qs, records)
		if err != nil {
			return fmt.Errorf("saving run: %w", err)
		}
		fmt.Fprintf(os.Stderr, "saved run %d (%d records)\n", runID, len(records))
	}

	return writeRecords(cmd, records)
}

// expandTopic runs LLM query expansion when a key is configured, degrading
// to the single-query fallback on any failure.
func expandTopic(ctx context.Context, topic string, noExpand bool) types.QuerySet {
	if noExpand {
		return expand.Fallback(topic)
	}
	exp, err := expand.New(types.ExpandConfig{AIConfig: types.AIConfig{APIKey: secret("groq-api-key")}})
	if err != nil {
		return expand.Fallback(topic)
	}
	qs, err := exp.Expand(ctx, topic)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: query expansion failed: %v\n", err)
		return expand.Fallback(topic)
	}
	return qs
}

// writeRecords renders records in the format the flags select.
func writeRecords(cmd *cobra.Command, records []types.Record) error {
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return search.FormatJSON(records, os.Stdout)
	}
	if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
		return search.FormatYAML(records, os.Stdout)
	}
	search.FormatTable(records, os.Stdout)
	return nil
}
