// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meshintelligence/primer-engine/internal/pipeline"
	"github.com/meshintelligence/primer-engine/internal/primer"
	"github.com/meshintelligence/primer-engine/pkg/types"
)

var primerCmd = &cobra.Command{
	Use:   "primer [topic]",
	Short: "Run the full pipeline and generate an academic primer",
	Long: `Primer runs the whole flow: expand the topic into queries, discover and
rank papers, fetch full text for open-access papers, and stream a generated
academic primer to stdout (or a file). Papers whose PDFs could not be
fetched appear in the primer's further-reading section.

Requires a Groq API key (.secrets/groq-api-key or GROQ_API_KEY).`,
	RunE: runPrimer,
}

func init() {
	primerCmd.Flags().Int("top", 10, "number of ranked papers to use")
	primerCmd.Flags().Bool("no-expand", false, "skip LLM query expansion")
	primerCmd.Flags().String("output", "", "write the primer to a file instead of stdout")
	primerCmd.Flags().String("records", "", "use a curated record list (JSON/YAML) and skip search")

	rootCmd.AddCommand(primerCmd)
}

func runPrimer(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a research topic")
	}
	topic := strings.Join(args, " ")

	gen, err := primer.New(types.PrimerConfig{AIConfig: types.AIConfig{APIKey: secret("groq-api-key")}})
	if err != nil {
		return err
	}

	topN, _ := cmd.Flags().GetInt("top")
	noExpand, _ := cmd.Flags().GetBool("no-expand")

	cfg := searchConfig()
	p := &pipeline.Pipeline{
		Scheduler: newScheduler(cfg),
		Client:    &http.Client{Timeout: enrichConfig().Timeout},
		Enrich:    enrichConfig(),
		TopN:      topN,
		Log:       os.Stderr,
	}

	// A caller-curated record list skips search entirely.
	var records []types.Record
	if path, _ := cmd.Flags().GetString("records"); path != "" {
		records, err = readRecordsFile(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "using %d curated records\n", len(records))
	} else {
		qs := expandTopic(cmd.Context(), topic, noExpand)
		fmt.Fprintf(os.Stderr, "queries: %v (field: %q)\n", qs.Queries, qs.Field)
		records, err = p.Discover(cmd.Context(), topic, qs)
		if err != nil {
			return err
		}
	}

	enriched, failed := p.EnrichRecords(cmd.Context(), records)

	out := os.Stdout
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		defer f.Close()
		out = f
	}

	if err := gen.Stream(cmd.Context(), topic, enriched, failed, out); err != nil {
		return fmt.Errorf("generating primer: %w", err)
	}
	fmt.Fprintln(out)
	return nil
}
