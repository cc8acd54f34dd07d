// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the primer-engine CLI.
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meshintelligence/primer-engine/internal/search"
	"github.com/meshintelligence/primer-engine/internal/secrets"
	"github.com/meshintelligence/primer-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	defaultSearchTimeout   = 20 * time.Second
	defaultDownloadTimeout = 30 * time.Second
	defaultUserAgent       = "primer-engine/0.1"
)

// loadedSecrets holds API keys loaded from .secrets/ and the environment
// at startup.
var loadedSecrets map[string]string

// secret returns the named secret or the empty string.
func secret(key string) string {
	return loadedSecrets[key]
}

// rootCmd is the base command for the primer-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "primer-engine",
	Short: "Discover, rank, and enrich scholarly papers for primer generation",
	Long: `primer-engine turns a research topic into a ranked, full-text-enriched set
of scholarly papers and, optionally, an academic primer generated from them.

The pipeline stages are subcommands: expand (topic to search queries),
discover (search, deduplicate, rank), enrich (full-text fetch), and primer
(the whole flow ending in generated prose). Discovery runs can be saved to
a local library for later lookup.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./primer-engine.yaml or ~/.config/primer-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("primer-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "primer-engine"))
		}
	}

	viper.SetEnvPrefix("PRIMER_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// searchConfig assembles the discovery configuration from defaults,
// loaded secrets, and the config file.
func searchConfig() types.SearchConfig {
	cfg := types.SearchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   defaultSearchTimeout,
			UserAgent: defaultUserAgent,
		},
		SemanticScholarAPIKey: secret("semantic-scholar-api-key"),
		NCBIAPIKey:            secret("ncbi-api-key"),
	}
	if d := viper.GetDuration("search.semantic_scholar_delay"); d > 0 {
		cfg.SemanticScholarDelay = d
	}
	if d := viper.GetDuration("search.pubmed_delay"); d > 0 {
		cfg.PubMedDelay = d
	}
	if n := viper.GetInt("search.limit"); n > 0 {
		cfg.Limit = n
	}
	return cfg
}

// enrichConfig assembles the enrichment configuration.
func enrichConfig() types.EnrichConfig {
	return types.EnrichConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   defaultDownloadTimeout,
			UserAgent: defaultUserAgent,
		},
		ContactEmail: secret("unpaywall-email"),
		MaxChars:     viper.GetInt("enrich.max_chars"),
	}
}

// newScheduler wires the backends and the scheduler for one invocation.
func newScheduler(cfg types.SearchConfig) *search.Scheduler {
	client := &http.Client{Timeout: cfg.Timeout}
	return &search.Scheduler{
		Semantic: &search.SemanticScholarBackend{Client: client, APIKey: cfg.SemanticScholarAPIKey},
		PubMed:   &search.PubMedBackend{Client: client, APIKey: cfg.NCBIAPIKey},
		Config:   cfg,
		Log:      os.Stderr,
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
