// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/meshintelligence/primer-engine/internal/library"
	"github.com/meshintelligence/primer-engine/internal/search"
	"github.com/meshintelligence/primer-engine/pkg/types"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Browse saved discovery runs",
	Long: `Library lists discovery runs saved with 'discover --save' and lets you
re-print or search their records without hitting the backends again.`,
}

var libraryRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List saved discovery runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openLibrary(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.Runs()
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No saved runs.")
			return nil
		}
		for _, run := range runs {
			fmt.Printf("%-4d  %-50s  %-15s  %3d records  %s\n",
				run.ID, truncateTopic(run.Topic), run.Field, run.Records, run.Saved.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var libraryShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the records of a saved run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run id %q", args[0])
		}

		store, err := openLibrary(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.Records(runID)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return search.FormatJSON(records, os.Stdout)
		}
		search.FormatTable(records, os.Stdout)
		return nil
	},
}

var libraryFindCmd = &cobra.Command{
	Use:   "find <term>",
	Short: "Search saved records by title or abstract",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openLibrary(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.Find(args[0])
		if err != nil {
			return err
		}
		search.FormatTable(records, os.Stdout)
		return nil
	},
}

func init() {
	libraryCmd.PersistentFlags().String("library-dir", "library", "library directory")
	libraryShowCmd.Flags().Bool("json", false, "output records as JSON")

	libraryCmd.AddCommand(libraryRunsCmd)
	libraryCmd.AddCommand(libraryShowCmd)
	libraryCmd.AddCommand(libraryFindCmd)
	rootCmd.AddCommand(libraryCmd)
}

func openLibrary(cmd *cobra.Command) (*library.Store, error) {
	dir, _ := cmd.Flags().GetString("library-dir")
	return library.Open(types.LibraryConfig{Dir: dir})
}

func truncateTopic(s string) string {
	if len(s) <= 50 {
		return s
	}
	return s[:47] + "..."
}
