// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

var expandCmd = &cobra.Command{
	Use:   "expand [topic]",
	Short: "Show the search queries a topic expands into",
	Long: `Expand runs LLM query expansion for a topic and prints the resulting
queries, field label, and keywords without searching. Useful for checking
what the discover and primer commands would run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("provide a research topic")
		}
		topic := strings.Join(args, " ")

		qs := expandTopic(cmd.Context(), topic, false)
		data, err := yaml.Marshal(qs)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(expandCmd)
}
