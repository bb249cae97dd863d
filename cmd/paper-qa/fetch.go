// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-qa/internal/pipeline"
	"github.com/pdiddy/paper-qa/internal/search"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the paper corpus and print it",
	Long: `Fetch runs the paper source on its own and prints the corpus that ask
would rank. No API key is needed. Use --json or --yaml for machine-readable
output.`,
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)

	src, err := search.NewSource(cfg.Source, nil)
	if err != nil {
		return &pipeline.ConfigError{Err: err}
	}

	records := src.Fetch(cmd.Context(), cfg.Source.Term, cfg.Source.MaxResults)
	if err := cmd.Context().Err(); err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	yamlOutput, _ := cmd.Flags().GetBool("yaml")
	switch {
	case jsonOutput:
		return search.FormatJSON(records, os.Stdout)
	case yamlOutput:
		return search.FormatYAML(records, os.Stdout)
	default:
		search.FormatTable(records, os.Stdout)
		return nil
	}
}

func init() {
	addSourceFlags(fetchCmd)
	fetchCmd.Flags().Bool("json", false, "output papers as JSON")
	fetchCmd.Flags().Bool("yaml", false, "output papers as YAML")
	fetchCmd.MarkFlagsMutuallyExclusive("json", "yaml")

	rootCmd.AddCommand(fetchCmd)
}
