// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-qa/internal/pipeline"
	"github.com/pdiddy/paper-qa/internal/rank"
)

var rankCmd = &cobra.Command{
	Use:   "rank <question>",
	Short: "Rank the fetched papers against one question",
	Long: `Rank fetches the corpus, embeds the question and every paper, and prints
the top-k papers by cosine similarity. No completion call is made.`,
	Args: cobra.ExactArgs(1),
	RunE: runRank,
}

func runRank(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)

	deps, err := pipeline.NewDeps(cfg, nil)
	if err != nil {
		return err
	}

	corpus := deps.Source.Fetch(cmd.Context(), cfg.Source.Term, cfg.Source.MaxResults)
	top, err := rank.Rank(cmd.Context(), deps.Embedder, args[0], corpus, cfg.Rank.TopK)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return rank.FormatJSON(top, os.Stdout)
	}
	rank.FormatTable(top, os.Stdout)
	return nil
}

func init() {
	addSourceFlags(rankCmd)
	rankCmd.Flags().Int("top-k", 0, "number of papers to print (default 5)")
	rankCmd.Flags().Bool("json", false, "output ranked papers as JSON")

	rootCmd.AddCommand(rankCmd)
}
