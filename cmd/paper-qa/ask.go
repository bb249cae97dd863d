// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-qa/internal/history"
	"github.com/pdiddy/paper-qa/internal/logger"
	"github.com/pdiddy/paper-qa/internal/pipeline"
	"github.com/pdiddy/paper-qa/internal/questions"
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Fetch papers and answer the question set",
	Long: `Ask fetches the corpus once, embeds every paper once, and for each
question ranks the papers by cosine similarity and asks the completion
model to answer from the top-k abstracts. Each question and answer is
printed as soon as it is available.

Questions come from --questions (or questions_file in the config); the
four built-in Llama-2 questions are used otherwise. A failed question is
logged and the run moves on to the next one unless --fail-fast is set.`,
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)

	qs, err := questions.Resolve(cfg.QuestionsFile)
	if err != nil {
		return &pipeline.ConfigError{Err: err}
	}

	deps, err := pipeline.NewDeps(cfg, nil)
	if err != nil {
		return err
	}

	if cfg.History.Enabled {
		store, err := history.Open(cfg.History)
		if err != nil {
			return err
		}
		defer store.Close()
		deps.History = store
	}

	failFast, _ := cmd.Flags().GetBool("fail-fast")
	showSources, _ := cmd.Flags().GetBool("show-sources")

	summary, err := pipeline.Run(cmd.Context(), deps, pipeline.Options{
		Term:        cfg.Source.Term,
		MaxResults:  cfg.Source.MaxResults,
		TopK:        cfg.Rank.TopK,
		MaxTokens:   cfg.AI.MaxTokens,
		Questions:   qs,
		FailFast:    failFast,
		ShowSources: showSources,
		Color:       colorEnabled(),
		Out:         os.Stdout,
	})
	if err != nil {
		return err
	}

	logger.Debug("summary: %+v", summary)
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d question(s) failed", summary.Failed, summary.Questions)
	}
	return nil
}

func init() {
	addSourceFlags(askCmd)
	askCmd.Flags().String("questions", "", "YAML file with a questions list")
	askCmd.Flags().Int("top-k", 0, "papers used as context per question (default 5)")
	askCmd.Flags().Int("max-tokens", 0, "maximum answer length in tokens (default 300)")
	askCmd.Flags().Bool("fail-fast", false, "stop at the first question that fails")
	askCmd.Flags().Bool("show-sources", false, "list the context papers and scores under each answer")
	askCmd.Flags().Bool("history", false, "record answers in the history database")
	askCmd.Flags().String("history-dir", "", "directory holding history.db (default .paper-qa)")

	rootCmd.AddCommand(askCmd)
}
