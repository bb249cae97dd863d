// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-qa/internal/history"
	"github.com/pdiddy/paper-qa/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse answers recorded by ask --history",
	Long: `History reads the SQLite database written by ask when history is
enabled. Use list for the latest answers, search for a full-text match over
questions and answers, or runs for the batches that produced them.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, limit, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		return writeEntries(cmd, entries)
	},
}

var historySearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over recorded questions and answers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, limit, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.Search(cmd.Context(), args[0], limit)
		if err != nil {
			return err
		}
		return writeEntries(cmd, entries)
	},
}

var historyRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List the most recent ask runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, limit, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.Runs(cmd.Context(), limit)
		if err != nil {
			return err
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		yamlOutput, _ := cmd.Flags().GetBool("yaml")
		switch {
		case jsonOutput:
			return history.FormatJSON(runs, os.Stdout)
		case yamlOutput:
			return history.FormatYAML(runs, os.Stdout)
		default:
			history.FormatRuns(runs, os.Stdout)
			return nil
		}
	},
}

func openHistory(cmd *cobra.Command) (*history.Store, int, error) {
	cfg := loadConfig(cmd)
	limit, _ := cmd.Flags().GetInt("limit")
	store, err := history.Open(types.HistoryConfig{Enabled: true, Dir: cfg.History.Dir})
	return store, limit, err
}

func writeEntries(cmd *cobra.Command, entries []history.Entry) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	yamlOutput, _ := cmd.Flags().GetBool("yaml")
	switch {
	case jsonOutput:
		return history.FormatJSON(entries, os.Stdout)
	case yamlOutput:
		return history.FormatYAML(entries, os.Stdout)
	default:
		history.FormatTable(entries, os.Stdout)
		return nil
	}
}

func init() {
	for _, c := range []*cobra.Command{historyListCmd, historySearchCmd, historyRunsCmd} {
		c.Flags().Int("limit", 20, "maximum number of answers to show")
		c.Flags().String("history-dir", "", "directory holding history.db (default .paper-qa)")
		c.Flags().Bool("json", false, "output as JSON")
		c.Flags().Bool("yaml", false, "output as YAML")
		c.MarkFlagsMutuallyExclusive("json", "yaml")
		historyCmd.AddCommand(c)
	}
	rootCmd.AddCommand(historyCmd)
}
