// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-qa CLI.
package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-qa/internal/logger"
	"github.com/pdiddy/paper-qa/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets secrets.Set

// rootCmd is the base command for the paper-qa CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-qa",
	Short: "Answer questions from arXiv abstracts with embeddings and an LLM",
	Long: `paper-qa fetches paper titles and abstracts from a literature API, ranks
them against each question by embedding cosine similarity, and asks a
completion model to answer from the five most relevant abstracts.

The ask command runs the full batch. fetch and rank expose the first two
steps on their own; history browses previously recorded answers.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		debug := viper.GetBool("debug")
		logger.Init(os.Stderr, debug)

		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("loading .env: %v", err)
		}

		s, err := secrets.Load(secrets.DefaultDir)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := s.Names()
			sort.Strings(keys)
			logger.Debug("loaded secrets: %v", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./paper-qa.yaml or ~/.config/paper-qa/paper-qa.yaml)")
	pf.String("api-key", "", "OpenAI API key (overrides config, environment and .secrets/)")
	pf.Bool("debug", false, "enable debug logging")
	pf.Bool("no-color", false, "disable colored output")

	viper.BindPFlag("openai.api_key", pf.Lookup("api-key"))
	viper.BindPFlag("debug", pf.Lookup("debug"))
	viper.BindPFlag("no_color", pf.Lookup("no-color"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-qa")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-qa"))
		}
	}

	viper.SetEnvPrefix("PAPER_QA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	viper.BindEnv("openai.api_key", "PAPER_QA_OPENAI_API_KEY", "OPENAI_API_KEY")

	setDefaults()

	if err := viper.ReadInConfig(); err == nil {
		logger.Info("using config file: %s", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
