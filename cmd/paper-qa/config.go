// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-qa/internal/answer"
	"github.com/pdiddy/paper-qa/internal/history"
	"github.com/pdiddy/paper-qa/internal/openai"
	"github.com/pdiddy/paper-qa/internal/pipeline"
	"github.com/pdiddy/paper-qa/internal/search"
	"github.com/pdiddy/paper-qa/internal/secrets"
	"github.com/pdiddy/paper-qa/pkg/types"
)

func setDefaults() {
	viper.SetDefault("source.backend", string(types.SourceArxiv))
	viper.SetDefault("source.term", search.DefaultTerm)
	viper.SetDefault("source.max_results", search.DefaultMaxResults)
	viper.SetDefault("source.post_fetch_delay", search.DefaultPostFetchDelay)
	viper.SetDefault("source.timeout", "30s")
	viper.SetDefault("source.user_agent", "paper-qa/"+version)

	viper.SetDefault("openai.base_url", openai.DefaultBaseURL)
	viper.SetDefault("openai.embedding_model", openai.DefaultEmbeddingModel)
	viper.SetDefault("openai.completion_model", openai.DefaultCompletionModel)
	viper.SetDefault("openai.max_tokens", answer.DefaultMaxTokens)
	viper.SetDefault("openai.requests_per_second", 0)
	viper.SetDefault("openai.timeout", "60s")

	viper.SetDefault("rank.top_k", pipeline.DefaultTopK)

	viper.SetDefault("history.enabled", false)
	viper.SetDefault("history.dir", history.DefaultDir)
}

// loadConfig assembles the run configuration from viper and the flags the
// user set on cmd. Flags that were not changed leave the configured value.
func loadConfig(cmd *cobra.Command) types.Config {
	cfg := types.Config{
		Source: types.SourceConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("source.timeout"),
				UserAgent: viper.GetString("source.user_agent"),
			},
			Backend:               types.SourceBackend(viper.GetString("source.backend")),
			Term:                  viper.GetString("source.term"),
			MaxResults:            viper.GetInt("source.max_results"),
			PostFetchDelay:        viper.GetDuration("source.post_fetch_delay"),
			SemanticScholarAPIKey: loadedSecrets.Lookup(secrets.SemanticScholarAPIKey, viper.GetString("source.semantic_scholar_api_key")),
		},
		AI: types.AIConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("openai.timeout"),
				UserAgent: viper.GetString("source.user_agent"),
			},
			APIKey:            loadedSecrets.Lookup(secrets.OpenAIAPIKey, viper.GetString("openai.api_key")),
			BaseURL:           viper.GetString("openai.base_url"),
			EmbeddingModel:    viper.GetString("openai.embedding_model"),
			CompletionModel:   viper.GetString("openai.completion_model"),
			MaxTokens:         viper.GetInt("openai.max_tokens"),
			RequestsPerSecond: viper.GetFloat64("openai.requests_per_second"),
		},
		Rank: types.RankConfig{
			TopK: viper.GetInt("rank.top_k"),
		},
		History: types.HistoryConfig{
			Enabled: viper.GetBool("history.enabled"),
			Dir:     viper.GetString("history.dir"),
		},
		QuestionsFile: viper.GetString("questions_file"),
	}

	flags := cmd.Flags()
	if flags.Lookup("backend") != nil && flags.Changed("backend") {
		v, _ := flags.GetString("backend")
		cfg.Source.Backend = types.SourceBackend(v)
	}
	if flags.Lookup("term") != nil && flags.Changed("term") {
		cfg.Source.Term, _ = flags.GetString("term")
	}
	if flags.Lookup("max-results") != nil && flags.Changed("max-results") {
		cfg.Source.MaxResults, _ = flags.GetInt("max-results")
	}
	if flags.Lookup("top-k") != nil && flags.Changed("top-k") {
		cfg.Rank.TopK, _ = flags.GetInt("top-k")
	}
	if flags.Lookup("max-tokens") != nil && flags.Changed("max-tokens") {
		cfg.AI.MaxTokens, _ = flags.GetInt("max-tokens")
	}
	if flags.Lookup("questions") != nil && flags.Changed("questions") {
		cfg.QuestionsFile, _ = flags.GetString("questions")
	}
	if flags.Lookup("history") != nil && flags.Changed("history") {
		cfg.History.Enabled, _ = flags.GetBool("history")
	}
	if flags.Lookup("history-dir") != nil && flags.Changed("history-dir") {
		cfg.History.Dir, _ = flags.GetString("history-dir")
	}
	return cfg
}

// addSourceFlags registers the flags shared by commands that fetch a corpus.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("backend", "", "literature API: arxiv or semantic_scholar (default arxiv)")
	cmd.Flags().String("term", "", "search term matched against paper titles (default \"llama\")")
	cmd.Flags().Int("max-results", 0, "maximum number of papers to fetch (default 70)")
}

func colorEnabled() bool {
	return !viper.GetBool("no_color")
}
