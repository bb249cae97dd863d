// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-qa/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SourceBackend identifies the literature API a corpus is fetched from.
type SourceBackend string

const (
	SourceArxiv           SourceBackend = "arxiv"
	SourceSemanticScholar SourceBackend = "semantic_scholar"
)

// SourceConfig holds settings for the paper source.
type SourceConfig struct {
	HTTPConfig `yaml:",inline"`

	// Backend selects the literature API (default arxiv).
	Backend SourceBackend `json:"backend" yaml:"backend"`

	// Term is the search term matched against paper titles (default "llama").
	Term string `json:"term" yaml:"term"`

	// MaxResults caps the corpus size (default 70).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// PostFetchDelay is the pause after each fetch that keeps callers under
	// the provider's rate limit (default 3s).
	PostFetchDelay time.Duration `json:"post_fetch_delay" yaml:"post_fetch_delay"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`
}

// AIConfig holds settings for the embedding and completion service.
type AIConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is the authentication key. It is required.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL is the API root (default "https://api.openai.com/v1").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// EmbeddingModel is the embedding model identifier (default "text-embedding-ada-002").
	EmbeddingModel string `json:"embedding_model" yaml:"embedding_model"`

	// CompletionModel is the completion model identifier (default "gpt-3.5-turbo-instruct").
	CompletionModel string `json:"completion_model" yaml:"completion_model"`

	// MaxTokens bounds the length of a generated answer. Zero uses
	// answer.DefaultMaxTokens.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// RequestsPerSecond throttles calls to the API. Zero disables throttling.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

// RankConfig holds settings for relevance ranking.
type RankConfig struct {
	// TopK is the number of papers used as context per question (default 5).
	TopK int `json:"top_k" yaml:"top_k"`
}

// HistoryConfig holds settings for the answer history database.
type HistoryConfig struct {
	// Enabled turns on recording of answers.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Dir is the directory holding history.db (default ".paper-qa").
	Dir string `json:"dir" yaml:"dir"`
}

// Config groups all component configurations for a run.
type Config struct {
	Source  SourceConfig  `json:"source" yaml:"source"`
	AI      AIConfig      `json:"ai" yaml:"ai"`
	Rank    RankConfig    `json:"rank" yaml:"rank"`
	History HistoryConfig `json:"history" yaml:"history"`

	// QuestionsFile is an optional YAML file overriding the default questions.
	QuestionsFile string `json:"questions_file,omitempty" yaml:"questions_file,omitempty"`
}
