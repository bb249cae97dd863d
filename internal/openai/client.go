// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package openai is a minimal client for the OpenAI embeddings and legacy
// completions endpoints. A single Client serves both the ranking and the
// answering side of a run. Calls are made once; failures are returned to
// the caller without retrying.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/paper-qa/internal/httputil"
	"github.com/pdiddy/paper-qa/pkg/types"
)

const (
	DefaultBaseURL         = "https://api.openai.com/v1"
	DefaultEmbeddingModel  = "text-embedding-ada-002"
	DefaultCompletionModel = "gpt-3.5-turbo-instruct"
	defaultTimeout         = 60 * time.Second
)

// ErrMissingAPIKey is returned by NewClient when no API key is configured.
var ErrMissingAPIKey = errors.New("OpenAI API key not set")

// APIError is a non-200 response from the API.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("OpenAI API returned %d (%s): %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("OpenAI API returned %d: %s", e.StatusCode, e.Message)
}

// Client calls the embeddings and completions endpoints with one API key.
type Client struct {
	apiKey          string
	baseURL         string
	embeddingModel  string
	completionModel string
	userAgent       string
	http            *http.Client
	throttle        *httputil.Throttle
}

// NewClient validates cfg and returns a client. It fails with
// ErrMissingAPIKey before any request is made when cfg.APIKey is blank.
// A nil httpClient gets a client with cfg.Timeout (default 60s).
func NewClient(cfg types.AIConfig, httpClient *http.Client) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, ErrMissingAPIKey
	}

	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	c := &Client{
		apiKey:          key,
		baseURL:         strings.TrimRight(orDefault(cfg.BaseURL, DefaultBaseURL), "/"),
		embeddingModel:  orDefault(cfg.EmbeddingModel, DefaultEmbeddingModel),
		completionModel: orDefault(cfg.CompletionModel, DefaultCompletionModel),
		userAgent:       cfg.UserAgent,
		http:            httpClient,
		throttle:        httputil.NewThrottle(cfg.RequestsPerSecond),
	}
	return c, nil
}

type embeddingRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// Embed returns the embedding vector for text.
func (c *Client) Embed(ctx context.Context, text string) (types.Embedding, error) {
	var resp embeddingResponse
	if err := c.post(ctx, "/embeddings", embeddingRequest{Input: text, Model: c.embeddingModel}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("OpenAI API returned no embedding")
	}
	return types.Embedding(resp.Data[0].Embedding), nil
}

type completionRequest struct {
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Text         string `json:"text"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Complete returns the model's continuation of prompt, at most maxTokens
// long. A non-positive maxTokens leaves the length to the model's default.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if maxTokens < 0 {
		maxTokens = 0
	}

	var resp completionResponse
	req := completionRequest{Model: c.completionModel, Prompt: prompt, MaxTokens: maxTokens}
	if err := c.post(ctx, "/completions", req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI API returned no choices")
	}
	return resp.Choices[0].Text, nil
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.throttle.Do(ctx, c.http, req)
	if err != nil {
		return fmt.Errorf("calling OpenAI API %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		raw := httputil.ErrorBody(resp)
		var er errorResponse
		if json.Unmarshal([]byte(raw), &er) == nil && er.Error.Message != "" {
			apiErr.Message = er.Error.Message
			apiErr.Type = er.Error.Type
		} else {
			apiErr.Message = raw
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding OpenAI response: %w", err)
	}
	return nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
