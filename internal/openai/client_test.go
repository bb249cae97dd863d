// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-qa/pkg/types"
)

func newTestClient(t *testing.T, h http.HandlerFunc, cfg types.AIConfig) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	if cfg.APIKey == "" {
		cfg.APIKey = "sk-test"
	}
	cfg.BaseURL = ts.URL + "/v1"
	c, err := NewClient(cfg, ts.Client())
	require.NoError(t, err)
	return c
}

func TestNewClientMissingAPIKey(t *testing.T) {
	for _, key := range []string{"", "   ", "\n"} {
		c, err := NewClient(types.AIConfig{APIKey: key}, nil)
		assert.Nil(t, c)
		assert.ErrorIs(t, err, ErrMissingAPIKey)
	}
}

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient(types.AIConfig{APIKey: "sk-test"}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, DefaultEmbeddingModel, c.embeddingModel)
	assert.Equal(t, DefaultCompletionModel, c.completionModel)
	assert.Nil(t, c.throttle)
	assert.NotNil(t, c.http)
}

func TestEmbed(t *testing.T) {
	var got embeddingRequest
	var auth, path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.1,-0.2,0.3]}],"model":"text-embedding-ada-002"}`)
	}, types.AIConfig{})

	vec, err := c.Embed(context.Background(), "llama 2 fine-tuning")
	require.NoError(t, err)

	assert.Equal(t, types.Embedding{0.1, -0.2, 0.3}, vec)
	assert.Equal(t, "/v1/embeddings", path)
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "llama 2 fine-tuning", got.Input)
	assert.Equal(t, DefaultEmbeddingModel, got.Model)
}

func TestEmbedEmptyData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"data":[]}`)
	}, types.AIConfig{})

	_, err := c.Embed(context.Background(), "x")
	assert.ErrorContains(t, err, "no embedding")
}

func TestComplete(t *testing.T) {
	var got completionRequest
	var path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"choices":[{"text":"\n\nAnswer: Chatbots.","index":0,"finish_reason":"stop"}]}`)
	}, types.AIConfig{CompletionModel: "davinci-002"})

	text, err := c.Complete(context.Background(), "Context: x\nQuestion: y", 120)
	require.NoError(t, err)

	assert.Equal(t, "\n\nAnswer: Chatbots.", text)
	assert.Equal(t, "/v1/completions", path)
	assert.Equal(t, "davinci-002", got.Model)
	assert.Equal(t, "Context: x\nQuestion: y", got.Prompt)
	assert.Equal(t, 120, got.MaxTokens)
}

func TestCompleteOmitsNonPositiveMaxTokens(t *testing.T) {
	var raw map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		fmt.Fprint(w, `{"choices":[{"text":"ok"}]}`)
	}, types.AIConfig{})

	_, err := c.Complete(context.Background(), "p", 0)
	require.NoError(t, err)
	assert.NotContains(t, raw, "max_tokens")
}

func TestCompleteExplicitMaxTokens(t *testing.T) {
	var got completionRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"choices":[{"text":"ok"}]}`)
	}, types.AIConfig{})

	_, err := c.Complete(context.Background(), "p", 42)
	require.NoError(t, err)
	assert.Equal(t, 42, got.MaxTokens)
}

func TestCompleteNoChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}, types.AIConfig{})

	_, err := c.Complete(context.Background(), "p", 10)
	assert.ErrorContains(t, err, "no choices")
}

func TestAPIErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantType string
		wantMsg  string
	}{
		{"json error body", http.StatusUnauthorized, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`, "invalid_request_error", "Incorrect API key provided"},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"Rate limit reached","type":"requests"}}`, "requests", "Rate limit reached"},
		{"plain text body", http.StatusBadGateway, "upstream unavailable", "", "upstream unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}, types.AIConfig{})

			_, err := c.Embed(context.Background(), "x")

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantType, apiErr.Type)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "no retries")
		})
	}
}

func TestMalformedResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"data": [`)
	}, types.AIConfig{})

	_, err := c.Embed(context.Background(), "x")
	assert.ErrorContains(t, err, "decoding OpenAI response")
}

func TestContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"choices":[{"text":"late"}]}`)
	}, types.AIConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Complete(ctx, "p", 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUserAgentHeader(t *testing.T) {
	var ua string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		fmt.Fprint(w, `{"choices":[{"text":"ok"}]}`)
	}, types.AIConfig{HTTPConfig: types.HTTPConfig{UserAgent: "paper-qa/test"}})

	_, err := c.Complete(context.Background(), "p", 10)
	require.NoError(t, err)
	assert.Equal(t, "paper-qa/test", ua)
}
