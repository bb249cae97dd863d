// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank orders papers by semantic relevance to a question: each text
// is embedded, scored against the query by cosine similarity, and the top k
// are returned by descending score. The search is exact and brute force.
package rank

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/hupe1980/vecgo/distance"

	"github.com/pdiddy/paper-qa/pkg/types"
)

// Embedder turns text into a vector. Implementations call a remote
// embedding model; tests supply fixed vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) (types.Embedding, error)
}

// EmbeddingError reports a failure to embed one text.
type EmbeddingError struct {
	Text string
	Err  error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding %q: %v", preview(e.Text), e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// Similarity returns the cosine similarity of a and b in [-1, 1]. Vectors of
// different length, empty vectors, and zero vectors score 0.
func Similarity(a, b types.Embedding) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	dot := float64(distance.Dot(a, b))
	normA := math.Sqrt(float64(distance.Dot(a, a)))
	normB := math.Sqrt(float64(distance.Dot(b, b)))
	if normA == 0 || normB == 0 {
		return 0
	}
	s := dot / (normA * normB)
	// Clamp float rounding so identical vectors never exceed 1.
	return math.Max(-1, math.Min(1, s))
}

// Rank embeds query and every record in corpus, then returns the k records
// most similar to the query. Texts are lowercased before embedding. It makes
// len(corpus)+1 embedding calls and fails on the first embedding error.
// An empty corpus yields an empty result without embedding the query.
func Rank(ctx context.Context, emb Embedder, query string, corpus []types.PaperRecord, k int) ([]types.ScoredPaper, error) {
	if len(corpus) == 0 || k <= 0 {
		return []types.ScoredPaper{}, nil
	}

	qvec, err := embed(ctx, emb, query)
	if err != nil {
		return nil, err
	}

	scored := make([]types.ScoredPaper, 0, len(corpus))
	for _, r := range corpus {
		pvec, err := embed(ctx, emb, r.Text())
		if err != nil {
			return nil, err
		}
		scored = append(scored, types.ScoredPaper{Record: r, Score: Similarity(qvec, pvec)})
	}
	return TopK(scored, k), nil
}

// TopK sorts scored by descending score, keeping input order among equal
// scores, and returns the first min(k, len(scored)) entries. scored is
// reordered in place.
func TopK(scored []types.ScoredPaper, k int) []types.ScoredPaper {
	if k <= 0 {
		return []types.ScoredPaper{}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

func embed(ctx context.Context, emb Embedder, text string) (types.Embedding, error) {
	vec, err := emb.Embed(ctx, strings.ToLower(text))
	if err != nil {
		return nil, &EmbeddingError{Text: text, Err: err}
	}
	return vec, nil
}

func preview(s string) string {
	return clip(strings.Join(strings.Fields(s), " "), 40)
}

// clip shortens s to max runes, marking the cut with "...".
func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
