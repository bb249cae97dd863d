// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for paper-qa: paper records,
// embeddings, scored results, and component configuration.
package types

import (
	"fmt"
	"time"
)

// PaperRecord is one paper returned by a literature source. Records are
// values: the corpus is built once per run and never mutated afterwards.
type PaperRecord struct {
	// Title is the paper title with feed line-wrapping removed.
	Title string `json:"title" yaml:"title"`

	// Summary is the paper abstract.
	Summary string `json:"summary" yaml:"summary"`

	// ID is the source identifier (e.g. "2307.09288" for arXiv). Optional.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// Authors lists the paper authors in source order. Optional.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Published is the preprint or publication date. Optional.
	Published time.Time `json:"published,omitempty" yaml:"published,omitempty"`
}

// Text returns the representation that is embedded for ranking and sent to
// the completion model as context.
func (p PaperRecord) Text() string {
	return fmt.Sprintf("Title: %s\nSummary: %s\n", p.Title, p.Summary)
}

// Embedding is a vector produced by an embedding model. Its dimensionality
// is fixed by the model.
type Embedding []float32

// ScoredPaper pairs a record with its cosine similarity to a query, in [-1, 1].
type ScoredPaper struct {
	Record PaperRecord `json:"record" yaml:"record"`
	Score  float64     `json:"score" yaml:"score"`
}
