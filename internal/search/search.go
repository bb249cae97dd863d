// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search fetches the paper corpus from a literature API.
//
// Sources degrade to an empty corpus on transport failure instead of
// returning an error, so callers must handle zero papers.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-qa/pkg/types"
)

const (
	// DefaultTerm is the title search term used when none is configured.
	DefaultTerm = "llama"

	// DefaultMaxResults caps the corpus when no limit is configured.
	DefaultMaxResults = 70

	// DefaultPostFetchDelay keeps back-to-back fetches under the arXiv rate limit.
	DefaultPostFetchDelay = 3 * time.Second
)

// Source fetches papers from a single literature API. ArxivSource and
// SemanticScholarSource implement it.
type Source interface {
	Name() string
	Fetch(ctx context.Context, term string, maxResults int) []types.PaperRecord
}

// NewSource returns the Source selected by cfg.Backend (arxiv when empty).
func NewSource(cfg types.SourceConfig, client *http.Client) (Source, error) {
	if client == nil && cfg.Timeout > 0 {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	switch cfg.Backend {
	case types.SourceArxiv, "":
		return &ArxivSource{
			Client:         client,
			UserAgent:      cfg.UserAgent,
			PostFetchDelay: cfg.PostFetchDelay,
		}, nil
	case types.SourceSemanticScholar:
		return &SemanticScholarSource{
			Client:         client,
			UserAgent:      cfg.UserAgent,
			APIKey:         cfg.SemanticScholarAPIKey,
			PostFetchDelay: cfg.PostFetchDelay,
		}, nil
	default:
		return nil, fmt.Errorf("unknown source backend %q: use arxiv or semantic_scholar", cfg.Backend)
	}
}

func clientOrDefault(c *http.Client) *http.Client {
	if c == nil {
		return http.DefaultClient
	}
	return c
}

func postFetchDelay(d time.Duration) time.Duration {
	if d == 0 {
		return DefaultPostFetchDelay
	}
	return d
}

// collapseSpace trims s and replaces internal runs of whitespace (the feed's
// line wrapping) with single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// missingFields names the required fields that are blank in r, or "" when
// the record is complete.
func missingFields(r types.PaperRecord) string {
	var missing []string
	if r.Title == "" {
		missing = append(missing, "title")
	}
	if r.Summary == "" {
		missing = append(missing, "summary")
	}
	return strings.Join(missing, " and ")
}

// FormatTable writes the corpus as a human-readable table to w.
func FormatTable(records []types.PaperRecord, w io.Writer) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No papers found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-12s  %-60s  %-20s  %s\n", "#", "ID", "Title", "Authors", "Year")
	fmt.Fprintln(w, strings.Repeat("-", 106))

	for i, r := range records {
		year := ""
		if !r.Published.IsZero() {
			year = fmt.Sprintf("%d", r.Published.Year())
		}
		fmt.Fprintf(w, "%-4d  %-12s  %-60s  %-20s  %s\n",
			i+1, truncate(r.ID, 12), truncate(r.Title, 60), formatAuthors(r.Authors), year)
	}

	fmt.Fprintf(w, "\n%d papers\n", len(records))
}

// FormatJSON writes the corpus as indented JSON to w.
func FormatJSON(records []types.PaperRecord, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// FormatYAML writes the corpus as YAML to w.
func FormatYAML(records []types.PaperRecord, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

// truncate shortens s to max runes.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
