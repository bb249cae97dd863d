// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/paper-qa/internal/httputil"
	"github.com/pdiddy/paper-qa/internal/logger"
	"github.com/pdiddy/paper-qa/pkg/types"
)

// arxivAPIBase is the arXiv query endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivSource fetches papers whose titles match a term from the arXiv API.
type ArxivSource struct {
	Client    *http.Client
	UserAgent string

	// PostFetchDelay is the pause after every fetch. Zero uses DefaultPostFetchDelay.
	PostFetchDelay time.Duration
}

// Name returns the source identifier.
func (s *ArxivSource) Name() string { return "arxiv" }

// Fetch issues one query for term and returns at most maxResults records in
// feed order. Transport and parse failures are logged and yield an empty
// corpus. Entries without a title or summary are skipped. Fetch always waits
// PostFetchDelay before returning.
func (s *ArxivSource) Fetch(ctx context.Context, term string, maxResults int) []types.PaperRecord {
	defer httputil.Pause(ctx, postFetchDelay(s.PostFetchDelay))

	records, err := s.fetch(ctx, term, maxResults)
	if err != nil {
		logger.Warn("fetching papers from arXiv: %v", err)
		return []types.PaperRecord{}
	}
	return records
}

func (s *ArxivSource) fetch(ctx context.Context, term string, maxResults int) ([]types.PaperRecord, error) {
	q := buildArxivQuery(term)
	if q == "" {
		return nil, fmt.Errorf("empty search term")
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	reqURL := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d", arxivAPIBase, q, maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	resp, err := clientOrDefault(s.Client).Do(req)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	records := make([]types.PaperRecord, 0, len(feed.Entries))
	for i, entry := range feed.Entries {
		r := types.PaperRecord{
			Title:   collapseSpace(entry.Title),
			Summary: collapseSpace(entry.Summary),
			ID:      extractArxivID(entry.ID),
		}
		if missing := missingFields(r); missing != "" {
			logger.Warn("skipping malformed arXiv entry %d (%s): missing %s", i, entry.ID, missing)
			continue
		}

		for _, a := range entry.Authors {
			r.Authors = append(r.Authors, strings.TrimSpace(a.Name))
		}
		if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
			r.Published = t
		}

		records = append(records, r)
	}
	return records, nil
}

// buildArxivQuery returns the search_query value restricting matches to
// titles. Multi-word terms are matched as a phrase.
func buildArxivQuery(term string) string {
	words := strings.Fields(term)
	switch len(words) {
	case 0:
		return ""
	case 1:
		return "ti:" + url.QueryEscape(words[0])
	}
	for i, w := range words {
		words[i] = url.QueryEscape(w)
	}
	return "ti:%22" + strings.Join(words, "+") + "%22"
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2307.09288v2" -> "2307.09288").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}
