// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pdiddy/paper-qa/internal/httputil"
	"github.com/pdiddy/paper-qa/internal/logger"
	"github.com/pdiddy/paper-qa/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,abstract,authors,externalIds,publicationDate"

// semanticMaxLimit is the largest page the search endpoint serves.
const semanticMaxLimit = 100

// SemanticScholarSource fetches papers from the Semantic Scholar graph API.
// Papers without an abstract are common there; they are skipped like any
// other malformed record.
type SemanticScholarSource struct {
	Client    *http.Client
	UserAgent string
	APIKey    string

	// PostFetchDelay is the pause after every fetch. Zero uses DefaultPostFetchDelay.
	PostFetchDelay time.Duration
}

// Name returns the source identifier.
func (s *SemanticScholarSource) Name() string { return "semantic_scholar" }

// Fetch issues one search for term and returns at most maxResults records.
// Failures are logged and yield an empty corpus.
func (s *SemanticScholarSource) Fetch(ctx context.Context, term string, maxResults int) []types.PaperRecord {
	defer httputil.Pause(ctx, postFetchDelay(s.PostFetchDelay))

	records, err := s.fetch(ctx, term, maxResults)
	if err != nil {
		logger.Warn("fetching papers from Semantic Scholar: %v", err)
		return []types.PaperRecord{}
	}
	return records
}

func (s *SemanticScholarSource) fetch(ctx context.Context, term string, maxResults int) ([]types.PaperRecord, error) {
	term = collapseSpace(term)
	if term == "" {
		return nil, fmt.Errorf("empty search term")
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if maxResults > semanticMaxLimit {
		maxResults = semanticMaxLimit
	}

	params := url.Values{
		"query":  {term},
		"limit":  {strconv.Itoa(maxResults)},
		"fields": {semanticFields},
	}
	reqURL := semanticAPIBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}
	if s.APIKey != "" {
		req.Header.Set("x-api-key", s.APIKey)
	}

	resp, err := clientOrDefault(s.Client).Do(req)
	if err != nil {
		return nil, fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}

	records := make([]types.PaperRecord, 0, len(sr.Data))
	for i, paper := range sr.Data {
		r := types.PaperRecord{
			Title:   collapseSpace(paper.Title),
			Summary: collapseSpace(paper.Abstract),
			ID:      paper.PaperID,
		}
		if missing := missingFields(r); missing != "" {
			logger.Warn("skipping malformed Semantic Scholar entry %d (%s): missing %s", i, paper.PaperID, missing)
			continue
		}
		if paper.ExternalIDs.ArXiv != "" {
			r.ID = paper.ExternalIDs.ArXiv
		}
		for _, a := range paper.Authors {
			r.Authors = append(r.Authors, a.Name)
		}
		if t, parseErr := time.Parse("2006-01-02", paper.PublicationDate); parseErr == nil {
			r.Published = t
		}
		records = append(records, r)
	}
	return records, nil
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total int             `json:"total"`
	Data  []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID         string              `json:"paperId"`
	Title           string              `json:"title"`
	Abstract        string              `json:"abstract"`
	PublicationDate string              `json:"publicationDate"`
	Authors         []semanticAuthor    `json:"authors"`
	ExternalIDs     semanticExternalIDs `json:"externalIds"`
}

type semanticAuthor struct {
	Name string `json:"name"`
}

type semanticExternalIDs struct {
	ArXiv string `json:"ArXiv"`
}
