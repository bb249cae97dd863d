// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-qa/internal/logger"
	"github.com/pdiddy/paper-qa/pkg/types"
)

const testDelay = time.Millisecond

const sampleArxivFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2307.09288v2</id>
    <title>Llama 2: Open Foundation and
      Fine-Tuned Chat Models</title>
    <summary>  In this work, we develop and release Llama 2, a collection of
  pretrained and fine-tuned large language models.
</summary>
    <published>2023-07-18T14:31:57Z</published>
    <author><name>Hugo Touvron</name></author>
    <author><name>Louis Martin</name></author>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2302.13971v1</id>
    <title>LLaMA: Open and Efficient Foundation Language Models</title>
    <summary>We introduce LLaMA, a collection of foundation language models.</summary>
    <published>2023-02-27T17:11:15Z</published>
    <author><name>Hugo Touvron</name></author>
  </entry>
</feed>`

const malformedArxivFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2308.00001v1</id>
    <title>Entry Without Summary</title>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2308.00002v1</id>
    <summary>Entry without a title.</summary>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2308.00003v1</id>
    <title>Code Llama</title>
    <summary>Code Llama is a family of code models.</summary>
  </entry>
</feed>`

// captureLog redirects the package logger for the duration of the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger.Init(&buf, false)
	t.Cleanup(func() { logger.Init(os.Stderr, false) })
	return &buf
}

func withArxivServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(h)
	old := arxivAPIBase
	arxivAPIBase = ts.URL
	t.Cleanup(func() {
		arxivAPIBase = old
		ts.Close()
	})
	return ts
}

func TestArxivSourceFetch(t *testing.T) {
	var rawQuery string
	ts := withArxivServer(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/atom+xml")
		fmt.Fprint(w, sampleArxivFeedXML)
	})

	s := &ArxivSource{Client: ts.Client(), UserAgent: "test/0.1", PostFetchDelay: testDelay}
	records := s.Fetch(context.Background(), "llama", 70)

	require.Len(t, records, 2)
	assert.Contains(t, rawQuery, "search_query=ti:llama")
	assert.Contains(t, rawQuery, "max_results=70")

	r := records[0]
	assert.Equal(t, "Llama 2: Open Foundation and Fine-Tuned Chat Models", r.Title)
	assert.Equal(t, "In this work, we develop and release Llama 2, a collection of pretrained and fine-tuned large language models.", r.Summary)
	assert.Equal(t, "2307.09288", r.ID)
	assert.Equal(t, []string{"Hugo Touvron", "Louis Martin"}, r.Authors)
	assert.Equal(t, 2023, r.Published.Year())

	// Feed order is preserved.
	assert.Equal(t, "2302.13971", records[1].ID)
}

func TestArxivSourceFetchUserAgent(t *testing.T) {
	var ua string
	ts := withArxivServer(t, func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		fmt.Fprint(w, sampleArxivFeedXML)
	})

	s := &ArxivSource{Client: ts.Client(), UserAgent: "paper-qa/test", PostFetchDelay: testDelay}
	s.Fetch(context.Background(), "llama", 5)
	assert.Equal(t, "paper-qa/test", ua)
}

func TestArxivSourceFetchHTTPErrorDegradesToEmpty(t *testing.T) {
	logBuf := captureLog(t)
	codes := []int{http.StatusInternalServerError, http.StatusServiceUnavailable, http.StatusTooManyRequests, http.StatusNotFound}

	for _, code := range codes {
		t.Run(http.StatusText(code), func(t *testing.T) {
			var calls int32
			ts := withArxivServer(t, func(w http.ResponseWriter, _ *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(code)
			})

			s := &ArxivSource{Client: ts.Client(), PostFetchDelay: testDelay}
			records := s.Fetch(context.Background(), "llama", 70)

			require.NotNil(t, records)
			assert.Empty(t, records)
			// Single attempt: no retries.
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
			assert.Contains(t, logBuf.String(), fmt.Sprintf("HTTP %d", code))
		})
	}
}

func TestArxivSourceFetchNetworkErrorDegradesToEmpty(t *testing.T) {
	logBuf := captureLog(t)
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	ts.Close()

	old := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = old }()

	s := &ArxivSource{Client: &http.Client{Timeout: time.Second}, PostFetchDelay: testDelay}
	records := s.Fetch(context.Background(), "llama", 70)

	assert.Empty(t, records)
	assert.Contains(t, logBuf.String(), "fetching papers from arXiv")
}

func TestArxivSourceFetchMalformedXML(t *testing.T) {
	captureLog(t)
	ts := withArxivServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<feed><entry><title>unterminated")
	})

	s := &ArxivSource{Client: ts.Client(), PostFetchDelay: testDelay}
	assert.Empty(t, s.Fetch(context.Background(), "llama", 70))
}

func TestArxivSourceFetchSkipsMalformedEntries(t *testing.T) {
	logBuf := captureLog(t)
	ts := withArxivServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, malformedArxivFeedXML)
	})

	s := &ArxivSource{Client: ts.Client(), PostFetchDelay: testDelay}
	records := s.Fetch(context.Background(), "llama", 70)

	require.Len(t, records, 1)
	assert.Equal(t, "Code Llama", records[0].Title)
	assert.Contains(t, logBuf.String(), "missing summary")
	assert.Contains(t, logBuf.String(), "missing title")
}

func TestArxivSourceFetchEmptyFeed(t *testing.T) {
	ts := withArxivServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?><feed xmlns="http://www.w3.org/2005/Atom"></feed>`)
	})

	s := &ArxivSource{Client: ts.Client(), PostFetchDelay: testDelay}
	records := s.Fetch(context.Background(), "llama", 70)
	require.NotNil(t, records)
	assert.Empty(t, records)
}

func TestArxivSourceFetchEmptyTerm(t *testing.T) {
	logBuf := captureLog(t)
	var calls int32
	ts := withArxivServer(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	s := &ArxivSource{Client: ts.Client(), PostFetchDelay: testDelay}
	assert.Empty(t, s.Fetch(context.Background(), "   ", 70))
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
	assert.Contains(t, logBuf.String(), "empty search term")
}

func TestArxivSourceFetchDefaultMaxResults(t *testing.T) {
	var rawQuery string
	ts := withArxivServer(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		fmt.Fprint(w, sampleArxivFeedXML)
	})

	s := &ArxivSource{Client: ts.Client(), PostFetchDelay: testDelay}
	s.Fetch(context.Background(), "llama", 0)
	assert.Contains(t, rawQuery, fmt.Sprintf("max_results=%d", DefaultMaxResults))
}

func TestArxivSourceFetchWaitsAfterCall(t *testing.T) {
	captureLog(t)
	for _, fail := range []bool{false, true} {
		t.Run(fmt.Sprintf("fail=%v", fail), func(t *testing.T) {
			ts := withArxivServer(t, func(w http.ResponseWriter, _ *http.Request) {
				if fail {
					w.WriteHeader(http.StatusBadGateway)
					return
				}
				fmt.Fprint(w, sampleArxivFeedXML)
			})

			delay := 40 * time.Millisecond
			s := &ArxivSource{Client: ts.Client(), PostFetchDelay: delay}
			start := time.Now()
			s.Fetch(context.Background(), "llama", 70)
			assert.GreaterOrEqual(t, time.Since(start), delay)
		})
	}
}

func TestBuildArxivQuery(t *testing.T) {
	tests := []struct {
		term string
		want string
	}{
		{"llama", "ti:llama"},
		{"  llama  ", "ti:llama"},
		{"large language", "ti:%22large+language%22"},
		{"c++", "ti:c%2B%2B"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			assert.Equal(t, tt.want, buildArxivQuery(tt.term))
		})
	}
}

func TestExtractArxivID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"http://arxiv.org/abs/2307.09288v2", "2307.09288"},
		{"http://arxiv.org/abs/2302.13971v1", "2302.13971"},
		{"http://arxiv.org/abs/2301.12345", "2301.12345"},
		{"https://arxiv.org/abs/2307.09288v12", "2307.09288"},
		{"not a url", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := extractArxivID(tt.input); got != tt.want {
				t.Errorf("extractArxivID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewSource(t *testing.T) {
	s, err := NewSource(types.SourceConfig{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "arxiv", s.Name())

	s, err = NewSource(types.SourceConfig{Backend: types.SourceSemanticScholar, SemanticScholarAPIKey: "k"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "semantic_scholar", s.Name())
	assert.Equal(t, "k", s.(*SemanticScholarSource).APIKey)

	_, err = NewSource(types.SourceConfig{Backend: "pubmed"}, nil)
	assert.ErrorContains(t, err, "unknown source backend")
}

func TestTruncateMultibyte(t *testing.T) {
	got := truncate("Évaluation de Llama-2 en français", 12)
	assert.Equal(t, "Évaluatio...", got)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "Ünïcödé", truncate("Ünïcödé", 7))

	var buf bytes.Buffer
	FormatTable([]types.PaperRecord{{Title: strings.Repeat("ß", 70), Summary: "s", Authors: []string{"Jürgen Schmidhüber-Müller"}}}, &buf)
	assert.True(t, utf8.ValidString(buf.String()))
	assert.Contains(t, buf.String(), strings.Repeat("ß", 57)+"...")
}

func TestCollapseSpace(t *testing.T) {
	assert.Equal(t, "a b c", collapseSpace("  a\n   b\t c \n"))
	assert.Equal(t, "", collapseSpace(" \n\t"))
}

// --- formatting ---

func sampleRecords() []types.PaperRecord {
	return []types.PaperRecord{
		{
			ID:        "2307.09288",
			Title:     "Llama 2: Open Foundation and Fine-Tuned Chat Models",
			Summary:   "We develop and release Llama 2.",
			Authors:   []string{"Hugo Touvron", "Louis Martin"},
			Published: time.Date(2023, 7, 18, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:      "2308.12950",
			Title:   "Code Llama: Open Foundation Models for Code and a very long title that overflows",
			Summary: "Code Llama.",
		},
	}
}

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(sampleRecords(), &buf)
	out := buf.String()

	assert.Contains(t, out, "2307.09288")
	assert.Contains(t, out, "Hugo Touvron et al.")
	assert.Contains(t, out, "2023")
	assert.Contains(t, out, "...")
	assert.Contains(t, out, "2 papers")
}

func TestFormatTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(nil, &buf)
	assert.Equal(t, "No papers found.\n", buf.String())
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON(sampleRecords(), &buf))

	var got []types.PaperRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "2307.09288", got[0].ID)
}

func TestFormatYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatYAML(sampleRecords(), &buf))
	assert.True(t, strings.HasPrefix(buf.String(), "- title: "))

	var got []types.PaperRecord
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "Code Llama.", got[1].Summary)
}
