// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs a batch: fetch the corpus once, embed it once, then
// rank, answer and print each question in order. Answers already printed
// stay printed when a later question fails.
package pipeline

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/pdiddy/paper-qa/internal/answer"
	"github.com/pdiddy/paper-qa/internal/history"
	"github.com/pdiddy/paper-qa/internal/logger"
	"github.com/pdiddy/paper-qa/internal/openai"
	"github.com/pdiddy/paper-qa/internal/rank"
	"github.com/pdiddy/paper-qa/internal/search"
	"github.com/pdiddy/paper-qa/pkg/types"
)

// DefaultTopK is the number of papers used as context per question.
const DefaultTopK = 5

// Recorder persists answered questions. *history.Store implements it.
type Recorder interface {
	StartRun(ctx context.Context, run history.Run) (int64, error)
	Record(ctx context.Context, e history.Entry) (int64, error)
}

// Deps are the collaborators of a run.
type Deps struct {
	Source    search.Source
	Embedder  rank.Embedder
	Completer answer.Completer

	// History is optional.
	History Recorder
}

// Options control a single run.
type Options struct {
	Term       string
	MaxResults int
	TopK       int
	MaxTokens  int
	Questions  []string

	// FailFast aborts the run on the first failed question instead of
	// moving on to the next one.
	FailFast bool

	// ShowSources lists the context papers and their scores under each
	// answer.
	ShowSources bool

	Color bool
	Out   io.Writer
}

// Summary reports what a run did.
type Summary struct {
	Papers    int `json:"papers" yaml:"papers"`
	Indexed   int `json:"indexed" yaml:"indexed"`
	Questions int `json:"questions" yaml:"questions"`
	Answered  int `json:"answered" yaml:"answered"`
	Failed    int `json:"failed" yaml:"failed"`
}

// NewDeps builds the arXiv or Semantic Scholar source and one OpenAI client
// serving both embeddings and completions. A missing API key is reported as
// a ConfigError and no client is created.
func NewDeps(cfg types.Config, httpClient *http.Client) (Deps, error) {
	client, err := openai.NewClient(cfg.AI, httpClient)
	if err != nil {
		if errors.Is(err, openai.ErrMissingAPIKey) {
			return Deps{}, &ConfigError{Err: err}
		}
		return Deps{}, err
	}

	src, err := search.NewSource(cfg.Source, httpClient)
	if err != nil {
		return Deps{}, &ConfigError{Err: err}
	}

	return Deps{Source: src, Embedder: client, Completer: client}, nil
}

// Run executes the batch. It returns an error when the run could not start,
// when ctx is cancelled, or with FailFast set when a question fails. Without
// FailFast, failed questions are logged and counted in Summary.Failed.
func Run(ctx context.Context, deps Deps, opts Options) (Summary, error) {
	var sum Summary
	if len(opts.Questions) == 0 {
		return sum, &ConfigError{Err: ErrNoQuestions}
	}
	if deps.Source == nil || deps.Embedder == nil || deps.Completer == nil {
		return sum, &ConfigError{Err: errors.New("source, embedder and completer are required")}
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	topK := opts.TopK
	if topK == 0 {
		topK = DefaultTopK
	}
	p := newPrinter(out, opts.Color)

	logger.Info("fetching papers from %s", deps.Source.Name())
	corpus := deps.Source.Fetch(ctx, opts.Term, opts.MaxResults)
	sum.Papers = len(corpus)
	if len(corpus) == 0 {
		logger.Warn("no papers fetched; questions will be answered without context")
	}
	if err := ctx.Err(); err != nil {
		return sum, err
	}

	logger.Info("embedding %d papers", len(corpus))
	idx, err := rank.BuildIndex(ctx, deps.Embedder, corpus)
	if err != nil {
		return sum, err
	}
	sum.Indexed = idx.Len()

	runID := startRun(ctx, deps.History, deps.Source.Name(), opts.Term, len(corpus))

	synth := &answer.Synthesizer{Completer: deps.Completer, MaxTokens: opts.MaxTokens}

	for i, q := range opts.Questions {
		sum.Questions++

		top, reply, err := answerOne(ctx, idx, synth, q, topK)
		if err != nil {
			if ctx.Err() != nil {
				return sum, ctx.Err()
			}
			sum.Failed++
			qErr := &QuestionError{Index: i, Question: q, Err: err}
			logger.Error("%v", qErr)
			record(ctx, deps.History, history.Entry{RunID: runID, Question: q, Error: err.Error(), Sources: history.SourcesFrom(top)})
			if opts.FailFast {
				return sum, qErr
			}
			continue
		}

		sum.Answered++
		p.qa(q, reply)
		if opts.ShowSources {
			p.sources(top)
		}
		p.blank()
		record(ctx, deps.History, history.Entry{RunID: runID, Question: q, Answer: reply, Sources: history.SourcesFrom(top)})
	}

	logger.Info("answered %d of %d questions", sum.Answered, sum.Questions)
	return sum, nil
}

func answerOne(ctx context.Context, idx *rank.Index, synth *answer.Synthesizer, q string, k int) ([]types.ScoredPaper, string, error) {
	top, err := idx.TopK(ctx, q, k)
	if err != nil {
		return nil, "", err
	}
	for _, sp := range top {
		logger.Debug("%.4f %s", sp.Score, sp.Record.Title)
	}

	reply, err := synth.Answer(ctx, q, answer.JoinContext(top))
	if err != nil {
		return top, "", err
	}
	return top, reply, nil
}

// startRun returns 0 when history is disabled or the run row could not be
// written.
func startRun(ctx context.Context, rec Recorder, source, term string, corpusSize int) int64 {
	if rec == nil {
		return 0
	}
	id, err := rec.StartRun(ctx, history.Run{Source: source, Term: term, CorpusSize: corpusSize})
	if err != nil {
		logger.Warn("recording run: %v", err)
		return 0
	}
	return id
}

func record(ctx context.Context, rec Recorder, e history.Entry) {
	if rec == nil {
		return
	}
	if _, err := rec.Record(ctx, e); err != nil {
		logger.Warn("recording answer: %v", err)
	}
}
