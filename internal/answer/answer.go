// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package answer turns ranked papers and a question into a prompt for a
// completion model and cleans up the reply.
package answer

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/paper-qa/pkg/types"
)

// DefaultMaxTokens bounds the generated answer when none is configured.
const DefaultMaxTokens = 300

// answerLabel is stripped once from the front of a reply.
const answerLabel = "Answer:"

var promptTmpl = template.Must(template.New("answer").Parse("Context: {{.Context}}\nQuestion: {{.Question}}"))

// Completer generates text for a prompt. The OpenAI client implements it;
// tests supply canned replies.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// CompletionError reports a failed completion for a question.
type CompletionError struct {
	Question string
	Err      error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("answering %q: %v", e.Question, e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }

// Synthesizer answers questions from a context block with a single
// completion call per question.
type Synthesizer struct {
	Completer Completer

	// MaxTokens caps the answer length. Zero uses DefaultMaxTokens.
	MaxTokens int
}

// Answer submits contextBlock and question to the completer and returns the
// reply with surrounding whitespace and one leading "Answer:" label removed.
func (s *Synthesizer) Answer(ctx context.Context, question, contextBlock string) (string, error) {
	prompt, err := RenderPrompt(question, contextBlock)
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	maxTokens := s.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	reply, err := s.Completer.Complete(ctx, prompt, maxTokens)
	if err != nil {
		return "", &CompletionError{Question: question, Err: err}
	}
	return Clean(reply), nil
}

// RenderPrompt builds the prompt sent to the completion model.
func RenderPrompt(question, contextBlock string) (string, error) {
	var buf bytes.Buffer
	err := promptTmpl.Execute(&buf, struct{ Context, Question string }{contextBlock, question})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Clean trims reply and strips one leading "Answer:" label.
func Clean(reply string) string {
	reply = strings.TrimSpace(reply)
	if rest, ok := strings.CutPrefix(reply, answerLabel); ok {
		reply = strings.TrimSpace(rest)
	}
	return reply
}

// JoinContext concatenates the text of the ranked papers, one per line.
func JoinContext(papers []types.ScoredPaper) string {
	texts := make([]string, len(papers))
	for i, p := range papers {
		texts[i] = p.Record.Text()
	}
	return strings.Join(texts, "\n")
}
