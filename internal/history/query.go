// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// List returns the most recent entries, newest first. A non-positive limit
// returns at most 20.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	return s.query(ctx,
		`SELECT a.id, a.run_id, a.question, a.answer, a.error, a.created_at
		FROM answers a
		ORDER BY a.id DESC
		LIMIT ?`, normLimit(limit))
}

// Search runs an FTS5 match over questions and answers and returns entries
// ranked by relevance. Each whitespace-separated word of query is matched as
// a literal phrase and all words must match, so input like "llama-2" needs
// no FTS5 syntax.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Entry, error) {
	match := matchExpr(query)
	if match == "" {
		return nil, fmt.Errorf("empty search query")
	}
	return s.query(ctx,
		`SELECT a.id, a.run_id, a.question, a.answer, a.error, a.created_at
		FROM answers_fts
		JOIN answers a ON a.id = answers_fts.rowid
		WHERE answers_fts MATCH ?
		ORDER BY answers_fts.rank
		LIMIT ?`, match, normLimit(limit))
}

// matchExpr quotes every word of query as an FTS5 string.
func matchExpr(query string) string {
	words := strings.Fields(query)
	for i, w := range words {
		words[i] = `"` + strings.ReplaceAll(w, `"`, `""`) + `"`
	}
	return strings.Join(words, " ")
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			created string
		)
		if err := rows.Scan(&e.ID, &e.RunID, &e.Question, &e.Answer, &e.Error, &created); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range entries {
		srcs, err := s.sources(ctx, entries[i].ID)
		if err != nil {
			return nil, err
		}
		entries[i].Sources = srcs
	}
	return entries, nil
}

func (s *Store) sources(ctx context.Context, answerID int64) ([]Source, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT rank, paper_id, title, score FROM answer_sources WHERE answer_id = ? ORDER BY rank`, answerID)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	var out []Source
	for rows.Next() {
		var (
			src     Source
			paperID sql.NullString
		)
		if err := rows.Scan(&src.Rank, &paperID, &src.Title, &src.Score); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		src.ID = paperID.String
		out = append(out, src)
	}
	return out, rows.Err()
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, source, term, corpus_size FROM runs ORDER BY id DESC LIMIT ?`, normLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r       Run
			started string
		)
		if err := rows.Scan(&r.ID, &started, &r.Source, &r.Term, &r.CorpusSize); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, started); err == nil {
			r.StartedAt = t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func normLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	return limit
}
