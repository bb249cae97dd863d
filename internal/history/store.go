// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records answered questions in a SQLite database with an
// FTS5 index over questions and answers. Only the question, the answer and
// the identity and score of the papers used as context are kept; papers
// and embeddings are not.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-qa/pkg/types"
)

const (
	// DefaultDir holds history.db when no directory is configured.
	DefaultDir = ".paper-qa"
	dbFile     = "history.db"

	defaultLimit = 20
)

// Run describes one batch run.
type Run struct {
	ID         int64     `json:"id" yaml:"id"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	Source     string    `json:"source" yaml:"source"`
	Term       string    `json:"term" yaml:"term"`
	CorpusSize int       `json:"corpus_size" yaml:"corpus_size"`
}

// Source identifies a paper that was used as context for an answer.
type Source struct {
	Rank  int     `json:"rank" yaml:"rank"`
	ID    string  `json:"id,omitempty" yaml:"id,omitempty"`
	Title string  `json:"title" yaml:"title"`
	Score float64 `json:"score" yaml:"score"`
}

// Entry is one recorded question. Error is set instead of Answer when the
// question could not be answered.
type Entry struct {
	ID        int64     `json:"id" yaml:"id"`
	RunID     int64     `json:"run_id" yaml:"run_id"`
	Question  string    `json:"question" yaml:"question"`
	Answer    string    `json:"answer,omitempty" yaml:"answer,omitempty"`
	Error     string    `json:"error,omitempty" yaml:"error,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Sources   []Source  `json:"sources,omitempty" yaml:"sources,omitempty"`
}

// SourcesFrom converts ranked papers into history sources.
func SourcesFrom(papers []types.ScoredPaper) []Source {
	out := make([]Source, len(papers))
	for i, p := range papers {
		out[i] = Source{Rank: i + 1, ID: p.Record.ID, Title: p.Record.Title, Score: p.Score}
	}
	return out
}

// Store manages the history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates dir/history.db and its schema.
func Open(cfg types.HistoryConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TEXT NOT NULL,
			source TEXT,
			term TEXT,
			corpus_size INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS answers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			question TEXT NOT NULL,
			answer TEXT NOT NULL DEFAULT '',
			error TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_answers_run_id ON answers(run_id)`,
		`CREATE TABLE IF NOT EXISTS answer_sources (
			answer_id INTEGER NOT NULL REFERENCES answers(id) ON DELETE CASCADE,
			rank INTEGER NOT NULL,
			paper_id TEXT,
			title TEXT NOT NULL,
			score REAL NOT NULL,
			PRIMARY KEY (answer_id, rank)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='answers_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE answers_fts USING fts5(question, answer, content=answers, content_rowid=id)`,
			`CREATE TRIGGER answers_ai AFTER INSERT ON answers BEGIN
				INSERT INTO answers_fts(rowid, question, answer) VALUES (new.id, new.question, new.answer);
			END`,
			`CREATE TRIGGER answers_ad AFTER DELETE ON answers BEGIN
				INSERT INTO answers_fts(answers_fts, rowid, question, answer) VALUES('delete', old.id, old.question, old.answer);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}
	return nil
}

// StartRun inserts a run row and returns its ID.
func (s *Store) StartRun(ctx context.Context, run Run) (int64, error) {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (started_at, source, term, corpus_size) VALUES (?, ?, ?, ?)`,
		run.StartedAt.UTC().Format(time.RFC3339Nano), run.Source, run.Term, run.CorpusSize,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	return res.LastInsertId()
}

// Record stores e and its sources under e.RunID in one transaction and
// returns the new entry ID.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO answers (run_id, question, answer, error, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.RunID, e.Question, e.Answer, e.Error, e.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting answer: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading answer id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO answer_sources (answer_id, rank, paper_id, title, score) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, src := range e.Sources {
		if _, err := stmt.ExecContext(ctx, id, src.Rank, src.ID, src.Title, src.Score); err != nil {
			return 0, fmt.Errorf("inserting source %d: %w", src.Rank, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing answer: %w", err)
	}
	return id, nil
}
