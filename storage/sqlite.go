// SQLite-backed trace storage.
//
// Information Hiding:
// - SQLite connection management hidden behind TraceStore
// - Schema and migration details encapsulated
// - Thread-safe via sql.DB's built-in connection pooling

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/richinex/loom/model"
)

// SqliteStore implements TraceStore using SQLite.
type SqliteStore struct {
	db *sql.DB
}

var _ TraceStore = (*SqliteStore)(nil)

// OpenSqlite opens or creates a SQLite database at the given path.
// Creates parent directories if they don't exist.
func OpenSqlite(path string) (*SqliteStore, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	store := &SqliteStore{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// NewSqliteInMemory creates an in-memory database (useful for testing).
func NewSqliteInMemory() (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}

	store := &SqliteStore{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *SqliteStore) Close() error {
	return s.db.Close()
}

func (s *SqliteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			outcome TEXT NOT NULL,
			llm_calls INTEGER NOT NULL DEFAULT 0,
			total_tokens INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS steps (
			run_id TEXT NOT NULL,
			step_index INTEGER NOT NULL,
			thought TEXT NOT NULL,
			action TEXT NOT NULL,
			action_input TEXT NOT NULL,
			observation TEXT NOT NULL,
			PRIMARY KEY (run_id, step_index),
			FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_steps_run
		ON steps(run_id, step_index);

		CREATE TABLE IF NOT EXISTS answers (
			answer_id TEXT PRIMARY KEY,
			question TEXT NOT NULL,
			strategy TEXT NOT NULL,
			answer TEXT NOT NULL,
			call_count INTEGER NOT NULL,
			passage_ids TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_answers_created
		ON answers(created_at DESC);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveRun stores a run and its ordered step trace in one transaction.
func (s *SqliteStore) SaveRun(ctx context.Context, run Run, steps []model.Step) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rollback is a no-op after Commit
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, question, answer, outcome, llm_calls, total_tokens, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Question, run.Answer, run.Outcome,
		run.LLMCalls, run.TotalTokens, run.DurationMs, run.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO steps (run_id, step_index, thought, action, action_input, observation)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare step insert: %w", err)
	}
	defer stmt.Close()

	for _, step := range steps {
		_, err = stmt.ExecContext(ctx, run.ID, step.Index,
			step.Thought, step.Action, step.ActionInput, step.Observation)
		if err != nil {
			return fmt.Errorf("failed to insert step %d: %w", step.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetRun returns a run and its steps by ID.
func (s *SqliteStore) GetRun(ctx context.Context, id string) (Run, []model.Step, error) {
	var run Run
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id, question, answer, outcome, llm_calls, total_tokens, duration_ms, created_at
		 FROM runs WHERE run_id = ?`, id).
		Scan(&run.ID, &run.Question, &run.Answer, &run.Outcome,
			&run.LLMCalls, &run.TotalTokens, &run.DurationMs, &createdAt)
	if err == sql.ErrNoRows {
		return Run{}, nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return Run{}, nil, fmt.Errorf("failed to query run: %w", err)
	}
	run.CreatedAt = timeFromUnix(createdAt)

	rows, err := s.db.QueryContext(ctx,
		`SELECT step_index, thought, action, action_input, observation
		 FROM steps WHERE run_id = ? ORDER BY step_index ASC`, id)
	if err != nil {
		return Run{}, nil, fmt.Errorf("failed to query steps: %w", err)
	}
	defer rows.Close()

	var steps []model.Step
	for rows.Next() {
		var step model.Step
		if err := rows.Scan(&step.Index, &step.Thought, &step.Action,
			&step.ActionInput, &step.Observation); err != nil {
			return Run{}, nil, fmt.Errorf("failed to scan step: %w", err)
		}
		steps = append(steps, step)
	}
	if err := rows.Err(); err != nil {
		return Run{}, nil, fmt.Errorf("failed to read steps: %w", err)
	}

	return run, steps, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SqliteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, question, answer, outcome, llm_calls, total_tokens, duration_ms, created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var createdAt int64
		if err := rows.Scan(&run.ID, &run.Question, &run.Answer, &run.Outcome,
			&run.LLMCalls, &run.TotalTokens, &run.DurationMs, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.CreatedAt = timeFromUnix(createdAt)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// SaveAnswer stores a synthesized answer.
func (s *SqliteStore) SaveAnswer(ctx context.Context, answer Answer) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO answers (answer_id, question, strategy, answer, call_count, passage_ids, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		answer.ID, answer.Question, answer.Strategy, answer.Text,
		answer.CallCount, strings.Join(answer.PassageIDs, ","), answer.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert answer: %w", err)
	}
	return nil
}

// ListAnswers returns the most recent answers, newest first.
func (s *SqliteStore) ListAnswers(ctx context.Context, limit int) ([]Answer, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT answer_id, question, strategy, answer, call_count, passage_ids, created_at
		 FROM answers ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query answers: %w", err)
	}
	defer rows.Close()

	var answers []Answer
	for rows.Next() {
		var a Answer
		var ids string
		var createdAt int64
		if err := rows.Scan(&a.ID, &a.Question, &a.Strategy, &a.Text,
			&a.CallCount, &ids, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		if ids != "" {
			a.PassageIDs = strings.Split(ids, ",")
		}
		a.CreatedAt = timeFromUnix(createdAt)
		answers = append(answers, a)
	}
	return answers, rows.Err()
}
