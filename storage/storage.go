// Package storage persists run traces and synthesized answers.
//
// Information Hiding:
// - Backend selection hidden behind the TraceStore interface
// - Schema and serialization details encapsulated per backend
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/richinex/loom/model"
)

// Run is a persisted record of one agent run.
type Run struct {
	ID          string    `json:"id"`
	Question    string    `json:"question"`
	Answer      string    `json:"answer"`
	Outcome     string    `json:"outcome"` // termination reason
	LLMCalls    int       `json:"llm_calls"`
	TotalTokens uint32    `json:"total_tokens"`
	DurationMs  uint64    `json:"duration_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewRun creates a run record with a fresh ID and timestamp.
func NewRun(question, answer, outcome string) Run {
	return Run{
		ID:        uuid.NewString(),
		Question:  question,
		Answer:    answer,
		Outcome:   outcome,
		CreatedAt: time.Now().UTC(),
	}
}

// Answer is a persisted record of one synthesis invocation.
type Answer struct {
	ID         string    `json:"id"`
	Question   string    `json:"question"`
	Strategy   string    `json:"strategy"`
	Text       string    `json:"text"`
	CallCount  int       `json:"call_count"`
	PassageIDs []string  `json:"passage_ids"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewAnswer creates an answer record with a fresh ID and timestamp.
func NewAnswer(question, strategy, text string, callCount int, passageIDs []string) Answer {
	return Answer{
		ID:         uuid.NewString(),
		Question:   question,
		Strategy:   strategy,
		Text:       text,
		CallCount:  callCount,
		PassageIDs: passageIDs,
		CreatedAt:  time.Now().UTC(),
	}
}

// TraceStore persists runs with their step traces, and synthesized answers.
type TraceStore interface {
	// SaveRun stores a run and its ordered step trace.
	SaveRun(ctx context.Context, run Run, steps []model.Step) error

	// GetRun returns a run and its steps by ID.
	GetRun(ctx context.Context, id string) (Run, []model.Step, error)

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// SaveAnswer stores a synthesized answer.
	SaveAnswer(ctx context.Context, answer Answer) error

	// ListAnswers returns the most recent answers, newest first.
	ListAnswers(ctx context.Context, limit int) ([]Answer, error)

	// Close releases backend resources.
	Close() error
}

func timeFromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
