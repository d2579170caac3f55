// In-memory trace storage.
//
// Useful for tests and ephemeral runs where persistence is not wanted.

package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/richinex/loom/model"
)

// MemoryStore implements TraceStore with in-process maps.
// Thread-safe; contents are lost when the process exits.
type MemoryStore struct {
	mu      sync.RWMutex
	runs    map[string]Run
	steps   map[string][]model.Step
	answers []Answer
}

var _ TraceStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs:  make(map[string]Run),
		steps: make(map[string][]model.Step),
	}
}

// SaveRun stores a run and its step trace.
func (s *MemoryStore) SaveRun(ctx context.Context, run Run, steps []model.Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.ID]; exists {
		return fmt.Errorf("run %s already stored", run.ID)
	}
	s.runs[run.ID] = run

	copied := make([]model.Step, len(steps))
	copy(copied, steps)
	s.steps[run.ID] = copied
	return nil
}

// GetRun returns a run and its steps by ID.
func (s *MemoryStore) GetRun(ctx context.Context, id string) (Run, []model.Step, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.runs[id]
	if !exists {
		return Run{}, nil, fmt.Errorf("run %s not found", id)
	}

	steps := make([]model.Step, len(s.steps[id]))
	copy(steps, s.steps[id])
	return run, steps, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *MemoryStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]Run, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})

	if limit > 0 && limit < len(runs) {
		runs = runs[:limit]
	}
	return runs, nil
}

// SaveAnswer stores a synthesized answer.
func (s *MemoryStore) SaveAnswer(ctx context.Context, answer Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.answers = append(s.answers, answer)
	return nil
}

// ListAnswers returns the most recent answers, newest first.
func (s *MemoryStore) ListAnswers(ctx context.Context, limit int) ([]Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	answers := make([]Answer, len(s.answers))
	copy(answers, s.answers)
	sort.SliceStable(answers, func(i, j int) bool {
		return answers[i].CreatedAt.After(answers[j].CreatedAt)
	})

	if limit > 0 && limit < len(answers) {
		answers = answers[:limit]
	}
	return answers, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
