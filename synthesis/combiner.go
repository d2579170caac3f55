// Package synthesis combines retrieved passages and a question into a single
// answer, using one of four composition strategies.
//
// Information Hiding: the strategy implementations (how chunks are fanned
// out, ordered, scored, and assembled) are private. Callers pick a Strategy
// and receive a CombinedAnswer with provenance; everything else is internal.
package synthesis

import (
	"context"
	"fmt"
	"strings"
)

// Generator produces text from a prompt. All generation goes through this
// single seam so retry policy stays centralized and tests can substitute a
// fake.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Strategy selects how chunks are turned into one answer.
type Strategy int

const (
	// StrategyStuff concatenates everything into one prompt. 1 call.
	StrategyStuff Strategy = iota
	// StrategyMapReduce generates per chunk in parallel, then reduces. N+1 calls.
	StrategyMapReduce
	// StrategyRefine iterates sequentially, refining a running answer. N calls.
	StrategyRefine
	// StrategyMapRerank generates per chunk in parallel and keeps the most
	// confident sub-answer. N calls.
	StrategyMapRerank
)

// String returns the string representation of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyStuff:
		return "stuff"
	case StrategyMapReduce:
		return "map_reduce"
	case StrategyRefine:
		return "refine"
	case StrategyMapRerank:
		return "map_rerank"
	default:
		return "unknown"
	}
}

// ParseStrategy parses a strategy from string (case-insensitive).
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stuff":
		return StrategyStuff, nil
	case "map_reduce", "map-reduce", "mapreduce":
		return StrategyMapReduce, nil
	case "refine":
		return StrategyRefine, nil
	case "map_rerank", "map-rerank", "maprerank":
		return StrategyMapRerank, nil
	default:
		return 0, fmt.Errorf("unknown strategy: %s", s)
	}
}

// SubAnswer is the output of generating over one chunk. It lives only for
// the duration of a Combine call.
type SubAnswer struct {
	Text           string
	SourceChunkIDs []string
	Confidence     float64
}

// CombinedAnswer is the final result of a combination strategy.
type CombinedAnswer struct {
	Text           string   `json:"text"`
	Strategy       Strategy `json:"strategy"`
	CallCount      int      `json:"call_count"`
	UsedPassageIDs []string `json:"used_passage_ids"`
}

// Combiner drives generation over chunked passages.
type Combiner struct {
	gen         Generator
	chunkBudget int
	concurrency int
}

const (
	// DefaultChunkBudget is the per-call passage content budget in bytes.
	DefaultChunkBudget = 8000
	// DefaultConcurrency bounds parallel per-chunk calls.
	DefaultConcurrency = 4
)

// Option configures a Combiner.
type Option func(*Combiner)

// WithChunkBudget sets the per-call content budget in bytes.
func WithChunkBudget(budget int) Option {
	return func(c *Combiner) {
		if budget > 0 {
			c.chunkBudget = budget
		}
	}
}

// WithConcurrency bounds the number of in-flight per-chunk calls for the
// parallel strategies.
func WithConcurrency(n int) Option {
	return func(c *Combiner) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// NewCombiner creates a combiner over the given generator.
func NewCombiner(gen Generator, opts ...Option) *Combiner {
	c := &Combiner{
		gen:         gen,
		chunkBudget: DefaultChunkBudget,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
