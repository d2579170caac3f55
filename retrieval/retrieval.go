// Package retrieval provides passage retrieval over an in-memory vector index.
//
// Passages are the unit of retrieval: each carries a stable identifier and a
// source reference so downstream consumers can report provenance.
package retrieval

import "context"

// Passage is a retrieved piece of source material.
type Passage struct {
	ID        string  `json:"id"`
	Content   string  `json:"content"`
	Score     float32 `json:"score"`
	SourceRef string  `json:"source_ref,omitempty"`
}

// Retriever returns the top-k passages most relevant to a query.
//
// Implementations must be deterministic: results are ordered by descending
// score, and equal scores preserve insertion order.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]Passage, error)
}
