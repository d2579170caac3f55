package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// Embedder converts text into a vector suitable for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// VectorIndex is an in-memory vector index with cosine similarity search.
// Safe for concurrent use.
type VectorIndex struct {
	mu         sync.RWMutex
	embedder   Embedder
	passages   []Passage
	embeddings [][]float32
}

var _ Retriever = (*VectorIndex)(nil)

// NewVectorIndex creates an empty index backed by the given embedder.
func NewVectorIndex(embedder Embedder) *VectorIndex {
	return &VectorIndex{embedder: embedder}
}

// Add embeds the passage content and stores it in the index.
func (idx *VectorIndex) Add(ctx context.Context, p Passage) error {
	emb, err := idx.embedder.Embed(ctx, p.Content)
	if err != nil {
		return fmt.Errorf("embed passage %s: %w", p.ID, err)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.passages = append(idx.passages, p)
	idx.embeddings = append(idx.embeddings, emb)
	return nil
}

// AddAll embeds and stores passages in order. Stops on the first failure.
func (idx *VectorIndex) AddAll(ctx context.Context, passages []Passage) error {
	for _, p := range passages {
		if err := idx.Add(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of indexed passages.
func (idx *VectorIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.passages)
}

// Search embeds the query and returns the top-k passages by cosine
// similarity, highest first. Equal scores keep insertion order.
func (idx *VectorIndex) Search(ctx context.Context, query string, k int) ([]Passage, error) {
	queryEmb, err := idx.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	results := make([]Passage, 0, len(idx.passages))
	for i := range idx.passages {
		p := idx.passages[i]
		p.Score = CosineSimilarity(queryEmb, idx.embeddings[i])
		results = append(results, p)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > 0 && k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns a value between -1 and 1, where 1 means identical direction.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float32
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}
