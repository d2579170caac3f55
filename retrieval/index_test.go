package retrieval

import (
	"context"
	"testing"
)

// stubEmbedder maps known strings to fixed unit vectors.
type stubEmbedder struct {
	vectors map[string][]float32
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func (s *stubEmbedder) Dimension() int { return 3 }

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 1},
		{"orthogonal", []float32{1, 0, 0}, []float32{0, 1, 0}, 0},
		{"opposite", []float32{1, 0, 0}, []float32{-1, 0, 0}, -1},
		{"mismatched length", []float32{1, 0}, []float32{1, 0, 0}, 0},
		{"zero vector", []float32{0, 0, 0}, []float32{1, 0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("CosineSimilarity(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSearchOrdersByScore(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"query":  {1, 0, 0},
		"close":  {0.9, 0.1, 0},
		"far":    {0, 1, 0},
		"middle": {0.5, 0.5, 0},
	}}
	idx := NewVectorIndex(emb)

	passages := []Passage{
		{ID: "p1", Content: "far"},
		{ID: "p2", Content: "close"},
		{ID: "p3", Content: "middle"},
	}
	if err := idx.AddAll(context.Background(), passages); err != nil {
		t.Fatalf("AddAll failed: %v", err)
	}

	results, err := idx.Search(context.Background(), "query", 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	wantOrder := []string{"p2", "p3", "p1"}
	for i, want := range wantOrder {
		if results[i].ID != want {
			t.Errorf("result %d: expected %s, got %s", i, want, results[i].ID)
		}
	}
	if results[0].Score <= results[1].Score || results[1].Score <= results[2].Score {
		t.Errorf("scores not descending: %v %v %v",
			results[0].Score, results[1].Score, results[2].Score)
	}
}

func TestSearchTiesKeepInsertionOrder(t *testing.T) {
	// All passages embed to the same vector, so every score ties.
	emb := &stubEmbedder{vectors: map[string][]float32{}}
	idx := NewVectorIndex(emb)

	for _, id := range []string{"a", "b", "c"} {
		if err := idx.Add(context.Background(), Passage{ID: id, Content: id}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	results, err := idx.Search(context.Background(), "anything", 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for i, want := range []string{"a", "b", "c"} {
		if results[i].ID != want {
			t.Errorf("result %d: expected %s, got %s (ties must keep insertion order)", i, want, results[i].ID)
		}
	}
}

func TestSearchTruncatesToK(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{}}
	idx := NewVectorIndex(emb)

	for _, id := range []string{"a", "b", "c", "d"} {
		if err := idx.Add(context.Background(), Passage{ID: id, Content: id}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	results, err := idx.Search(context.Background(), "anything", 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
}
