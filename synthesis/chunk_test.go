package synthesis

import (
	"strings"
	"testing"

	"github.com/richinex/loom/retrieval"
)

func TestBuildChunksGroupsUnderBudget(t *testing.T) {
	passages := []retrieval.Passage{
		{ID: "a", Content: "aaaa"}, // 4 bytes
		{ID: "b", Content: "bbbb"},
		{ID: "c", Content: "cccc"},
	}

	// 4 + 2 (separator) + 4 = 10 fits; adding c would need 16.
	chunks := buildChunks(passages, 10)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if got := chunks[0].passageIDs(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("chunk 0 = %v, want [a b]", got)
	}
	if got := chunks[1].passageIDs(); len(got) != 1 || got[0] != "c" {
		t.Errorf("chunk 1 = %v, want [c]", got)
	}
}

func TestBuildChunksNeverSplitsPassage(t *testing.T) {
	passages := []retrieval.Passage{
		{ID: "big", Content: strings.Repeat("x", 100)},
		{ID: "small", Content: "y"},
	}

	chunks := buildChunks(passages, 10)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].content() != passages[0].Content {
		t.Error("oversized passage must stay whole in its own chunk")
	}
}

func TestBuildChunksPreservesOrder(t *testing.T) {
	passages := []retrieval.Passage{
		{ID: "1", Content: "one"},
		{ID: "2", Content: "two"},
		{ID: "3", Content: "three"},
		{ID: "4", Content: "four"},
	}

	chunks := buildChunks(passages, 8)
	var got []string
	for i, c := range chunks {
		if c.index != i {
			t.Errorf("chunk %d has index %d", i, c.index)
		}
		got = append(got, c.passageIDs()...)
	}
	want := []string{"1", "2", "3", "4"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("passage order changed: got %v, want %v", got, want)
		}
	}
}
