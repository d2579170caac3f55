package synthesis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/richinex/loom/retrieval"
)

// fakeGen is a scripted generator. respond maps a prompt to a response;
// delay lets tests reorder completion times of parallel calls.
type fakeGen struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	respond func(prompt string) (string, error)
	delay   func(prompt string) time.Duration
}

func (f *fakeGen) Complete(ctx context.Context, prompt string) (string, error) {
	if f.delay != nil {
		if d := f.delay(prompt); d > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(d):
			}
		}
	}

	f.mu.Lock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	if f.respond != nil {
		return f.respond(prompt)
	}
	return "ok", nil
}

func (f *fakeGen) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// testPassages returns n passages whose content is large enough that a
// small chunk budget puts each one in its own chunk.
func testPassages(n int) []retrieval.Passage {
	passages := make([]retrieval.Passage, n)
	for i := range passages {
		passages[i] = retrieval.Passage{
			ID:      fmt.Sprintf("p%d", i),
			Content: fmt.Sprintf("passage-%d body text padding padding padding", i),
		}
	}
	return passages
}

func rerankResponse(answer string, score int) string {
	return fmt.Sprintf("Answer: %s\nScore: %d", answer, score)
}

func TestCallCountsPerStrategy(t *testing.T) {
	const n = 3

	tests := []struct {
		name      string
		strategy  Strategy
		budget    int
		wantCalls int
	}{
		{"stuff is one call", StrategyStuff, 1 << 20, 1},
		{"map_reduce is n plus one", StrategyMapReduce, 10, n + 1},
		{"refine is n", StrategyRefine, 10, n},
		{"map_rerank is n", StrategyMapRerank, 10, n},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGen{respond: func(string) (string, error) {
				return rerankResponse("something", 50), nil
			}}
			combiner := NewCombiner(gen, WithChunkBudget(tt.budget))

			result, err := combiner.Combine(context.Background(), "q", testPassages(n), tt.strategy)
			if err != nil {
				t.Fatalf("Combine failed: %v", err)
			}
			if gen.callCount() != tt.wantCalls {
				t.Errorf("expected %d generator calls, got %d", tt.wantCalls, gen.callCount())
			}
			if result.CallCount != tt.wantCalls {
				t.Errorf("CallCount = %d, want %d", result.CallCount, tt.wantCalls)
			}
			if result.Strategy != tt.strategy {
				t.Errorf("Strategy = %v, want %v", result.Strategy, tt.strategy)
			}
		})
	}
}

func TestStuffCapacityExceeded(t *testing.T) {
	gen := &fakeGen{}
	combiner := NewCombiner(gen, WithChunkBudget(10))

	_, err := combiner.Combine(context.Background(), "q", testPassages(2), StrategyStuff)
	if !errors.Is(err, ErrCapacity) {
		t.Fatalf("expected ErrCapacity, got %v", err)
	}
	if gen.callCount() != 0 {
		t.Errorf("capacity check must happen before any call, got %d calls", gen.callCount())
	}
}

func TestRefineEmbedsPriorOutput(t *testing.T) {
	step := 0
	gen := &fakeGen{respond: func(string) (string, error) {
		step++
		return fmt.Sprintf("running-answer-%d", step), nil
	}}
	combiner := NewCombiner(gen, WithChunkBudget(10))

	result, err := combiner.Combine(context.Background(), "q", testPassages(3), StrategyRefine)
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}

	for i := 1; i < len(gen.prompts); i++ {
		prior := fmt.Sprintf("running-answer-%d", i)
		if !strings.Contains(gen.prompts[i], prior) {
			t.Errorf("refine prompt %d must embed prior output %q", i, prior)
		}
	}
	if result.Text != "running-answer-3" {
		t.Errorf("final text = %q, want output of last call", result.Text)
	}
}

// reducePromptFor runs MAP_REDUCE with the given per-chunk delays and
// returns the reduce prompt.
func reducePromptFor(t *testing.T, delays map[string]time.Duration) string {
	t.Helper()
	gen := &fakeGen{
		respond: func(prompt string) (string, error) {
			for i := 0; i < 4; i++ {
				if strings.Contains(prompt, fmt.Sprintf("passage-%d", i)) {
					return fmt.Sprintf("sub-%d", i), nil
				}
			}
			return "final", nil
		},
		delay: func(prompt string) time.Duration {
			for marker, d := range delays {
				if strings.Contains(prompt, marker) {
					return d
				}
			}
			return 0
		},
	}
	combiner := NewCombiner(gen, WithChunkBudget(10))

	_, err := combiner.Combine(context.Background(), "q", testPassages(4), StrategyMapReduce)
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}

	for _, p := range gen.prompts {
		if strings.Contains(p, "Partial answer 1:") {
			return p
		}
	}
	t.Fatal("reduce prompt not found")
	return ""
}

func TestMapReduceOrderingInvariantUnderDelays(t *testing.T) {
	// Delay the first chunks so completion order is reversed.
	delayed := reducePromptFor(t, map[string]time.Duration{
		"passage-0": 40 * time.Millisecond,
		"passage-1": 20 * time.Millisecond,
	})
	undelayed := reducePromptFor(t, nil)

	if delayed != undelayed {
		t.Error("reduce prompt must not depend on completion order of parallel calls")
	}

	last := -1
	for i := 0; i < 4; i++ {
		pos := strings.Index(delayed, fmt.Sprintf("sub-%d", i))
		if pos == -1 {
			t.Fatalf("sub-answer %d missing from reduce prompt", i)
		}
		if pos < last {
			t.Errorf("sub-answer %d out of order in reduce prompt", i)
		}
		last = pos
	}
}

func TestMapReducePermanentFailureAborts(t *testing.T) {
	permanent := errors.New("invalid request: prompt rejected")
	gen := &fakeGen{respond: func(prompt string) (string, error) {
		if strings.Contains(prompt, "passage-2") {
			return "", permanent
		}
		return "sub", nil
	}}
	combiner := NewCombiner(gen, WithChunkBudget(10))

	result, err := combiner.Combine(context.Background(), "q", testPassages(4), StrategyMapReduce)
	if err == nil {
		t.Fatal("expected error from failed chunk")
	}
	if !errors.Is(err, permanent) {
		t.Errorf("expected the permanent error to propagate, got %v", err)
	}
	if result != nil {
		t.Error("no partial CombinedAnswer may be produced on failure")
	}
}

func TestMapRerankSelectsHighestConfidence(t *testing.T) {
	gen := &fakeGen{respond: func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "passage-0"):
			return rerankResponse("answer-zero", 40), nil
		case strings.Contains(prompt, "passage-1"):
			return rerankResponse("answer-one", 90), nil
		default:
			return rerankResponse("answer-two", 60), nil
		}
	}}
	combiner := NewCombiner(gen, WithChunkBudget(10))

	result, err := combiner.Combine(context.Background(), "q", testPassages(3), StrategyMapRerank)
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}
	if result.Text != "answer-one" {
		t.Errorf("expected highest-confidence answer, got %q", result.Text)
	}
	if len(result.UsedPassageIDs) != 1 || result.UsedPassageIDs[0] != "p1" {
		t.Errorf("provenance must name only the winning chunk's passages, got %v", result.UsedPassageIDs)
	}
}

func TestMapRerankTieGoesToLowestIndex(t *testing.T) {
	gen := &fakeGen{respond: func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "passage-0"):
			return rerankResponse("answer-zero", 40), nil
		case strings.Contains(prompt, "passage-1"):
			return rerankResponse("answer-one", 90), nil
		default:
			return rerankResponse("answer-two", 90), nil
		}
	}}
	combiner := NewCombiner(gen, WithChunkBudget(10))

	result, err := combiner.Combine(context.Background(), "q", testPassages(3), StrategyMapRerank)
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}
	if result.Text != "answer-one" {
		t.Errorf("tie must go to lowest chunk index, got %q", result.Text)
	}
}

func TestMapRerankNoConfidentAnswer(t *testing.T) {
	gen := &fakeGen{respond: func(prompt string) (string, error) {
		if strings.Contains(prompt, "passage-0") {
			return rerankResponse("zero-score", 0), nil
		}
		return "no score in this response at all", nil
	}}
	combiner := NewCombiner(gen, WithChunkBudget(10))

	_, err := combiner.Combine(context.Background(), "q", testPassages(2), StrategyMapRerank)
	if !errors.Is(err, ErrNoConfidentAnswer) {
		t.Fatalf("expected ErrNoConfidentAnswer, got %v", err)
	}
}

func TestCombineRejectsEmptyPassages(t *testing.T) {
	combiner := NewCombiner(&fakeGen{})
	if _, err := combiner.Combine(context.Background(), "q", nil, StrategyStuff); err == nil {
		t.Fatal("expected error for empty passage set")
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"stuff", StrategyStuff, false},
		{"map_reduce", StrategyMapReduce, false},
		{"MAP-REDUCE", StrategyMapReduce, false},
		{"refine", StrategyRefine, false},
		{"map_rerank", StrategyMapRerank, false},
		{"bogus", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseStrategy(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseStrategy(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseStrategy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
