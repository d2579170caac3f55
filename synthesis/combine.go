package synthesis

import (
	"context"
	"errors"
	"fmt"

	"github.com/richinex/loom/retrieval"
)

// Combine runs the selected strategy over the passages and returns one
// final answer with provenance. Passages are grouped into chunks under the
// configured budget; chunk boundaries never split a passage.
func (c *Combiner) Combine(ctx context.Context, question string, passages []retrieval.Passage, strategy Strategy) (*CombinedAnswer, error) {
	if len(passages) == 0 {
		return nil, errors.New("no passages to combine")
	}

	switch strategy {
	case StrategyStuff:
		return c.stuff(ctx, question, passages)
	case StrategyMapReduce:
		return c.mapReduce(ctx, question, buildChunks(passages, c.chunkBudget))
	case StrategyRefine:
		return c.refine(ctx, question, buildChunks(passages, c.chunkBudget))
	case StrategyMapRerank:
		return c.mapRerank(ctx, question, buildChunks(passages, c.chunkBudget))
	default:
		return nil, fmt.Errorf("unknown strategy: %v", strategy)
	}
}
