package synthesis

import (
	"context"
	"fmt"

	"github.com/richinex/loom/retrieval"
)

// stuff concatenates every passage into one prompt. Exactly 1 call.
// Fails with ErrCapacity when the combined content exceeds the budget even
// as a single chunk; the caller must pre-filter or switch strategy.
func (c *Combiner) stuff(ctx context.Context, question string, passages []retrieval.Passage) (*CombinedAnswer, error) {
	size := 0
	for i, p := range passages {
		if i > 0 {
			size += len(passageSeparator)
		}
		size += len(p.Content)
	}
	if size > c.chunkBudget {
		return nil, fmt.Errorf("%w: %d bytes of passage content over the %d byte budget", ErrCapacity, size, c.chunkBudget)
	}

	all := chunk{index: 0, passages: passages}
	text, err := c.gen.Complete(ctx, stuffPrompt(question, all.content()))
	if err != nil {
		return nil, err
	}

	return &CombinedAnswer{
		Text:           text,
		Strategy:       StrategyStuff,
		CallCount:      1,
		UsedPassageIDs: all.passageIDs(),
	}, nil
}
