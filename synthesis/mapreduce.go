package synthesis

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// fanOut runs one generation per chunk, bounded by the concurrency limit.
// Results are keyed by original chunk index so assembly never depends on
// completion order. The first failure cancels outstanding calls and
// propagates; no partial result set is returned.
func (c *Combiner) fanOut(ctx context.Context, chunks []chunk, prompt func(chunk) string) ([]SubAnswer, error) {
	subs := make([]SubAnswer, len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for _, ch := range chunks {
		g.Go(func() error {
			text, err := c.gen.Complete(ctx, prompt(ch))
			if err != nil {
				return fmt.Errorf("chunk %d: %w", ch.index, err)
			}
			subs[ch.index] = SubAnswer{Text: text, SourceChunkIDs: ch.passageIDs()}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return subs, nil
}

// mapReduce answers each chunk independently, then reduces the sub-answers
// into one final answer. Total calls = N+1. The reduce prompt lists
// sub-answers in input order regardless of which parallel call finished
// first.
func (c *Combiner) mapReduce(ctx context.Context, question string, chunks []chunk) (*CombinedAnswer, error) {
	subs, err := c.fanOut(ctx, chunks, func(ch chunk) string {
		return mapPrompt(question, ch.content())
	})
	if err != nil {
		return nil, err
	}

	text, err := c.gen.Complete(ctx, reducePrompt(question, subs))
	if err != nil {
		return nil, err
	}

	return &CombinedAnswer{
		Text:           text,
		Strategy:       StrategyMapReduce,
		CallCount:      len(chunks) + 1,
		UsedPassageIDs: allPassageIDs(chunks),
	}, nil
}
