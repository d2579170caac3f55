package synthesis

import "context"

// refine builds an answer from the first chunk, then walks the remaining
// chunks in order, each call embedding the prior call's output. Strictly
// sequential: chunk i's call must not start before chunk i-1's returns.
// Total calls = N.
func (c *Combiner) refine(ctx context.Context, question string, chunks []chunk) (*CombinedAnswer, error) {
	answer, err := c.gen.Complete(ctx, refineInitialPrompt(question, chunks[0].content()))
	if err != nil {
		return nil, err
	}

	for _, ch := range chunks[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		answer, err = c.gen.Complete(ctx, refinePrompt(question, answer, ch.content()))
		if err != nil {
			return nil, err
		}
	}

	return &CombinedAnswer{
		Text:           answer,
		Strategy:       StrategyRefine,
		CallCount:      len(chunks),
		UsedPassageIDs: allPassageIDs(chunks),
	}, nil
}
