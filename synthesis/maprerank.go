package synthesis

import "context"

// mapRerank answers each chunk independently with a self-reported
// confidence score, then keeps the most confident sub-answer. Scoring is
// parsed from the same call's output, so total calls = N. Ties go to the
// lowest original chunk index. Only the winning chunk's passages appear in
// the result's provenance.
func (c *Combiner) mapRerank(ctx context.Context, question string, chunks []chunk) (*CombinedAnswer, error) {
	subs, err := c.fanOut(ctx, chunks, func(ch chunk) string {
		return rerankPrompt(question, ch.content())
	})
	if err != nil {
		return nil, err
	}

	winner := -1
	best := 0.0
	for i := range subs {
		score, err := ParseConfidence(subs[i].Text)
		if err != nil || score == 0 {
			continue
		}
		subs[i].Confidence = score
		// Strict greater-than keeps the lowest index on ties.
		if winner == -1 || score > best {
			winner = i
			best = score
		}
	}
	if winner == -1 {
		return nil, ErrNoConfidentAnswer
	}

	return &CombinedAnswer{
		Text:           extractAnswer(subs[winner].Text),
		Strategy:       StrategyMapRerank,
		CallCount:      len(chunks),
		UsedPassageIDs: subs[winner].SourceChunkIDs,
	}, nil
}
