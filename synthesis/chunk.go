package synthesis

import (
	"strings"

	"github.com/richinex/loom/retrieval"
)

// passageSeparator joins passage contents inside one chunk and counts
// against the chunk budget.
const passageSeparator = "\n\n"

// chunk groups adjacent passages under the per-call content budget.
type chunk struct {
	index    int
	passages []retrieval.Passage
}

func (c chunk) content() string {
	parts := make([]string, len(c.passages))
	for i, p := range c.passages {
		parts[i] = p.Content
	}
	return strings.Join(parts, passageSeparator)
}

func (c chunk) passageIDs() []string {
	ids := make([]string, len(c.passages))
	for i, p := range c.passages {
		ids[i] = p.ID
	}
	return ids
}

// buildChunks groups passages into chunks whose combined content stays
// under budget bytes. Boundaries never split a passage, so a passage larger
// than the budget still becomes a chunk of its own. Passage order is
// preserved.
func buildChunks(passages []retrieval.Passage, budget int) []chunk {
	var chunks []chunk
	var current []retrieval.Passage
	size := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, chunk{index: len(chunks), passages: current})
		current = nil
		size = 0
	}

	for _, p := range passages {
		cost := len(p.Content)
		if len(current) > 0 {
			cost += len(passageSeparator)
		}
		if len(current) > 0 && size+cost > budget {
			flush()
			cost = len(p.Content)
		}
		current = append(current, p)
		size += cost
	}
	flush()

	return chunks
}

func allPassageIDs(chunks []chunk) []string {
	var ids []string
	for _, c := range chunks {
		ids = append(ids, c.passageIDs()...)
	}
	return ids
}
