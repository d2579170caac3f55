// Passage Search Tool.

package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/richinex/loom/retrieval"
)

// SearchTool retrieves passages relevant to a query from a retriever.
type SearchTool struct {
	BaseTool
	retriever retrieval.Retriever
	topK      int
}

// NewSearchTool creates a search tool over the given retriever, returning
// at most topK passages per query.
func NewSearchTool(retriever retrieval.Retriever, topK int) *SearchTool {
	if topK <= 0 {
		topK = 5
	}
	return &SearchTool{retriever: retriever, topK: topK}
}

// Metadata returns the tool metadata.
func (t *SearchTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "search",
		Description: "Search the indexed documents for passages relevant to a query",
		Usage:       "what does the reactor manual say about cooling",
	}
}

// Validate validates the query.
func (t *SearchTool) Validate(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("query cannot be empty")
	}
	return nil
}

// Execute runs the search and formats results for the agent.
func (t *SearchTool) Execute(ctx context.Context, input string) (ToolResult, error) {
	query := strings.TrimSpace(input)
	if query == "" {
		return FailureResultf("query cannot be empty"), nil
	}

	passages, err := t.retriever.Search(ctx, query, t.topK)
	if err != nil {
		return FailureResult(fmt.Errorf("search failed: %w", err)), nil
	}
	if len(passages) == 0 {
		return SuccessResult("no passages found"), nil
	}

	var b strings.Builder
	for i, p := range passages {
		fmt.Fprintf(&b, "[%d] (id=%s score=%.3f) %s\n", i+1, p.ID, p.Score, p.Content)
	}
	return SuccessResult(strings.TrimRight(b.String(), "\n")), nil
}
