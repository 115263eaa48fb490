package answer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/diogo/wikichat/internal/wiki"
	"github.com/diogo/wikichat/pkg/toolexec"
)

// SearchTool exposes Wikipedia search to the thinking-mode agent
type SearchTool struct {
	search wiki.Searcher
}

var _ toolexec.Tool = (*SearchTool)(nil)

// NewSearchTool wraps search as the wikipedia_search tool
func NewSearchTool(search wiki.Searcher) *SearchTool {
	return &SearchTool{search: search}
}

func (t *SearchTool) Name() string {
	return SearchToolName
}

func (t *SearchTool) Description() string {
	return "Useful for when you need to answer factual questions about people, places, companies, historical events, or scientific concepts. Input should be a search query."
}

func (t *SearchTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The search query",
			},
		},
		"required": []string{"query"},
	}
}

// Execute runs the search. A missing query or a failed search is reported as
// the tool's text so the model can recover.
func (t *SearchTool) Execute(ctx context.Context, input *toolexec.Input) (*toolexec.Output, error) {
	query := strings.TrimSpace(input.GetParamString("query"))
	if query == "" {
		return toolexec.NewOutput("Missing required argument: query"), nil
	}

	result, err := t.search.Run(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return toolexec.NewOutput(fmt.Sprintf("Search failed: %v", err)).
			WithMetadata("query", query), nil
	}

	return toolexec.NewOutput(result).
		WithMetadata("query", query).
		WithMetadata("chars", strconv.Itoa(len(result))), nil
}
