package answer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/diogo/wikichat/internal/models"
)

// fakeCompleter replays scripted completions and records every request
type fakeCompleter struct {
	replies  []*Completion
	err      error
	requests []CompletionRequest
}

func (f *fakeCompleter) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.replies) == 0 {
		return &Completion{Content: "fallback"}, nil
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

// fakeSearcher returns result; with echo set the query is appended to it
type fakeSearcher struct {
	result  string
	err     error
	echo    bool
	mu      sync.Mutex
	queries []string
}

func (f *fakeSearcher) Run(ctx context.Context, query string) (string, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	if f.echo {
		return f.result + " " + query, nil
	}
	return f.result, nil
}

func TestService_Fast(t *testing.T) {
	completer := &fakeCompleter{replies: []*Completion{{Content: "  Go was designed at Google.\n"}}}
	search := &fakeSearcher{result: "Page: Go\nSummary: Go is a language designed at Google."}
	svc := NewService(completer, search, DefaultConfig(), nil)

	got, err := svc.Answer(context.Background(), models.ModeFast, "Who designed Go?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if got != "Go was designed at Google." {
		t.Errorf("Answer() = %q", got)
	}

	if len(search.queries) != 1 || search.queries[0] != "Who designed Go?" {
		t.Errorf("search queries = %v", search.queries)
	}
	if len(completer.requests) != 1 {
		t.Fatalf("completions = %d, want 1", len(completer.requests))
	}
	req := completer.requests[0]
	if req.Model != "gpt-3.5-turbo" || req.Temperature != 0 || len(req.Tools) != 0 {
		t.Errorf("request = %+v", req)
	}
	prompt := req.Messages[0].Content
	for _, want := range []string{"Who designed Go?", "Go is a language designed at Google.", NoQuickAnswer} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestService_FastSearchFailure(t *testing.T) {
	completer := &fakeCompleter{}
	svc := NewService(completer, &fakeSearcher{err: errors.New("offline")}, DefaultConfig(), nil)

	_, err := svc.Answer(context.Background(), models.ModeFast, "q")
	if err == nil || !strings.Contains(err.Error(), "offline") {
		t.Fatalf("Answer() error = %v", err)
	}
	if len(completer.requests) != 0 {
		t.Error("completion should not run after a failed search")
	}
}

func TestService_Thinking(t *testing.T) {
	completer := &fakeCompleter{replies: []*Completion{
		{ToolCalls: []ToolCall{{ID: "call_1", Name: SearchToolName, Arguments: `{"query":"Go language"}`}}},
		{Content: "Go is a language from Google."},
	}}
	search := &fakeSearcher{result: "Page: Go\nSummary: ..."}
	svc := NewService(completer, search, DefaultConfig(), nil)

	got, err := svc.Answer(context.Background(), models.ModeThinking, "Tell me about Go")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if got != "Go is a language from Google." {
		t.Errorf("Answer() = %q", got)
	}

	if len(search.queries) != 1 || search.queries[0] != "Go language" {
		t.Errorf("search queries = %v", search.queries)
	}
	if len(completer.requests) != 2 {
		t.Fatalf("completions = %d, want 2", len(completer.requests))
	}

	first := completer.requests[0]
	if first.Model != "gpt-4o" || first.Temperature != 0.3 {
		t.Errorf("first request model = %s temp = %v", first.Model, first.Temperature)
	}
	if len(first.Tools) != 1 || first.Tools[0].Name != SearchToolName {
		t.Errorf("tools = %+v", first.Tools)
	}

	second := completer.requests[1].Messages
	if len(second) != 4 {
		t.Fatalf("second request has %d messages, want 4", len(second))
	}
	if second[2].Role != RoleAssistant || len(second[2].ToolCalls) != 1 {
		t.Errorf("assistant tool call message = %+v", second[2])
	}
	if second[3].Role != RoleTool || second[3].ToolCallID != "call_1" || second[3].Content != "Page: Go\nSummary: ..." {
		t.Errorf("tool result message = %+v", second[3])
	}
}

func TestService_ThinkingWithoutTools(t *testing.T) {
	completer := &fakeCompleter{replies: []*Completion{{Content: "4"}}}
	search := &fakeSearcher{}
	svc := NewService(completer, search, DefaultConfig(), nil)

	got, err := svc.Answer(context.Background(), models.ModeThinking, "2+2?")
	if err != nil || got != "4" {
		t.Fatalf("Answer() = %q, %v", got, err)
	}
	if len(search.queries) != 0 {
		t.Error("search should not run when the model answers directly")
	}
}

func TestService_ThinkingStepLimit(t *testing.T) {
	call := &Completion{ToolCalls: []ToolCall{{ID: "c", Name: SearchToolName, Arguments: `{"query":"loop"}`}}}
	completer := &fakeCompleter{replies: []*Completion{call, call, call}}
	cfg := DefaultConfig()
	cfg.MaxSteps = 3
	svc := NewService(completer, &fakeSearcher{result: "r"}, cfg, nil)

	got, err := svc.Answer(context.Background(), models.ModeThinking, "q")
	if err != nil {
		t.Fatal(err)
	}
	if got != StepLimitAnswer {
		t.Errorf("Answer() = %q, want step limit answer", got)
	}
	if len(completer.requests) != 3 {
		t.Errorf("completions = %d, want 3", len(completer.requests))
	}
}

func TestService_DefaultStepBudget(t *testing.T) {
	call := &Completion{ToolCalls: []ToolCall{{ID: "c", Name: SearchToolName, Arguments: `{"query":"loop"}`}}}
	replies := make([]*Completion, 0, DefaultMaxSteps+1)
	for i := 0; i < DefaultMaxSteps+1; i++ {
		replies = append(replies, call)
	}
	completer := &fakeCompleter{replies: replies}
	cfg := DefaultConfig()
	cfg.MaxSteps = 0
	svc := NewService(completer, &fakeSearcher{result: "r"}, cfg, nil)

	got, err := svc.Answer(context.Background(), models.ModeThinking, "q")
	if err != nil {
		t.Fatal(err)
	}
	if got != StepLimitAnswer {
		t.Errorf("Answer() = %q, want step limit answer", got)
	}
	if len(completer.requests) != 15 {
		t.Errorf("completions = %d, want 15", len(completer.requests))
	}
}

func TestService_RunTools(t *testing.T) {
	tests := []struct {
		name   string
		call   ToolCall
		search *fakeSearcher
		want   string
	}{
		{"unknown tool", ToolCall{Name: "calculator"}, &fakeSearcher{}, "Unknown tool: calculator"},
		{"missing query", ToolCall{Name: SearchToolName, Arguments: `{}`}, &fakeSearcher{}, "Missing required argument: query"},
		{"bad JSON", ToolCall{Name: SearchToolName, Arguments: `not json`}, &fakeSearcher{}, "Missing required argument: query"},
		{"search error", ToolCall{Name: SearchToolName, Arguments: `{"query":"x"}`}, &fakeSearcher{err: errors.New("down")}, "Search failed: down"},
		{"ok", ToolCall{Name: SearchToolName, Arguments: `{"query":"x"}`}, &fakeSearcher{result: "found"}, "found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&fakeCompleter{}, tt.search, DefaultConfig(), nil)
			got := svc.runTools(context.Background(), []ToolCall{tt.call})
			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("runTools() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestService_RunToolsKeepsCallOrder(t *testing.T) {
	search := &fakeSearcher{result: "r", echo: true}
	svc := NewService(&fakeCompleter{}, search, DefaultConfig(), nil)

	calls := []ToolCall{
		{ID: "a", Name: SearchToolName, Arguments: `{"query":"one"}`},
		{ID: "b", Name: SearchToolName, Arguments: `{"query":"two"}`},
		{ID: "c", Name: SearchToolName, Arguments: `{"query":"three"}`},
	}
	got := svc.runTools(context.Background(), calls)

	want := []string{"r one", "r two", "r three"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("runTools()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestService_ToolDefinitions(t *testing.T) {
	svc := NewService(&fakeCompleter{}, &fakeSearcher{}, DefaultConfig(), nil)
	defs := svc.toolDefinitions()
	if len(defs) != 1 || defs[0].Name != SearchToolName {
		t.Fatalf("toolDefinitions() = %+v", defs)
	}
	if defs[0].Parameters["type"] != "object" {
		t.Errorf("parameters = %v", defs[0].Parameters)
	}
}

func TestService_InvalidMode(t *testing.T) {
	svc := NewService(&fakeCompleter{}, &fakeSearcher{}, DefaultConfig(), nil)
	if _, err := svc.Answer(context.Background(), "slow", "q"); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("Answer() error = %v, want ErrInvalidMode", err)
	}
}

func TestService_CompleterError(t *testing.T) {
	svc := NewService(&fakeCompleter{err: errors.New("rate limited")}, &fakeSearcher{result: "r"}, DefaultConfig(), nil)
	for _, mode := range models.AllModes() {
		if _, err := svc.Answer(context.Background(), mode, "q"); err == nil {
			t.Errorf("%s: expected error", mode)
		}
	}
}
