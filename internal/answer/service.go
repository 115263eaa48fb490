package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/diogo/wikichat/internal/models"
	"github.com/diogo/wikichat/internal/wiki"
	"github.com/diogo/wikichat/pkg/toolexec"
)

// ErrInvalidMode is returned for a mode other than fast or thinking
var ErrInvalidMode = errors.New("invalid mode")

const (
	// NoQuickAnswer is what fast mode replies when the search results do not
	// contain the answer
	NoQuickAnswer = "I couldn't find a quick answer for that."

	// StepLimitAnswer is returned when the agent runs out of steps
	StepLimitAnswer = "Agent stopped due to iteration limit or time limit."

	// SearchToolName is the function name of the Wikipedia tool
	SearchToolName = "wikipedia_search"

	maxParallelTools = 4
)

const fastPromptTemplate = `You are a 'Fast Mode' AI assistant. Your job is to directly answer the user's question.
1. I will give you a user's question.
2. I will provide you with relevant search results from Wikipedia.
3. You must use *only* this information to answer the question as concisely as possible.
4. If the information is not in the search results, just say '` + NoQuickAnswer + `'

Question: %s
Wikipedia Results: %s

Your concise answer:`

const thinkingSystemPrompt = `You are a careful research assistant. Answer the user's question as accurately as you can.
You may call the ` + SearchToolName + ` tool, once, several times or not at all, whenever a question needs facts about people, places, companies, historical events or scientific concepts.
When you have enough information, reply with the final answer only.`

// DefaultMaxSteps is the thinking-mode step budget of a zero-shot ReAct agent
const DefaultMaxSteps = 15

// Config selects the models used by each mode
type Config struct {
	FastModel     string
	FastTemp      float64
	ThinkingModel string
	ThinkingTemp  float64
	// MaxSteps bounds the number of completions in thinking mode
	MaxSteps int
	// ToolTimeout bounds a single tool call
	ToolTimeout time.Duration
}

// DefaultConfig returns the default model selection
func DefaultConfig() Config {
	return Config{
		FastModel:     "gpt-3.5-turbo",
		FastTemp:      0,
		ThinkingModel: "gpt-4o",
		ThinkingTemp:  0.3,
		MaxSteps:      DefaultMaxSteps,
		ToolTimeout:   30 * time.Second,
	}
}

// Service answers chat messages
type Service struct {
	completer Completer
	search    wiki.Searcher
	tools     toolexec.Registry
	executor  toolexec.Executor
	cfg       Config
	logger    *zap.Logger
}

// NewService creates a Service
func NewService(completer Completer, search wiki.Searcher, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxSteps < 1 {
		cfg.MaxSteps = DefaultConfig().MaxSteps
	}
	if cfg.ToolTimeout <= 0 {
		cfg.ToolTimeout = DefaultConfig().ToolTimeout
	}

	tools := toolexec.NewRegistry(NewSearchTool(search))
	return &Service{
		completer: completer,
		search:    search,
		tools:     tools,
		executor: toolexec.NewExecutor(tools,
			toolexec.WithTimeout(cfg.ToolTimeout),
			toolexec.WithMaxConcurrent(maxParallelTools),
			toolexec.WithMiddleware(toolexec.LoggingMiddleware(logger)),
		),
		cfg:    cfg,
		logger: logger,
	}
}

// Answer answers question in the given mode
func (s *Service) Answer(ctx context.Context, mode models.Mode, question string) (string, error) {
	switch mode {
	case models.ModeFast:
		return s.answerFast(ctx, question)
	case models.ModeThinking:
		return s.answerThinking(ctx, question)
	default:
		return "", ErrInvalidMode
	}
}

// answerFast always searches first, then summarizes the results in one call
func (s *Service) answerFast(ctx context.Context, question string) (string, error) {
	results, err := s.search.Run(ctx, question)
	if err != nil {
		return "", fmt.Errorf("wikipedia search failed: %w", err)
	}

	resp, err := s.completer.Complete(ctx, CompletionRequest{
		Model:       s.cfg.FastModel,
		Temperature: s.cfg.FastTemp,
		Messages: []Message{
			{Role: RoleUser, Content: fmt.Sprintf(fastPromptTemplate, question, results)},
		},
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(resp.Content), nil
}

// answerThinking lets the model decide when to search, for at most MaxSteps
// completions
func (s *Service) answerThinking(ctx context.Context, question string) (string, error) {
	messages := []Message{
		{Role: RoleSystem, Content: thinkingSystemPrompt},
		{Role: RoleUser, Content: question},
	}

	for step := 0; step < s.cfg.MaxSteps; step++ {
		resp, err := s.completer.Complete(ctx, CompletionRequest{
			Model:       s.cfg.ThinkingModel,
			Temperature: s.cfg.ThinkingTemp,
			Messages:    messages,
			Tools:       s.toolDefinitions(),
		})
		if err != nil {
			return "", err
		}

		if len(resp.ToolCalls) == 0 {
			return strings.TrimSpace(resp.Content), nil
		}

		messages = append(messages, Message{
			Role:      RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		for i, content := range s.runTools(ctx, resp.ToolCalls) {
			messages = append(messages, Message{
				Role:       RoleTool,
				Content:    content,
				ToolCallID: resp.ToolCalls[i].ID,
			})
		}
	}

	s.logger.Warn("agent step limit reached", zap.Int("max_steps", s.cfg.MaxSteps))
	return StepLimitAnswer, nil
}

// toolDefinitions lists the registered tools in the form offered to the model
func (s *Service) toolDefinitions() []Tool {
	infos := s.tools.List()
	tools := make([]Tool, 0, len(infos))
	for _, info := range infos {
		tools = append(tools, Tool{
			Name:        info.Name,
			Description: info.Description,
			Parameters:  info.Parameters,
		})
	}
	return tools
}

// runTools executes the calls of one model turn concurrently. The returned
// contents are in call order; failures are reported back to the model as the
// tool's output.
func (s *Service) runTools(ctx context.Context, calls []ToolCall) []string {
	execs := make([]toolexec.Call, len(calls))
	for i, call := range calls {
		execs[i] = toolexec.Call{ToolName: call.Name, Input: toolexec.ParseInput(call.Arguments)}
	}

	results := s.executor.ExecuteMany(ctx, execs)
	contents := make([]string, len(results))
	for i, r := range results {
		switch {
		case r.Error == nil:
			contents[i] = r.Output.Text
		case toolexec.IsToolNotFound(r.Error):
			contents[i] = fmt.Sprintf("Unknown tool: %s", r.ToolName)
		default:
			contents[i] = fmt.Sprintf("Tool failed: %v", r.Error)
		}
	}
	return contents
}
