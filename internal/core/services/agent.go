package services

import (
	"context"
	"fmt"

	"github.com/paperlens/paperlens-cli/internal/core/domain"
	"github.com/paperlens/paperlens-cli/internal/core/ports/driven"
	"github.com/paperlens/paperlens-cli/internal/core/ports/driving"
	"github.com/paperlens/paperlens-cli/internal/logger"
)

// Ensure AgentService implements the interface.
var _ driving.AgentService = (*AgentService)(nil)

// DefaultMaxIterations bounds model invocations per user query.
const DefaultMaxIterations = 10

// ExhaustedFallback is returned when the iteration budget runs out
// before the model produces any assistant message.
const ExhaustedFallback = "I was unable to complete the request within the iteration limit."

// AgentService runs the plan-act-observe loop: invoke the model, execute
// any tool calls it requests, feed the observations back, repeat.
type AgentService struct {
	model         driven.ChatModel
	tools         *ToolRegistry
	systemPrompt  string
	maxIterations int
}

// NewAgentService creates a new agent service.
func NewAgentService(model driven.ChatModel, tools *ToolRegistry, systemPrompt string) *AgentService {
	return &AgentService{
		model:         model,
		tools:         tools,
		systemPrompt:  systemPrompt,
		maxIterations: DefaultMaxIterations,
	}
}

// SetMaxIterations overrides the model invocation budget.
func (s *AgentService) SetMaxIterations(n int) {
	if n > 0 {
		s.maxIterations = n
	}
}

// Run answers one user query. The model is invoked at most
// maxIterations times; tool execution is never skipped when requested.
// When the budget runs out the last assistant message (or a synthesised
// fallback) is returned rather than an error.
func (s *AgentService) Run(ctx context.Context, userQuery string, callbacks driving.AgentCallbacks) (domain.Message, error) {
	transcript := []domain.Message{domain.UserMessage(userQuery)}
	var lastAssistant *domain.Message

	logger.Section("Agent")
	logger.Debug("Query: %q max iterations: %d", userQuery, s.maxIterations)

	for iter := 0; iter < s.maxIterations; iter++ {
		final, err := s.model.Stream(ctx, transcript, s.tools.Defs(), s.systemPrompt, callbacks.OnStream)
		if err != nil {
			return domain.Message{}, fmt.Errorf("agent: model call %d: %w", iter+1, err)
		}

		transcript = append(transcript, final)
		lastAssistant = &final

		// No tool calls means we have the final answer.
		if len(final.ToolCalls) == 0 {
			logger.Debug("Done after %d model calls", iter+1)
			return final, nil
		}

		// Execute tool calls in the order the model emitted them.
		results := make([]domain.ToolResult, 0, len(final.ToolCalls))
		for _, tc := range final.ToolCalls {
			logger.Debug("Tool call: %s", tc.Name)
			result := s.tools.Call(ctx, tc.Name, tc.Arguments)
			if callbacks.OnToolResult != nil {
				callbacks.OnToolResult(tc.Name, tc.Arguments, result)
			}
			results = append(results, domain.ToolResult{ToolCallID: tc.ID, Content: result})
		}
		transcript = append(transcript, domain.ToolMessage(results))
	}

	// Budget exhausted: return best effort, not an error.
	logger.Warn("Iteration budget exhausted after %d model calls", s.maxIterations)
	if lastAssistant != nil {
		return *lastAssistant, nil
	}
	return domain.Message{Role: domain.RoleAssistant, Content: ExhaustedFallback}, nil
}
