// Package messages defines Bubbletea message types for the chat TUI.
// Messages represent events that flow through the Elm architecture.
package messages

import (
	"github.com/paperlens/paperlens-cli/internal/core/domain"
	"github.com/paperlens/paperlens-cli/internal/core/ports/driven"
)

// QuestionSubmitted is sent when the user sends a question.
type QuestionSubmitted struct {
	Question string
}

// StreamEventReceived carries one model stream event into the update loop.
type StreamEventReceived struct {
	Event driven.StreamEvent
}

// ToolExecuted signals the agent ran a tool and got a result back.
type ToolExecuted struct {
	ToolName string
}

// AgentCompleted carries the agent's final answer.
type AgentCompleted struct {
	Message domain.Message
}

// AgentFailed signals the agent run errored out.
type AgentFailed struct {
	Err error
}
