package driven

import (
	"context"

	"github.com/paperlens/paperlens-cli/internal/core/domain"
)

// Stream event kinds emitted by a ChatModel during one invocation.
const (
	EventTextDelta     = "text_delta"
	EventToolCallStart = "tool_call_start"
	EventToolCallDelta = "tool_call_delta"
	EventToolCallDone  = "tool_call_done"
	EventMessageDone   = "message_done"
)

// StreamEvent is one element of a model's streamed output.
// Exactly one of the payload fields is set depending on Kind.
type StreamEvent struct {
	// Kind is one of the Event* constants.
	Kind string

	// Text carries the fragment for text_delta, the tool name for
	// tool_call_start and the partial argument JSON for tool_call_delta.
	Text string

	// ToolCall is the completed call for tool_call_done.
	ToolCall *domain.ToolCall

	// Message is the final assembled message for message_done.
	Message *domain.Message
}

// StreamHandler receives events in emission order. Handlers are a pure
// side channel: they must not alter control flow and are never invoked
// concurrently within one model call.
type StreamHandler func(event StreamEvent)

// ToolDef is the schema handed to the model's function-calling interface.
type ToolDef struct {
	// Name is the tool name the model uses to invoke it.
	Name string `json:"name"`

	// Description tells the model what the tool does.
	Description string `json:"description"`

	// Parameters is a JSON-Schema-shaped object describing arguments.
	Parameters map[string]any `json:"parameters"`
}

// ChatModel is the streaming generative backend behind the agent loop.
// Each provider implements this interface and owns its own wire-format
// translation, so the loop never branches on provider identity.
type ChatModel interface {
	// Stream invokes the model with the full transcript, tool schemas
	// and system prompt. Events are delivered to onEvent in emission
	// order; the completed assistant message is returned (and also
	// emitted as a message_done event).
	Stream(ctx context.Context, messages []domain.Message, tools []ToolDef, system string, onEvent StreamHandler) (domain.Message, error)

	// ModelName returns the model identifier in use.
	ModelName() string
}
