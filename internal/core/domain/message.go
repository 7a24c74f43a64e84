package domain

// Message roles in the agent transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one turn in the agent's conversation transcript.
// Messages are constructed fresh per turn, appended to the transcript,
// and never mutated after construction.
type Message struct {
	// Role is one of RoleUser, RoleAssistant, RoleTool.
	Role string

	// Content is the text content, empty for pure tool-result turns.
	Content string

	// ToolCalls are tool invocations requested by an assistant message.
	ToolCalls []ToolCall

	// ToolResults carry tool outputs back to the model in a tool message.
	ToolResults []ToolResult
}

// ToolCall is a single tool invocation requested by the model.
type ToolCall struct {
	// ID is the provider-assigned (or synthesised) call identifier.
	ID string

	// Name is the registered tool name.
	Name string

	// Arguments is the decoded argument mapping.
	Arguments map[string]any
}

// ToolResult carries the string payload a tool produced for one call.
type ToolResult struct {
	// ToolCallID references the ToolCall this result answers.
	ToolCallID string

	// Content is the opaque string payload, usually serialised JSON.
	Content string
}

// UserMessage constructs a user-role message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// ToolMessage packages tool results as a single tool-role message.
func ToolMessage(results []ToolResult) Message {
	return Message{Role: RoleTool, ToolResults: results}
}
