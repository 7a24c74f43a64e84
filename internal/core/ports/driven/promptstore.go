package driven

// Prompt names used with PromptStore.
const (
	// PromptChatSystem is the system prompt steering the chat agent.
	PromptChatSystem = "chat_system"
)

// PromptStore provides access to customisable prompt templates.
// Implementations load prompts from user-editable storage and fall
// back to embedded defaults.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads.
	Reload()
}
