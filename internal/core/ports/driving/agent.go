package driving

import (
	"context"

	"github.com/paperlens/paperlens-cli/internal/core/domain"
	"github.com/paperlens/paperlens-cli/internal/core/ports/driven"
)

// AgentCallbacks are optional side channels for UI and telemetry.
// They are invoked synchronously in emission order and must not alter
// control flow.
type AgentCallbacks struct {
	// OnStream receives every model stream event.
	OnStream driven.StreamHandler

	// OnToolResult fires once per executed tool call, before the result
	// is fed back to the model.
	OnToolResult func(toolName string, arguments map[string]any, result string)
}

// AgentService drives the plan-act-observe loop over a chat model and
// the tool registry.
type AgentService interface {
	// Run answers one user query. It makes at most the configured
	// maximum number of model invocations; when the budget runs out it
	// returns the last assistant message produced (or a synthesised
	// fallback), never an error.
	Run(ctx context.Context, userQuery string, callbacks AgentCallbacks) (domain.Message, error)
}
