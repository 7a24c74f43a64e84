// Package tui provides the interactive chat terminal interface for
// Paperlens. It implements a driving adapter following hexagonal
// architecture principles.
package tui

import (
	"github.com/paperlens/paperlens-cli/internal/core/ports/driving"
)

// Ports aggregates everything the chat TUI needs.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Agent answers questions about the selected paper.
	Agent driving.AgentService

	// DocTitle is shown in the status bar.
	DocTitle string

	// ModelName is shown in the status bar.
	ModelName string
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Agent == nil {
		return ErrMissingAgentService
	}
	return nil
}
