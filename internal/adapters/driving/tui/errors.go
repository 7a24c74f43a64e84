package tui

import "errors"

// ErrMissingAgentService is returned when no agent is provided.
var ErrMissingAgentService = errors.New("tui: agent service is required")
