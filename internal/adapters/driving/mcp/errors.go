// Package mcp provides an MCP (Model Context Protocol) server adapter for
// Paperlens. It exposes evidence retrieval over ingested papers to AI
// assistants like Claude.
package mcp

import "errors"

// ErrMissingRetrieveService is returned when the lexical retrieval service is not provided.
var ErrMissingRetrieveService = errors.New("mcp: retrieve service is required")
