// Package domain defines the core business entities for Paperlens.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Span: A positioned, classified fragment of extracted PDF text
//   - Evidence: A scored span returned from a retrieval operation
//   - Message: A turn in the agent's conversation transcript
//   - ToolCall / ToolResult: The agent's tool invocation records
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
