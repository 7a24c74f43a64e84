package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested document does not exist.
	// "Missing document" and "document with zero spans on a page" are
	// different outcomes; the latter is an empty result, not an error.
	ErrNotFound = errors.New("not found")

	// ErrEmbeddingsMissing indicates the document is ingested but has no
	// embedding index. Callers should run vectorisation, not ingestion.
	ErrEmbeddingsMissing = errors.New("embeddings missing")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedProvider indicates an unknown chat model provider.
	// Raised at configuration time, before any agent turn executes.
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrMissingCredential indicates a provider API key is not configured.
	// Raised at configuration time, before any agent turn executes.
	ErrMissingCredential = errors.New("missing credential")

	// ErrToolNotFound indicates a tool name is not registered. The tool
	// registry converts this into a structured error payload for the
	// model rather than surfacing it to callers.
	ErrToolNotFound = errors.New("tool not found")
)
