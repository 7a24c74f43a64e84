// Package services implements the driving port interfaces.
// Services contain the core business logic: ingestion, lexical and
// semantic retrieval, index building, the tool registry, the agent
// loop and the ingestion quality evaluator. They orchestrate calls to
// driven ports (adapters).
package services
