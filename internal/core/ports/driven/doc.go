// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - SpanStore: Persistence for extracted spans and document summaries
//   - VectorStore: Persistence for per-document embedding indexes
//   - Extractor: Turns PDF bytes into positioned spans
//
// # Optional Interfaces
//
// These are only needed for specific features:
//
//   - EmbeddingService: Generates vector embeddings (vectorise + semantic retrieval)
//   - ChatModel: Streaming generative backend for the agent loop
//   - WebSearcher: External web search exposed to the agent as a tool
//   - Catalog: Queryable registry of ingested documents
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
