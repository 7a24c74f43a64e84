// Paperlens is a CLI for extracting positioned evidence spans from PDF
// papers, searching them lexically and semantically, and chatting with
// an agent that cites specific passages.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/paperlens/paperlens-cli/internal/adapters/driven/ai"
	configfile "github.com/paperlens/paperlens-cli/internal/adapters/driven/config/file"
	"github.com/paperlens/paperlens-cli/internal/adapters/driven/extract/blocks"
	anthropicllm "github.com/paperlens/paperlens-cli/internal/adapters/driven/llm/anthropic"
	openaillm "github.com/paperlens/paperlens-cli/internal/adapters/driven/llm/openai"
	storagefile "github.com/paperlens/paperlens-cli/internal/adapters/driven/storage/file"
	"github.com/paperlens/paperlens-cli/internal/adapters/driven/storage/sqlite"
	"github.com/paperlens/paperlens-cli/internal/adapters/driven/websearch/tavily"
	"github.com/paperlens/paperlens-cli/internal/adapters/driving/cli"
	"github.com/paperlens/paperlens-cli/internal/core/domain"
	"github.com/paperlens/paperlens-cli/internal/core/ports/driven"
	"github.com/paperlens/paperlens-cli/internal/core/ports/driving"
	"github.com/paperlens/paperlens-cli/internal/core/services"
	"github.com/paperlens/paperlens-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "0.1.0"

func main() {
	// Best effort; a missing .env file is not an error.
	_ = godotenv.Load()

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := configfile.NewConfigStore(os.Getenv("PAPERLENS_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("opening config store: %w", err)
	}

	promptStore, err := configfile.NewPromptStore(os.Getenv("PAPERLENS_PROMPT_DIR"))
	if err != nil {
		return fmt.Errorf("opening prompt store: %w", err)
	}

	dataDir := os.Getenv("PAPERLENS_DATA_DIR")

	spanStore, err := storagefile.NewSpanStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening span store: %w", err)
	}

	vectorStore, err := storagefile.NewVectorStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening vector store: %w", err)
	}

	catalog, err := sqlite.NewCatalog(dataDir)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}
	defer catalog.Close()

	cli.Configure(&cli.Services{
		Ingest:      services.NewIngestService(blocks.NewExtractor(), spanStore, catalog),
		Retrieve:    services.NewRetrieveService(spanStore),
		Catalog:     catalog,
		Spans:       spanStore,
		Config:      configStore,
		Prompts:     promptStore,
		NewSemantic: semanticFactory(configStore, spanStore, vectorStore),
		NewAgent:    agentFactory(configStore, promptStore, spanStore, vectorStore),
	})

	cli.Execute(version)
	return nil
}

// semanticFactory builds the embedder-backed semantic service lazily,
// so commands that never touch embeddings do not need credentials.
func semanticFactory(config driven.ConfigStore, spans driven.SpanStore, vectors driven.VectorStore) cli.SemanticFactory {
	return func(_ context.Context) (cli.SemanticBackend, error) {
		embedder, err := ai.CreateAndValidateEmbeddingService(embeddingSettings(config))
		if err != nil {
			return nil, err
		}
		return services.NewSemanticService(spans, vectors, embedder), nil
	}
}

// agentFactory wires the chat model, tool registry and system prompt
// for one document. Flag overrides win over configured defaults.
func agentFactory(config driven.ConfigStore, prompts driven.PromptStore, spans driven.SpanStore, vectors driven.VectorStore) cli.AgentFactory {
	return func(_ context.Context, docID, provider, model string) (driving.AgentService, string, error) {
		settings := llmSettings(config)
		if provider != "" {
			settings.Provider = domain.AIProvider(provider)
			settings.APIKey = apiKeyFor(settings.Provider, config)
		}
		if model != "" {
			settings.Model = model
		}

		chatModel, err := ai.CreateAndValidateChatModel(settings)
		if err != nil {
			return nil, "", err
		}

		registry := services.NewToolRegistry()

		embedder, err := ai.CreateAndValidateEmbeddingService(embeddingSettings(config))
		if err != nil {
			return nil, "", fmt.Errorf("embedding provider (needed for rag_retrieve): %w", err)
		}
		semantic := services.NewSemanticService(spans, vectors, embedder)

		def, fn := services.NewRetrieveTool(docID, semantic)
		registry.Register(def.Name, def.Description, def.Parameters, fn)

		if key := webSearchSettings(config); key.IsConfigured() {
			searcher, err := tavily.NewClient(tavily.Config{APIKey: key.APIKey})
			if err != nil {
				return nil, "", fmt.Errorf("web search client: %w", err)
			}
			def, fn := services.NewWebSearchTool(searcher)
			registry.Register(def.Name, def.Description, def.Parameters, fn)
		} else {
			logger.Debug("TAVILY_API_KEY not set, web search tool disabled")
		}

		systemPrompt, err := prompts.Load(driven.PromptChatSystem)
		if err != nil {
			return nil, "", fmt.Errorf("loading system prompt: %w", err)
		}

		return services.NewAgentService(chatModel, registry, systemPrompt), resolvedModelName(settings), nil
	}
}

// llmSettings resolves chat model settings from config with
// environment overrides for credentials.
func llmSettings(config driven.ConfigStore) domain.LLMSettings {
	provider := domain.AIProvider(config.GetString("llm.provider"))
	if provider == "" {
		provider = domain.AIProviderAnthropic
	}

	settings := domain.LLMSettings{
		Provider: provider,
		Model:    config.GetString("llm.model"),
		BaseURL:  config.GetString("llm.base_url"),
		APIKey:   apiKeyFor(provider, config),
	}
	if raw, ok := config.Get("llm.temperature"); ok {
		if t, ok := raw.(float64); ok {
			settings.Temperature = t
		}
	}
	return settings
}

// embeddingSettings resolves embedding settings from config with
// environment overrides for credentials. Ollama is the default so
// vectorize works out of the box without any API key.
func embeddingSettings(config driven.ConfigStore) domain.EmbeddingSettings {
	provider := domain.AIProvider(config.GetString("embedding.provider"))
	if provider == "" {
		provider = domain.AIProviderOllama
	}

	return domain.EmbeddingSettings{
		Provider: provider,
		Model:    config.GetString("embedding.model"),
		BaseURL:  config.GetString("embedding.base_url"),
		APIKey:   apiKeyFor(provider, config),
	}
}

// webSearchSettings resolves the Tavily key: environment first, then config.
func webSearchSettings(config driven.ConfigStore) domain.WebSearchSettings {
	key := os.Getenv("TAVILY_API_KEY")
	if key == "" {
		key = config.GetString("websearch.api_key")
	}
	return domain.WebSearchSettings{APIKey: key}
}

// apiKeyFor returns the credential for a provider: environment first,
// then config.
func apiKeyFor(provider domain.AIProvider, config driven.ConfigStore) string {
	switch provider {
	case domain.AIProviderAnthropic:
		if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
			return key
		}
		return config.GetString("llm.api_key")
	case domain.AIProviderOpenAI:
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			return key
		}
		return config.GetString("llm.api_key")
	default:
		return ""
	}
}

// resolvedModelName reports the model the adapter will actually use,
// including provider defaults.
func resolvedModelName(settings domain.LLMSettings) string {
	if settings.Model != "" {
		return settings.Model
	}
	switch settings.Provider {
	case domain.AIProviderAnthropic:
		return anthropicllm.DefaultModel
	case domain.AIProviderOpenAI:
		return openaillm.DefaultModel
	}
	return settings.Provider.String()
}
