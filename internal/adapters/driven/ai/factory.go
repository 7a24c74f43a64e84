// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/paperlens/paperlens-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/paperlens/paperlens-cli/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/paperlens/paperlens-cli/internal/adapters/driven/llm/anthropic"
	openaillm "github.com/paperlens/paperlens-cli/internal/adapters/driven/llm/openai"
	"github.com/paperlens/paperlens-cli/internal/core/domain"
	"github.com/paperlens/paperlens-cli/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// pinger is implemented by adapters that can validate connectivity.
type pinger interface {
	Ping(ctx context.Context) error
}

// CreateChatModel creates the appropriate chat model based on settings.
func CreateChatModel(settings domain.LLMSettings) (driven.ChatModel, error) {
	switch settings.Provider {
	case domain.AIProviderAnthropic:
		return anthropicllm.NewChatModel(anthropicllm.Config{
			APIKey:      settings.APIKey,
			BaseURL:     settings.BaseURL,
			Model:       settings.Model,
			Temperature: settings.Temperature,
		})

	case domain.AIProviderOpenAI:
		return openaillm.NewChatModel(openaillm.Config{
			APIKey:      settings.APIKey,
			BaseURL:     settings.BaseURL,
			Model:       settings.Model,
			Temperature: settings.Temperature,
		})

	default:
		return nil, fmt.Errorf("chat provider %q: %w", settings.Provider, domain.ErrUnsupportedProvider)
	}
}

// CreateAndValidateChatModel creates a chat model and validates
// connectivity before handing it over.
func CreateAndValidateChatModel(settings domain.LLMSettings) (driven.ChatModel, error) {
	model, err := CreateChatModel(settings)
	if err != nil {
		return nil, err
	}

	if p, ok := model.(pinger); ok {
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			return nil, fmt.Errorf("chat provider unreachable: %w", err)
		}
	}

	return model, nil
}

// CreateEmbeddingService creates the appropriate embedding service based
// on settings.
func CreateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		// Anthropic does not offer an embeddings API.
		return nil, fmt.Errorf("embedding provider %q: %w", settings.Provider, domain.ErrUnsupportedProvider)

	default:
		return nil, fmt.Errorf("embedding provider %q: %w", settings.Provider, domain.ErrUnsupportedProvider)
	}
}

// CreateAndValidateEmbeddingService creates an embedding service and
// validates connectivity before handing it over.
func CreateAndValidateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("embedding provider unreachable: %w", err)
	}

	return svc, nil
}
