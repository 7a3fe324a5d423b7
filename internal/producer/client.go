// Package producer turns user requirements into scaffolding descriptors
// by calling an LLM backend. Clients for OpenAI-compatible endpoints,
// Anthropic, and Gemini all satisfy the same interface.
package producer

import (
	"context"
	"fmt"

	"codesmith/internal/config"
)

// LLMClient defines the interface for LLM providers.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// NewClient creates the client for the configured provider.
func NewClient(cfg *config.Config) (LLMClient, error) {
	switch cfg.LLM.Provider {
	case "openai":
		return NewOpenAIClientWithConfig(OpenAIConfig{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Timeout:     cfg.GetLLMTimeout(),
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
		}), nil
	case "anthropic":
		return NewAnthropicClientWithConfig(AnthropicConfig{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Timeout:     cfg.GetLLMTimeout(),
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
		}), nil
	case "gemini":
		return NewGeminiClient(GeminiConfig{
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
		})
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.LLM.Provider)
	}
}
