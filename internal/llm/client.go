package llm

import (
	"context"
	"fmt"
)

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateJSON sends a system instruction and a user prompt and returns the model's JSON text
	GenerateJSON(ctx context.Context, system, prompt string) (string, error)
	// Name identifies the provider and model, e.g. "gemini/gemini-2.5-flash"
	Name() string
	// Close releases any resources held by the client
	Close() error
}

// ClientFactory creates a client for a slot
type ClientFactory func(ctx context.Context, slot Slot) (Client, error)

// NewClient creates a new LLM client for the slot's provider.
// A slot without an API key or with an unknown provider yields a configuration ProviderError.
func NewClient(ctx context.Context, slot Slot) (Client, error) {
	if slot.APIKey == "" {
		return nil, configError(slot, "API key is not set", nil)
	}

	switch slot.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, slot)
	case ProviderOpenRouter:
		return NewOpenRouterClient(slot)
	default:
		return nil, configError(slot, fmt.Sprintf("unsupported provider %q", slot.Provider), nil)
	}
}
