package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenRouterClient implements Client for OpenRouter's OpenAI-compatible API
type OpenRouterClient struct {
	client *openai.Client
	slot   Slot
}

// NewOpenRouterClient creates a new OpenRouter client.
// slot.BaseURL overrides the OpenRouter endpoint, which also allows any
// OpenAI-compatible server.
func NewOpenRouterClient(slot Slot) (*OpenRouterClient, error) {
	if slot.APIKey == "" {
		return nil, configError(slot, "API key is not set", nil)
	}

	config := openai.DefaultConfig(slot.APIKey)
	config.BaseURL = DefaultOpenRouterBaseURL
	if slot.BaseURL != "" {
		config.BaseURL = strings.TrimRight(slot.BaseURL, "/")
	}

	return &OpenRouterClient{
		client: openai.NewClientWithConfig(config),
		slot:   slot,
	}, nil
}

// GenerateJSON generates JSON content from a system instruction and prompt
func (c *OpenRouterClient) GenerateJSON(ctx context.Context, system, prompt string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.slot.ModelName(),
		Messages:    messages,
		Temperature: 0.1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		if isContextError(err) {
			return "", err
		}
		return "", classifyOpenRouterError(c.slot, err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", &ProviderError{
			Provider: c.slot.Provider,
			Slot:     c.slot.Name,
			Kind:     KindTransient,
			Message:  "empty response",
			Cause:    fmt.Errorf("no choices in response"),
		}
	}

	// Clean any markdown code block wrappers
	return CleanJSONBlock(resp.Choices[0].Message.Content), nil
}

// Name returns the provider and model
func (c *OpenRouterClient) Name() string {
	return string(ProviderOpenRouter) + "/" + c.slot.ModelName()
}

// Close releases resources held by the client
func (c *OpenRouterClient) Close() error {
	return nil
}
