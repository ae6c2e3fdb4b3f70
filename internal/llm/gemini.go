package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	slot   Slot
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, slot Slot) (*GeminiClient, error) {
	if slot.APIKey == "" {
		return nil, configError(slot, "API key is not set", nil)
	}

	opts := []option.ClientOption{option.WithAPIKey(slot.APIKey)}
	if slot.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(slot.BaseURL))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, configError(slot, "failed to create Gemini client", err)
	}

	return &GeminiClient{
		client: client,
		slot:   slot,
	}, nil
}

// GenerateJSON generates JSON content from a system instruction and prompt
func (c *GeminiClient) GenerateJSON(ctx context.Context, system, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.slot.ModelName())
	model.SetTemperature(0.1) // Low temperature for consistent output
	model.ResponseMIMEType = "application/json"
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		if isContextError(err) {
			return "", err
		}
		return "", classifyGeminiError(c.slot, err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", &ProviderError{
			Provider: c.slot.Provider,
			Slot:     c.slot.Name,
			Kind:     KindTransient,
			Message:  "empty response",
			Cause:    err,
		}
	}

	// Clean any markdown code block wrappers
	return CleanJSONBlock(text), nil
}

// Name returns the provider and model
func (c *GeminiClient) Name() string {
	return string(ProviderGemini) + "/" + c.slot.ModelName()
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
