package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"hr-analytics/internal/llm"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.5-flash"

// Client completes prompts with the Gemini API.
type Client struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

// NewClient creates a Gemini completer. maxTokens caps each answer.
func NewClient(ctx context.Context, apiKey, model string, maxTokens int) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	return newClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}, model, maxTokens)
}

func newClient(ctx context.Context, cfg *genai.ClientConfig, model string, maxTokens int) (*Client, error) {
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	if maxTokens <= 0 {
		maxTokens = 400
	}
	return &Client{client: client, model: model, maxTokens: int32(maxTokens)}, nil
}

// Complete generates text for prompt in a single call. An answer without
// candidates becomes llm.NoResponse; an empty answer is returned as is.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		MaxOutputTokens: c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate model=%s: %w", c.model, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return llm.NoResponse, nil
	}
	return resp.Text(), nil
}

var _ llm.Completer = (*Client)(nil)
