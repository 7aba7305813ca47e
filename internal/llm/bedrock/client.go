package bedrock

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"hr-analytics/internal/llm"
)

// DefaultModelID is the text-completion model used for resume summaries.
const DefaultModelID = "anthropic.claude-v2:1"

type invokeAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Client sends text-completion prompts to a Bedrock model.
type Client struct {
	api       invokeAPI
	modelID   string
	maxTokens int
}

// NewClient builds a Bedrock completer from an AWS config.
func NewClient(cfg aws.Config, modelID string, maxTokens int) *Client {
	return newClient(bedrockruntime.NewFromConfig(cfg), modelID, maxTokens)
}

func newClient(api invokeAPI, modelID string, maxTokens int) *Client {
	if modelID == "" {
		modelID = DefaultModelID
	}
	if maxTokens <= 0 {
		maxTokens = 400
	}
	return &Client{api: api, modelID: modelID, maxTokens: maxTokens}
}

type completionRequest struct {
	Prompt            string `json:"prompt"`
	MaxTokensToSample int    `json:"max_tokens_to_sample"`
}

type completionResponse struct {
	Completion *string `json:"completion"`
}

// Complete invokes the model once with prompt and returns the raw completion text.
// An empty completion is returned as is; a missing one becomes llm.NoResponse.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(completionRequest{Prompt: prompt, MaxTokensToSample: c.maxTokens})
	if err != nil {
		return "", fmt.Errorf("encode bedrock request: %w", err)
	}
	out, err := c.api.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("bedrock invoke model=%s: %w", c.modelID, err)
	}
	var parsed completionResponse
	if err := json.Unmarshal(out.Body, &parsed); err != nil {
		return "", fmt.Errorf("bedrock response parse: %w", err)
	}
	if parsed.Completion == nil {
		return llm.NoResponse, nil
	}
	return *parsed.Completion, nil
}

var _ llm.Completer = (*Client)(nil)
