package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// DefaultCompletionModel is used when no generative model is configured.
const DefaultCompletionModel = "gpt-4o-mini"

// CompletionClient runs single-prompt chat completions.
type CompletionClient struct {
	Model string
	model llms.Model
}

// NewCompletionClient creates a chat completion client. An empty model selects DefaultCompletionModel.
func NewCompletionClient(baseURL, apiKey, model string) (*CompletionClient, error) {
	if model == "" {
		model = DefaultCompletionModel
	}
	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}
	return &CompletionClient{Model: model, model: client}, nil
}

// Complete sends prompt as a single user message and returns the reply text.
func (c *CompletionClient) Complete(ctx context.Context, prompt string) (string, error) {
	answer, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt, llms.WithTemperature(0))
	if err != nil {
		return "", fmt.Errorf("failed to complete prompt: %w", err)
	}
	return answer, nil
}
