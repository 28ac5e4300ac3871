package agent

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

const assistantSystemPrompt = "You are a pro shopping assistant. Be concise and practical: " +
	"at most 3-4 key recommendations, each in 1-2 short sentences. No long essays."

// LLMClient wraps an OpenAI-compatible chat completion endpoint. With a
// custom base URL it talks to a local model just as happily as to the
// hosted API.
type LLMClient struct {
	client openai.Client
	model  string
}

// NewLLMClient builds the client. baseURL may be empty for the default
// hosted endpoint.
func NewLLMClient(apiKey, baseURL, model string) *LLMClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(opts...)
	return &LLMClient{client: client, model: model}
}

// Complete sends the rendered prompt and returns the model's reply.
func (c *LLMClient) Complete(ctx context.Context, prompt string) (string, error) {
	response, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(assistantSystemPrompt),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.4),
		MaxTokens:   openai.Int(800),
	})
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}
	return response.Choices[0].Message.Content, nil
}
