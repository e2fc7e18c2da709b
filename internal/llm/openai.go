package llm

import (
	"context"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI calls an OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	client   *openai.Client
	model    string
	settings Settings
}

// NewOpenAI creates a new OpenAI client. An empty baseURL uses the official API.
func NewOpenAI(apiKey, baseURL, model string, settings Settings) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: settings.Timeout}

	return &OpenAI{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		settings: settings,
	}
}

// Complete sends a single user message and returns the first choice.
func (o *OpenAI) Complete(ctx context.Context, prompt string) (*Response, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: float32(o.settings.Temperature),
		MaxTokens:   o.settings.MaxTokens,
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai api: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai api: no choices returned")
	}

	return &Response{
		Content:    resp.Choices[0].Message.Content,
		Provider:   "openai",
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}
