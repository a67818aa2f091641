package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"NewsSentry/internal/config"
	"NewsSentry/internal/ports"
)

// AnthropicClient implements ports.CompletionClient on the Anthropic
// Messages API, for deployments pointing the pipeline at Claude instead of
// an OpenAI-compatible endpoint.
type AnthropicClient struct {
	client *anthropic.Client
	model  anthropic.Model
}

var _ ports.CompletionClient = (*AnthropicClient)(nil)

// NewAnthropicClient builds a client from configuration. An empty model
// falls back to Haiku.
func NewAnthropicClient(cfg config.GatewayConfig) *AnthropicClient {
	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	model := anthropic.Model(cfg.Model)
	if cfg.Model == "" {
		model = anthropic.Model("claude-haiku-4-5")
	}
	return &AnthropicClient{client: &client, model: model}
}

// Complete sends a single user prompt and returns the raw completion text.
func (c *AnthropicClient) Complete(ctx context.Context, prompt string, opts ports.CompleteOptions) (string, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if opts.Temperature > 0 {
		params.Temperature = anthropic.Float(opts.Temperature)
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic completion: %v: %w", err, ports.ErrGatewayUnavailable)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("empty anthropic completion: %w", ports.ErrGatewayMalformed)
	}
	return resp.Content[0].Text, nil
}
