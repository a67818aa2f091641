package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"NewsSentry/internal/config"
	"NewsSentry/internal/ports"
)

// DeepSeekClient implements ports.CompletionClient against an
// OpenAI-compatible chat completions endpoint (DeepSeek-R1 style). It keeps
// no mutable state between calls and performs no retries; callers own the
// retry policy.
type DeepSeekClient struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ ports.CompletionClient = (*DeepSeekClient)(nil)

// NewDeepSeekClient builds a client from configuration.
func NewDeepSeekClient(cfg config.GatewayConfig) *DeepSeekClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &DeepSeekClient{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			// R1 models put chain-of-thought here; it is used only as a
			// last-resort fallback when content is empty.
			ReasoningContent string `json:"reasoning_content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends a single user prompt and returns the raw completion text.
func (c *DeepSeekClient) Complete(ctx context.Context, prompt string, opts ports.CompleteOptions) (string, error) {
	if c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("deepseek client misconfigured: %w", ports.ErrGatewayUnavailable)
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isClientTimeout(err) {
			return "", fmt.Errorf("completion request: %w", ports.ErrGatewayTimeout)
		}
		return "", fmt.Errorf("completion request: %v: %w", err, ports.ErrGatewayUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("gateway status %s: %s: %w",
			resp.Status, strings.TrimSpace(string(detail)), ports.ErrGatewayUnavailable)
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode completion: %v: %w", err, ports.ErrGatewayMalformed)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion: %w", ports.ErrGatewayMalformed)
	}

	message := decoded.Choices[0].Message
	text := message.Content
	if text == "" {
		text = message.ReasoningContent
	}
	if text == "" {
		return "", fmt.Errorf("empty completion: %w", ports.ErrGatewayMalformed)
	}
	return text, nil
}

func isClientTimeout(err error) bool {
	var timeoutErr interface{ Timeout() bool }
	return errors.As(err, &timeoutErr) && timeoutErr.Timeout()
}
