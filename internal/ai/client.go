package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ravgen/rav-api/pkg/config"
)

// ErrMalformedReply marks a completion that could not be parsed as the
// requested JSON shape. Callers must treat it as fatal: no fallback
// content is substituted for a failed structured call.
var ErrMalformedReply = errors.New("model reply is not valid JSON")

// ErrEmptyReply marks a completion with no usable content.
var ErrEmptyReply = errors.New("model returned no content")

// Client wraps an OpenAI-compatible chat completion API. The model is
// a black box: one system instruction plus one user message in, one
// free-text completion out, no streaming, no multi-turn.
type Client struct {
	api     *openai.Client
	model   string
	observe func(operation string, duration time.Duration)
}

// New creates a client against the configured gateway.
func New(cfg config.AIConfig) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		apiCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		api:   openai.NewClientWithConfig(apiCfg),
		model: cfg.Model,
	}
}

// SetObserver installs a latency callback invoked after every chat
// call, successful or not.
func (c *Client) SetObserver(fn func(operation string, duration time.Duration)) {
	c.observe = fn
}

// Complete performs a single chat completion and returns the raw text.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if c.observe != nil {
		c.observe("chat_completion", time.Since(start))
	}
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyReply
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyReply
	}
	return content, nil
}

// CompleteJSON performs a completion whose reply is expected to be a
// JSON object, strips any Markdown code-fence wrapping, and decodes it
// into dest. The raw reply is returned for auditing even on failure.
func (c *Client) CompleteJSON(ctx context.Context, system, user string, dest interface{}) (string, error) {
	raw, err := c.Complete(ctx, system, user)
	if err != nil {
		return raw, err
	}
	cleaned := StripCodeFence(raw)
	if err := json.Unmarshal([]byte(cleaned), dest); err != nil {
		return raw, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	return raw, nil
}

// StripCodeFence removes a leading ```json / ``` fence and its closing
// fence. Models frequently wrap requested JSON this way even when told
// not to.
func StripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
