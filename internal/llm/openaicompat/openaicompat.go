// Package openaicompat implements the chat-completions wire dialect shared by
// OpenAI, DeepSeek and a locally hosted vLLM endpoint. The three differ only
// in base URL and model identifier.
package openaicompat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/andreas2301/genericllmadapter/internal/core"
	"github.com/andreas2301/genericllmadapter/internal/llm"
	"github.com/sashabaranov/go-openai"
)

// requestTimeout bounds the single outbound call so a hung upstream cannot
// hold a request slot indefinitely.
const requestTimeout = 2 * time.Minute

// Client implements llm.Client for OpenAI-compatible endpoints.
type Client struct {
	name   string
	model  string
	client *openai.Client
}

// New creates a chat-completions client for the given endpoint.
func New(name, baseURL, model, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, core.WrapError(core.ErrCredentialMissing, fmt.Errorf("provider %s", name))
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: requestTimeout}

	return &Client{
		name:   name,
		model:  model,
		client: openai.NewClientWithConfig(cfg),
	}, nil
}

// Name returns the provider name.
func (c *Client) Name() string {
	return c.name
}

// Generate sends the full message sequence as one chat-completions request.
// Exactly one outbound call is made; retries belong to the caller.
func (c *Client) Generate(ctx context.Context, messages []llm.Message) (*llm.Reply, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(messages)),
	}

	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		if llm.NormalizeRole(m.Role) == llm.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Text(),
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, classify(err)
	}

	if len(resp.Choices) == 0 {
		return nil, core.WrapError(core.ErrLLMEmptyResponse,
			fmt.Errorf("no choices in %s response", c.name))
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return nil, core.WrapError(core.ErrLLMEmptyResponse,
			fmt.Errorf("no content in %s response", c.name))
	}

	return &llm.Reply{Text: content}, nil
}

// classify maps SDK errors onto the provider error taxonomy: anything that
// carries an upstream HTTP status is an upstream fault, the rest is transport.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return core.WrapError(core.ErrLLMUpstreamStatus,
			fmt.Errorf("status %d: %s", apiErr.HTTPStatusCode, apiErr.Message))
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return core.WrapError(core.ErrLLMUpstreamStatus,
			fmt.Errorf("status %d: %v", reqErr.HTTPStatusCode, reqErr.Err))
	}

	return core.WrapError(core.ErrLLMTransport, err)
}
