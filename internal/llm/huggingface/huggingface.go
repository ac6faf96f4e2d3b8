// Package huggingface implements the hosted text-generation wire dialect.
// The backend has no multi-turn chat endpoint, so the whole conversation is
// serialized into one instruction-formatted prompt string.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andreas2301/genericllmadapter/internal/core"
	"github.com/andreas2301/genericllmadapter/internal/llm"
)

// Client implements llm.Client for the HuggingFace Inference API.
type Client struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

// New creates a new text-generation client.
func New(baseURL, model, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, core.WrapError(core.ErrCredentialMissing, fmt.Errorf("provider huggingface"))
	}
	if baseURL == "" {
		baseURL = "https://api-inference.huggingface.co"
	}
	if model == "" {
		model = "mistralai/Mistral-7B-Instruct-v0.3"
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 2 * time.Minute, // hosted inference can queue cold models
		},
	}, nil
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "huggingface"
}

type generateRequest struct {
	Inputs string `json:"inputs"`
}

type generation struct {
	GeneratedText string `json:"generated_text"`
}

// Generate serializes the conversation into one prompt, performs a single
// POST and normalizes the first generation of the response.
func (c *Client) Generate(ctx context.Context, messages []llm.Message) (*llm.Reply, error) {
	prompt := BuildPrompt(messages)
	if prompt == "" {
		return nil, core.ErrLLMEmptyPrompt
	}

	body, err := json.Marshal(generateRequest{Inputs: prompt})
	if err != nil {
		return nil, core.WrapError(core.ErrLLMTransport, fmt.Errorf("marshaling request: %w", err))
	}

	url := fmt.Sprintf("%s/models/%s", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, core.WrapError(core.ErrLLMTransport, fmt.Errorf("creating request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, core.WrapError(core.ErrLLMTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.WrapError(core.ErrLLMTransport, fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, core.WrapError(core.ErrLLMUpstreamStatus,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))))
	}

	var generations []generation
	if err := json.Unmarshal(raw, &generations); err != nil {
		return nil, core.WrapError(core.ErrLLMBadResponse, err)
	}
	if len(generations) == 0 {
		return nil, core.WrapError(core.ErrLLMBadResponse,
			fmt.Errorf("expected non-empty array of generations"))
	}

	text := generations[0].GeneratedText
	if text == "" {
		return nil, core.WrapError(core.ErrLLMEmptyResponse,
			fmt.Errorf("no generated_text in response"))
	}

	return &llm.Reply{Text: stripPromptEcho(text, prompt)}, nil
}

// BuildPrompt serializes the turn sequence using the instruct delimiters the
// model was trained on: each user turn is wrapped in [INST]...[/INST], each
// assistant turn is closed with </s> and a fresh <s> opens any turns that
// follow. Returns "" for an empty turn list.
func BuildPrompt(messages []llm.Message) string {
	if len(messages) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("<s>")
	for i, m := range messages {
		if llm.NormalizeRole(m.Role) == llm.RoleUser {
			sb.WriteString("[INST] ")
			sb.WriteString(m.Text())
			sb.WriteString(" [/INST]")
		} else {
			sb.WriteString(" ")
			sb.WriteString(m.Text())
			sb.WriteString(" </s>")
			if i < len(messages)-1 {
				sb.WriteString("<s>")
			}
		}
	}
	return sb.String()
}

// stripPromptEcho removes the prompt prefix some text-generation models echo
// back. The exact-prefix match is brittle to upstream formatting drift, which
// is why it lives in its own function.
func stripPromptEcho(text, prompt string) string {
	if strings.HasPrefix(text, prompt) {
		return strings.TrimSpace(strings.TrimPrefix(text, prompt))
	}
	return text
}
