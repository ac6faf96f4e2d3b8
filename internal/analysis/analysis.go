// Package analysis calls the external scoring service for a conversation
// turn. The collaborator is strictly best-effort: every failure maps to an
// absent result so turn delivery never depends on it.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Request is the payload sent to the scoring service.
type Request struct {
	SessionID string `json:"session_id"`
	Prompt    string `json:"prompt"`
	Response  string `json:"response"`
	PrevRole  string `json:"prev_role"`
}

// Response is the metrics payload returned by the scoring service.
type Response struct {
	Metrics       map[string]any `json:"metrics"`
	NewRole       string         `json:"new_role"`
	HistoryLength int            `json:"history_length"`
}

// Client is an HTTP client for the scoring service.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// New creates a scoring client. A zero timeout falls back to 10s.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Analyze scores one turn. The boolean reports whether a result is available;
// transport failures, non-2xx statuses and decode errors all return false.
func (c *Client) Analyze(ctx context.Context, req Request) (*Response, bool) {
	body, err := json.Marshal(req)
	if err != nil {
		c.logger.Debug("analysis request marshal failed", zap.Error(err))
		return nil, false
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, false
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Debug("analysis service unreachable", zap.Error(err))
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug("analysis service returned error status", zap.Int("status", resp.StatusCode))
		return nil, false
	}

	var result Response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.logger.Debug("decoding analysis response failed", zap.Error(err))
		return nil, false
	}

	return &result, true
}
