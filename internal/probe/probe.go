// Package probe implements the best-effort reachability check for the
// locally hosted backend. Results only annotate provider listings.
package probe

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Prober checks whether the local vLLM endpoint is serving.
type Prober struct {
	baseURL string
	client  *http.Client
}

// New creates a prober for the given base URL (the /v1 API root).
func New(baseURL string) *Prober {
	return &Prober{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 2 * time.Second, // listings must not hang on a dead backend
		},
	}
}

// IsReachable performs one GET against the models listing endpoint. Any
// failure (timeout, refused connection, non-2xx) maps to false; errors never
// propagate.
func (p *Prober) IsReachable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/models", nil)
	if err != nil {
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
