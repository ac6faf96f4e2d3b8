package api

import (
	"context"
	"net/http"

	"github.com/andreas2301/genericllmadapter/internal/api/response"
	"github.com/andreas2301/genericllmadapter/internal/llm/factory"
)

// Prober checks local backend reachability for provider listings.
type Prober interface {
	IsReachable(ctx context.Context) bool
}

// ProvidersHandler handles provider listing requests.
type ProvidersHandler struct {
	prober Prober
}

// NewProvidersHandler creates a new providers handler.
func NewProvidersHandler(prober Prober) *ProvidersHandler {
	return &ProvidersHandler{prober: prober}
}

// ProviderInfo describes one supported provider. Available is only set for
// the locally hosted backend, where it reflects the liveness probe.
type ProviderInfo struct {
	Name               string `json:"name"`
	RequiresCredential bool   `json:"requires_credential"`
	Available          *bool  `json:"available,omitempty"`
}

// List returns the supported providers with local backend liveness.
func (h *ProvidersHandler) List(w http.ResponseWriter, r *http.Request) {
	providers := factory.Providers()
	infos := make([]ProviderInfo, 0, len(providers))

	for _, p := range providers {
		info := ProviderInfo{
			Name:               string(p),
			RequiresCredential: p.RequiresCredential(),
		}
		if p == factory.ProviderLocalVLLM && h.prober != nil {
			alive := h.prober.IsReachable(r.Context())
			info.Available = &alive
		}
		infos = append(infos, info)
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"providers": infos,
		"count":     len(infos),
	})
}
