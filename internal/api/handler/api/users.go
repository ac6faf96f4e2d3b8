package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/andreas2301/genericllmadapter/internal/api/middleware"
	"github.com/andreas2301/genericllmadapter/internal/api/response"
	"github.com/andreas2301/genericllmadapter/internal/core"
	"github.com/andreas2301/genericllmadapter/internal/storage"
)

// UserService defines the interface needed from user.Service.
type UserService interface {
	Register(ctx context.Context, email string) (*core.User, error)
	UpdateKeys(ctx context.Context, userID string, update storage.KeyUpdate) error
}

// UsersHandler handles user API requests.
type UsersHandler struct {
	users UserService
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(users UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// RegisterRequest is the request body for registering a user.
type RegisterRequest struct {
	Email string `json:"email"`
}

// Register creates a user and returns its access token.
func (h *UsersHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, err))
		return
	}
	if req.Email == "" {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigMissing, nil))
		return
	}

	u, err := h.users.Register(r.Context(), req.Email)
	if err != nil {
		response.ErrorAuto(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, map[string]any{
		"id":           u.ID,
		"email":        u.Email,
		"access_token": u.AccessToken,
		"created_at":   u.CreatedAt,
	})
}

// UpdateKeysRequest carries per-provider API keys. Absent fields are
// unchanged.
type UpdateKeysRequest struct {
	OpenAIKey      *string `json:"openai_key"`
	DeepSeekKey    *string `json:"deepseek_key"`
	HuggingFaceKey *string `json:"huggingface_key"`
}

// UpdateKeys updates the authenticated user's provider API keys.
func (h *UsersHandler) UpdateKeys(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFrom(r.Context())
	if u == nil {
		response.Error(w, http.StatusUnauthorized, core.ErrUnauthorized)
		return
	}

	var req UpdateKeysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, err))
		return
	}

	err := h.users.UpdateKeys(r.Context(), u.ID, storage.KeyUpdate{
		OpenAIKey:      req.OpenAIKey,
		DeepSeekKey:    req.DeepSeekKey,
		HuggingFaceKey: req.HuggingFaceKey,
	})
	if err != nil {
		response.ErrorAuto(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"updated": true,
	})
}
