package api

import (
	"encoding/json"
	"net/http"

	"github.com/andreas2301/genericllmadapter/internal/api/middleware"
	"github.com/andreas2301/genericllmadapter/internal/api/response"
	"github.com/andreas2301/genericllmadapter/internal/core"
)

// ChatHandler handles conversational turn requests.
type ChatHandler struct {
	chat ChatService
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chat ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// SendRequest is the request body for one conversational turn.
type SendRequest struct {
	Message  string `json:"message"`
	Provider string `json:"provider"`
}

// Send runs one conversational turn against the named provider.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFrom(r.Context())
	if u == nil {
		response.Error(w, http.StatusUnauthorized, core.ErrUnauthorized)
		return
	}

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, err))
		return
	}
	if req.Message == "" {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigMissing, nil))
		return
	}

	reply, err := h.chat.SendMessage(r.Context(), r.PathValue("id"), u.ID, req.Provider, req.Message)
	if err != nil {
		response.ErrorAuto(w, err)
		return
	}

	response.JSON(w, http.StatusOK, reply)
}
