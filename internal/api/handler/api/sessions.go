package api

import (
	"context"
	"net/http"

	"github.com/andreas2301/genericllmadapter/internal/api/middleware"
	"github.com/andreas2301/genericllmadapter/internal/api/response"
	"github.com/andreas2301/genericllmadapter/internal/chat"
	"github.com/andreas2301/genericllmadapter/internal/core"
	"github.com/andreas2301/genericllmadapter/internal/storage/archive"
)

// ChatService defines the interface needed from chat.Service.
type ChatService interface {
	CreateSession(ctx context.Context, userID string) (*core.Session, error)
	ListSessions(ctx context.Context, userID string) ([]core.Session, error)
	GetOwnedSession(ctx context.Context, sessionID, userID string) (*core.Session, error)
	History(ctx context.Context, sessionID, userID string) ([]core.LogEntry, error)
	SendMessage(ctx context.Context, sessionID, userID, providerName, text string) (*chat.Reply, error)
}

// SessionsHandler handles session API requests.
type SessionsHandler struct {
	chat    ChatService
	archive archive.Storage // nil disables transcript export
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(chat ChatService, archive archive.Storage) *SessionsHandler {
	return &SessionsHandler{chat: chat, archive: archive}
}

// Create starts a new session for the authenticated user.
func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFrom(r.Context())
	if u == nil {
		response.Error(w, http.StatusUnauthorized, core.ErrUnauthorized)
		return
	}

	session, err := h.chat.CreateSession(r.Context(), u.ID)
	if err != nil {
		response.ErrorAuto(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, session)
}

// List returns the authenticated user's sessions.
func (h *SessionsHandler) List(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFrom(r.Context())
	if u == nil {
		response.Error(w, http.StatusUnauthorized, core.ErrUnauthorized)
		return
	}

	sessions, err := h.chat.ListSessions(r.Context(), u.ID)
	if err != nil {
		response.ErrorAuto(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// History returns a session's turn history, oldest first.
func (h *SessionsHandler) History(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFrom(r.Context())
	if u == nil {
		response.Error(w, http.StatusUnauthorized, core.ErrUnauthorized)
		return
	}

	entries, err := h.chat.History(r.Context(), r.PathValue("id"), u.ID)
	if err != nil {
		response.ErrorAuto(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

// Export writes the session transcript to the archive backend.
func (h *SessionsHandler) Export(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFrom(r.Context())
	if u == nil {
		response.Error(w, http.StatusUnauthorized, core.ErrUnauthorized)
		return
	}
	if h.archive == nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigMissing, nil))
		return
	}

	sessionID := r.PathValue("id")
	session, err := h.chat.GetOwnedSession(r.Context(), sessionID, u.ID)
	if err != nil {
		response.ErrorAuto(w, err)
		return
	}

	entries, err := h.chat.History(r.Context(), sessionID, u.ID)
	if err != nil {
		response.ErrorAuto(w, err)
		return
	}

	path, err := archive.ExportTranscript(r.Context(), h.archive, session, entries)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"path": path,
	})
}
