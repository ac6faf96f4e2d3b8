// Package storage persists users, sessions and interaction logs.
package storage

import (
	"context"
	"time"

	"github.com/andreas2301/genericllmadapter/internal/core"
)

// KeyUpdate carries per-provider API key changes. Nil fields are unchanged,
// so a caller can rotate one key without touching the others.
type KeyUpdate struct {
	OpenAIKey      *string
	DeepSeekKey    *string
	HuggingFaceKey *string
}

// Store defines the interface for the session/history/user store.
type Store interface {
	// CreateUser persists a new user. Fails if the email is taken.
	CreateUser(ctx context.Context, user *core.User) error

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*core.User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*core.User, error)

	// GetUserByToken retrieves a user by access token.
	GetUserByToken(ctx context.Context, token string) (*core.User, error)

	// UpdateUserKeys applies a partial API key update.
	UpdateUserKeys(ctx context.Context, id string, update KeyUpdate) error

	// CreateSession persists a new session.
	CreateSession(ctx context.Context, session *core.Session) error

	// GetSession retrieves a session by ID.
	GetSession(ctx context.Context, id string) (*core.Session, error)

	// ListSessions returns a user's sessions, newest first.
	ListSessions(ctx context.Context, userID string) ([]core.Session, error)

	// TouchSession updates the session's last interaction timestamp.
	TouchSession(ctx context.Context, id string, at time.Time) error

	// AppendLog appends one interaction log entry.
	AppendLog(ctx context.Context, entry *core.LogEntry) error

	// History returns a session's log entries in timestamp order,
	// oldest first.
	History(ctx context.Context, sessionID string) ([]core.LogEntry, error)

	// Close releases store resources.
	Close() error
}
