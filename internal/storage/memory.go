package storage

import (
	"context"
	"sync"
	"time"

	"github.com/andreas2301/genericllmadapter/internal/core"
)

// MemoryStore is an in-memory Store used in tests and for ephemeral runs.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]*core.User
	sessions map[string]*core.Session
	logs     map[string][]core.LogEntry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]*core.User),
		sessions: make(map[string]*core.Session),
		logs:     make(map[string][]core.LogEntry),
	}
}

// CreateUser persists a new user.
func (m *MemoryStore) CreateUser(ctx context.Context, user *core.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == user.Email {
			return core.ErrUserExists
		}
	}
	u := *user
	m.users[user.ID] = &u
	return nil
}

// GetUserByID retrieves a user by ID.
func (m *MemoryStore) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if u, ok := m.users[id]; ok {
		user := *u
		return &user, nil
	}
	return nil, core.ErrUserNotFound
}

// GetUserByEmail retrieves a user by email.
func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			user := *u
			return &user, nil
		}
	}
	return nil, core.ErrUserNotFound
}

// GetUserByToken retrieves a user by access token.
func (m *MemoryStore) GetUserByToken(ctx context.Context, token string) (*core.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.AccessToken == token {
			user := *u
			return &user, nil
		}
	}
	return nil, core.ErrUserNotFound
}

// UpdateUserKeys applies a partial API key update.
func (m *MemoryStore) UpdateUserKeys(ctx context.Context, id string, update KeyUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return core.ErrUserNotFound
	}
	if update.OpenAIKey != nil {
		u.OpenAIKey = *update.OpenAIKey
	}
	if update.DeepSeekKey != nil {
		u.DeepSeekKey = *update.DeepSeekKey
	}
	if update.HuggingFaceKey != nil {
		u.HuggingFaceKey = *update.HuggingFaceKey
	}
	return nil
}

// CreateSession persists a new session.
func (m *MemoryStore) CreateSession(ctx context.Context, session *core.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := *session
	m.sessions[session.ID] = &s
	return nil
}

// GetSession retrieves a session by ID.
func (m *MemoryStore) GetSession(ctx context.Context, id string) (*core.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if s, ok := m.sessions[id]; ok {
		session := *s
		return &session, nil
	}
	return nil, core.ErrSessionNotFound
}

// ListSessions returns a user's sessions, newest first.
func (m *MemoryStore) ListSessions(ctx context.Context, userID string) ([]core.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var sessions []core.Session
	for _, s := range m.sessions {
		if s.UserID == userID {
			sessions = append(sessions, *s)
		}
	}
	for i := 0; i < len(sessions); i++ {
		for j := i + 1; j < len(sessions); j++ {
			if sessions[j].StartedAt.After(sessions[i].StartedAt) {
				sessions[i], sessions[j] = sessions[j], sessions[i]
			}
		}
	}
	return sessions, nil
}

// TouchSession updates the session's last interaction timestamp.
func (m *MemoryStore) TouchSession(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return core.ErrSessionNotFound
	}
	s.LastInteractionAt = at
	return nil
}

// AppendLog appends one interaction log entry.
func (m *MemoryStore) AppendLog(ctx context.Context, entry *core.LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logs[entry.SessionID] = append(m.logs[entry.SessionID], *entry)
	return nil
}

// History returns a session's log entries oldest first.
func (m *MemoryStore) History(ctx context.Context, sessionID string) ([]core.LogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]core.LogEntry, len(m.logs[sessionID]))
	copy(entries, m.logs[sessionID])
	return entries, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
