package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andreas2301/genericllmadapter/internal/core"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			access_token TEXT NOT NULL UNIQUE,
			openai_key TEXT,
			deepseek_key TEXT,
			huggingface_key TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_interaction_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(user_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id, started_at)`,
		`CREATE TABLE IF NOT EXISTS interaction_logs (
			log_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			provider TEXT,
			reasoning TEXT,
			metrics TEXT,
			timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_logs_session ON interaction_logs(session_id, timestamp)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateUser persists a new user.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *core.User) error {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM users WHERE email = ?`, user.Email).Scan(&exists)
	if err != nil {
		return err
	}
	if exists > 0 {
		return core.ErrUserExists
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (user_id, email, access_token, openai_key, deepseek_key, huggingface_key, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.AccessToken,
		user.OpenAIKey, user.DeepSeekKey, user.HuggingFaceKey, user.CreatedAt)
	return err
}

func (s *SQLiteStore) getUser(ctx context.Context, where, arg string) (*core.User, error) {
	var user core.User
	var openai, deepseek, huggingface sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, email, access_token, openai_key, deepseek_key, huggingface_key, created_at
		 FROM users WHERE `+where, arg).
		Scan(&user.ID, &user.Email, &user.AccessToken, &openai, &deepseek, &huggingface, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, core.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	user.OpenAIKey = openai.String
	user.DeepSeekKey = deepseek.String
	user.HuggingFaceKey = huggingface.String
	return &user, nil
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	return s.getUser(ctx, "user_id = ?", id)
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	return s.getUser(ctx, "email = ?", email)
}

// GetUserByToken retrieves a user by access token.
func (s *SQLiteStore) GetUserByToken(ctx context.Context, token string) (*core.User, error) {
	return s.getUser(ctx, "access_token = ?", token)
}

// UpdateUserKeys applies a partial API key update.
func (s *SQLiteStore) UpdateUserKeys(ctx context.Context, id string, update KeyUpdate) error {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	if update.OpenAIKey != nil {
		user.OpenAIKey = *update.OpenAIKey
	}
	if update.DeepSeekKey != nil {
		user.DeepSeekKey = *update.DeepSeekKey
	}
	if update.HuggingFaceKey != nil {
		user.HuggingFaceKey = *update.HuggingFaceKey
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE users SET openai_key = ?, deepseek_key = ?, huggingface_key = ? WHERE user_id = ?`,
		user.OpenAIKey, user.DeepSeekKey, user.HuggingFaceKey, id)
	return err
}

// CreateSession persists a new session.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *core.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, user_id, started_at, last_interaction_at) VALUES (?, ?, ?, ?)`,
		session.ID, session.UserID, session.StartedAt, session.LastInteractionAt)
	return err
}

// GetSession retrieves a session by ID.
func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*core.Session, error) {
	var session core.Session
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, user_id, started_at, last_interaction_at FROM sessions WHERE session_id = ?`, id).
		Scan(&session.ID, &session.UserID, &session.StartedAt, &session.LastInteractionAt)
	if err == sql.ErrNoRows {
		return nil, core.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ListSessions returns a user's sessions, newest first.
func (s *SQLiteStore) ListSessions(ctx context.Context, userID string) ([]core.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, user_id, started_at, last_interaction_at
		 FROM sessions WHERE user_id = ? ORDER BY started_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []core.Session
	for rows.Next() {
		var session core.Session
		if err := rows.Scan(&session.ID, &session.UserID, &session.StartedAt, &session.LastInteractionAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// TouchSession updates the session's last interaction timestamp.
func (s *SQLiteStore) TouchSession(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET last_interaction_at = ? WHERE session_id = ?`, at, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return core.ErrSessionNotFound
	}
	return nil
}

// AppendLog appends one interaction log entry.
func (s *SQLiteStore) AppendLog(ctx context.Context, entry *core.LogEntry) error {
	var metrics any
	if entry.Metrics != nil {
		data, err := json.Marshal(entry.Metrics)
		if err != nil {
			return fmt.Errorf("marshaling metrics: %w", err)
		}
		metrics = string(data)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO interaction_logs (log_id, session_id, role, content, provider, reasoning, metrics, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.SessionID, entry.Role, entry.Content,
		entry.Provider, entry.Reasoning, metrics, entry.Timestamp)
	return err
}

// History returns a session's log entries oldest first.
func (s *SQLiteStore) History(ctx context.Context, sessionID string) ([]core.LogEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT log_id, session_id, role, content, provider, reasoning, metrics, timestamp
		 FROM interaction_logs WHERE session_id = ? ORDER BY timestamp ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []core.LogEntry
	for rows.Next() {
		var entry core.LogEntry
		var provider, reasoning, metrics sql.NullString
		if err := rows.Scan(&entry.ID, &entry.SessionID, &entry.Role, &entry.Content,
			&provider, &reasoning, &metrics, &entry.Timestamp); err != nil {
			return nil, err
		}
		entry.Provider = provider.String
		entry.Reasoning = reasoning.String
		if metrics.Valid && metrics.String != "" {
			if err := json.Unmarshal([]byte(metrics.String), &entry.Metrics); err != nil {
				return nil, fmt.Errorf("unmarshaling metrics: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
