package core

import "time"

// Role values stored in interaction logs.
const (
	RoleUser      = "USER"
	RoleAssistant = "ASSISTANT"
)

// User owns sessions and per-provider API keys. Keys are read by the chat
// service when resolving a provider and are never written to logs.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	AccessToken    string    `json:"-"`
	OpenAIKey      string    `json:"-"`
	DeepSeekKey    string    `json:"-"`
	HuggingFaceKey string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// Session groups the interaction logs of one conversation.
type Session struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	StartedAt         time.Time `json:"started_at"`
	LastInteractionAt time.Time `json:"last_interaction_at"`
}

// LogEntry is one persisted conversation turn. Entries are append-only; a
// session's history read in timestamp order is the provider context.
type LogEntry struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Provider  string         `json:"provider,omitempty"`
	Reasoning string         `json:"reasoning,omitempty"`
	Metrics   map[string]any `json:"metrics,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}
