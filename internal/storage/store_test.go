package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andreas2301/genericllmadapter/internal/core"
	"github.com/google/uuid"
)

// Both implementations must satisfy the same contract, so every case below
// runs against each of them.
func stores(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("opening sqlite store: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })
	return map[string]Store{
		"sqlite": sqlite,
		"memory": NewMemoryStore(),
	}
}

func seedUser(t *testing.T, store Store) *core.User {
	t.Helper()
	user := &core.User{
		ID:          uuid.NewString(),
		Email:       uuid.NewString() + "@example.com",
		AccessToken: uuid.NewString(),
		OpenAIKey:   "sk-initial",
		CreatedAt:   time.Now().UTC(),
	}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	return user
}

func seedSession(t *testing.T, store Store, userID string, startedAt time.Time) *core.Session {
	t.Helper()
	session := &core.Session{
		ID:                uuid.NewString(),
		UserID:            userID,
		StartedAt:         startedAt,
		LastInteractionAt: startedAt,
	}
	if err := store.CreateSession(context.Background(), session); err != nil {
		t.Fatalf("seeding session: %v", err)
	}
	return session
}

func TestStore_UserRoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			user := seedUser(t, store)

			byID, err := store.GetUserByID(ctx, user.ID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if byID.Email != user.Email || byID.OpenAIKey != "sk-initial" {
				t.Errorf("unexpected user %+v", byID)
			}

			byEmail, err := store.GetUserByEmail(ctx, user.Email)
			if err != nil || byEmail.ID != user.ID {
				t.Errorf("lookup by email failed: %v", err)
			}

			byToken, err := store.GetUserByToken(ctx, user.AccessToken)
			if err != nil || byToken.ID != user.ID {
				t.Errorf("lookup by token failed: %v", err)
			}
		})
	}
}

func TestStore_UserNotFound(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := store.GetUserByID(ctx, "missing"); !errors.Is(err, core.ErrUserNotFound) {
				t.Errorf("by id: expected not found, got %v", err)
			}
			if _, err := store.GetUserByEmail(ctx, "missing@example.com"); !errors.Is(err, core.ErrUserNotFound) {
				t.Errorf("by email: expected not found, got %v", err)
			}
			if _, err := store.GetUserByToken(ctx, "missing"); !errors.Is(err, core.ErrUserNotFound) {
				t.Errorf("by token: expected not found, got %v", err)
			}
		})
	}
}

func TestStore_DuplicateEmail(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			user := seedUser(t, store)
			dup := &core.User{
				ID:          uuid.NewString(),
				Email:       user.Email,
				AccessToken: uuid.NewString(),
				CreatedAt:   time.Now().UTC(),
			}
			if err := store.CreateUser(context.Background(), dup); !errors.Is(err, core.ErrUserExists) {
				t.Errorf("expected user exists error, got %v", err)
			}
		})
	}
}

func TestStore_PartialKeyUpdate(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			user := seedUser(t, store)

			newKey := "hf_rotated"
			err := store.UpdateUserKeys(ctx, user.ID, KeyUpdate{HuggingFaceKey: &newKey})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			updated, err := store.GetUserByID(ctx, user.ID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if updated.HuggingFaceKey != "hf_rotated" {
				t.Errorf("expected rotated key, got %q", updated.HuggingFaceKey)
			}
			if updated.OpenAIKey != "sk-initial" {
				t.Errorf("expected untouched key preserved, got %q", updated.OpenAIKey)
			}
		})
	}
}

func TestStore_UpdateKeysUnknownUser(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			key := "sk-x"
			err := store.UpdateUserKeys(context.Background(), "missing", KeyUpdate{OpenAIKey: &key})
			if !errors.Is(err, core.ErrUserNotFound) {
				t.Errorf("expected not found, got %v", err)
			}
		})
	}
}

func TestStore_SessionRoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			user := seedUser(t, store)
			now := time.Now().UTC().Truncate(time.Second)
			session := seedSession(t, store, user.ID, now)

			got, err := store.GetSession(ctx, session.ID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.UserID != user.ID {
				t.Errorf("unexpected session %+v", got)
			}
			if !got.StartedAt.Equal(now) {
				t.Errorf("expected started_at %v, got %v", now, got.StartedAt)
			}

			if _, err := store.GetSession(ctx, "missing"); !errors.Is(err, core.ErrSessionNotFound) {
				t.Errorf("expected not found, got %v", err)
			}
		})
	}
}

func TestStore_ListSessionsNewestFirst(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			user := seedUser(t, store)
			other := seedUser(t, store)

			base := time.Now().UTC().Truncate(time.Second)
			old := seedSession(t, store, user.ID, base.Add(-time.Hour))
			recent := seedSession(t, store, user.ID, base)
			seedSession(t, store, other.ID, base)

			sessions, err := store.ListSessions(ctx, user.ID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(sessions) != 2 {
				t.Fatalf("expected 2 sessions, got %d", len(sessions))
			}
			if sessions[0].ID != recent.ID || sessions[1].ID != old.ID {
				t.Errorf("expected newest first, got %s then %s", sessions[0].ID, sessions[1].ID)
			}
		})
	}
}

func TestStore_TouchSession(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			user := seedUser(t, store)
			started := time.Now().UTC().Truncate(time.Second)
			session := seedSession(t, store, user.ID, started)

			later := started.Add(time.Minute)
			if err := store.TouchSession(ctx, session.ID, later); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got, _ := store.GetSession(ctx, session.ID)
			if !got.LastInteractionAt.Equal(later) {
				t.Errorf("expected %v, got %v", later, got.LastInteractionAt)
			}

			if err := store.TouchSession(ctx, "missing", later); !errors.Is(err, core.ErrSessionNotFound) {
				t.Errorf("expected not found, got %v", err)
			}
		})
	}
}

func TestStore_HistoryOrderedByTimestamp(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			user := seedUser(t, store)
			base := time.Now().UTC().Truncate(time.Second)
			session := seedSession(t, store, user.ID, base)

			turns := []struct {
				role    string
				content string
				offset  time.Duration
			}{
				{core.RoleUser, "hi", 0},
				{core.RoleAssistant, "hello", time.Second},
				{core.RoleUser, "bye", 2 * time.Second},
			}
			for _, turn := range turns {
				err := store.AppendLog(ctx, &core.LogEntry{
					ID:        uuid.NewString(),
					SessionID: session.ID,
					Role:      turn.role,
					Content:   turn.content,
					Provider:  "local_vllm",
					Timestamp: base.Add(turn.offset),
				})
				if err != nil {
					t.Fatalf("appending log: %v", err)
				}
			}

			history, err := store.History(ctx, session.ID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(history) != 3 {
				t.Fatalf("expected 3 entries, got %d", len(history))
			}
			for i, turn := range turns {
				if history[i].Role != turn.role || history[i].Content != turn.content {
					t.Errorf("entry %d: got %+v, want %s/%s", i, history[i], turn.role, turn.content)
				}
			}
		})
	}
}

func TestStore_HistoryEmptySession(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			history, err := store.History(context.Background(), "no-such-session")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(history) != 0 {
				t.Errorf("expected empty history, got %d entries", len(history))
			}
		})
	}
}

func TestStore_LogMetricsAndReasoningRoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			user := seedUser(t, store)
			session := seedSession(t, store, user.ID, time.Now().UTC().Truncate(time.Second))

			err := store.AppendLog(ctx, &core.LogEntry{
				ID:        uuid.NewString(),
				SessionID: session.ID,
				Role:      core.RoleAssistant,
				Content:   "the answer",
				Provider:  "local_vllm",
				Reasoning: "step by step",
				Metrics:   map[string]any{"coherence": 0.9, "topic": "math"},
				Timestamp: time.Now().UTC().Truncate(time.Second),
			})
			if err != nil {
				t.Fatalf("appending log: %v", err)
			}

			history, err := store.History(ctx, session.ID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			entry := history[0]
			if entry.Reasoning != "step by step" {
				t.Errorf("expected reasoning preserved, got %q", entry.Reasoning)
			}
			if entry.Metrics["coherence"] != 0.9 || entry.Metrics["topic"] != "math" {
				t.Errorf("unexpected metrics %v", entry.Metrics)
			}
		})
	}
}

func TestStore_LogWithoutMetrics(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			user := seedUser(t, store)
			session := seedSession(t, store, user.ID, time.Now().UTC().Truncate(time.Second))

			err := store.AppendLog(ctx, &core.LogEntry{
				ID:        uuid.NewString(),
				SessionID: session.ID,
				Role:      core.RoleUser,
				Content:   "hi",
				Timestamp: time.Now().UTC().Truncate(time.Second),
			})
			if err != nil {
				t.Fatalf("appending log: %v", err)
			}

			history, _ := store.History(ctx, session.ID)
			if history[0].Metrics != nil {
				t.Errorf("expected nil metrics, got %v", history[0].Metrics)
			}
		})
	}
}
