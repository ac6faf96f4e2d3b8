// Package chat drives one conversational turn end-to-end: it rebuilds the
// session context from stored history, invokes the resolved provider client,
// post-processes the reply and instructs persistence of both new turns.
package chat

import (
	"context"
	"time"

	"github.com/andreas2301/genericllmadapter/internal/analysis"
	"github.com/andreas2301/genericllmadapter/internal/core"
	"github.com/andreas2301/genericllmadapter/internal/llm"
	"github.com/andreas2301/genericllmadapter/internal/llm/factory"
	"github.com/andreas2301/genericllmadapter/internal/metrics"
	"github.com/andreas2301/genericllmadapter/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Resolver maps a provider name and credential to a client.
type Resolver interface {
	Resolve(name, credential string) (llm.Client, error)
}

// Scorer is the best-effort scoring collaborator.
type Scorer interface {
	Analyze(ctx context.Context, req analysis.Request) (*analysis.Response, bool)
}

// Reply is the structured result of one turn.
type Reply struct {
	Prompt    string         `json:"prompt"`
	Content   string         `json:"content"`
	Reasoning string         `json:"reasoning,omitempty"`
	Metrics   map[string]any `json:"metrics,omitempty"`
}

// Service orchestrates conversational turns.
type Service struct {
	store    storage.Store
	resolver Resolver
	scorer   Scorer // nil disables scoring
	metrics  *metrics.Registry
	logger   *zap.Logger
}

// NewService creates a chat service. scorer and registry may be nil.
func NewService(store storage.Store, resolver Resolver, scorer Scorer, registry *metrics.Registry, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		resolver: resolver,
		scorer:   scorer,
		metrics:  registry,
		logger:   logger,
	}
}

// CreateSession starts a new session for a user.
func (s *Service) CreateSession(ctx context.Context, userID string) (*core.Session, error) {
	now := time.Now().UTC()
	session := &core.Session{
		ID:                uuid.NewString(),
		UserID:            userID,
		StartedAt:         now,
		LastInteractionAt: now,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordSessionCreated()
	}
	s.logger.Info("session created",
		zap.String("session_id", session.ID),
		zap.String("user_id", userID))
	return session, nil
}

// ListSessions returns a user's sessions, newest first.
func (s *Service) ListSessions(ctx context.Context, userID string) ([]core.Session, error) {
	return s.store.ListSessions(ctx, userID)
}

// GetOwnedSession resolves a session and enforces the ownership check.
func (s *Service) GetOwnedSession(ctx context.Context, sessionID, userID string) (*core.Session, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, core.ErrSessionForbidden
	}
	return session, nil
}

// History returns a session's log entries after the ownership check.
func (s *Service) History(ctx context.Context, sessionID, userID string) ([]core.LogEntry, error) {
	if _, err := s.GetOwnedSession(ctx, sessionID, userID); err != nil {
		return nil, err
	}
	return s.store.History(ctx, sessionID)
}

// SendMessage handles one conversational turn.
//
// The user turn is persisted before the provider call so a retried exchange
// sees it as context. A failed provider call therefore leaves an unanswered
// user entry in history; that entry is intentionally not rolled back.
func (s *Service) SendMessage(ctx context.Context, sessionID, userID, providerName, text string) (*Reply, error) {
	session, err := s.GetOwnedSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	credential, err := credentialFor(user, providerName)
	if err != nil {
		return nil, err
	}
	client, err := s.resolver.Resolve(providerName, credential)
	if err != nil {
		return nil, err
	}

	if err := s.store.AppendLog(ctx, &core.LogEntry{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      core.RoleUser,
		Content:   text,
		Provider:  client.Name(),
		Timestamp: time.Now().UTC(),
	}); err != nil {
		return nil, err
	}

	history, err := s.store.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	messages := make([]llm.Message, 0, len(history))
	prevRole := ""
	for _, entry := range history {
		messages = append(messages, llm.Message{
			Role:  llm.NormalizeRole(entry.Role),
			Parts: []string{entry.Content},
		})
	}
	if len(history) > 1 {
		prevRole = llm.NormalizeRole(history[len(history)-2].Role)
	}

	s.logger.Debug("calling provider",
		zap.String("session_id", sessionID),
		zap.String("provider", client.Name()),
		zap.Int("context_messages", len(messages)))

	start := time.Now()
	reply, err := client.Generate(ctx, messages)
	if s.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		s.metrics.RecordChatTurn(client.Name(), outcome, time.Since(start).Seconds())
	}
	if err != nil {
		s.logger.Warn("provider call failed",
			zap.String("session_id", sessionID),
			zap.String("provider", client.Name()),
			zap.Error(err))
		return nil, err
	}

	content, reasoning := ExtractReasoning(reply.Text)

	var metricsPayload map[string]any
	if s.scorer != nil {
		result, ok := s.scorer.Analyze(ctx, analysis.Request{
			SessionID: sessionID,
			Prompt:    text,
			Response:  content,
			PrevRole:  prevRole,
		})
		if s.metrics != nil {
			s.metrics.RecordAnalysis(ok)
		}
		if ok {
			metricsPayload = result.Metrics
		}
	}

	if err := s.store.AppendLog(ctx, &core.LogEntry{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      core.RoleAssistant,
		Content:   content,
		Provider:  client.Name(),
		Reasoning: reasoning,
		Metrics:   metricsPayload,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		return nil, err
	}

	if err := s.store.TouchSession(ctx, sessionID, time.Now().UTC()); err != nil {
		return nil, err
	}

	return &Reply{
		Prompt:    text,
		Content:   content,
		Reasoning: reasoning,
		Metrics:   metricsPayload,
	}, nil
}

// credentialFor selects the user's stored key for a provider. The local
// backend takes no credential; the factory substitutes its placeholder.
func credentialFor(user *core.User, providerName string) (string, error) {
	provider, err := factory.ParseProvider(providerName)
	if err != nil {
		return "", err
	}

	switch provider {
	case factory.ProviderOpenAI:
		return user.OpenAIKey, nil
	case factory.ProviderDeepSeek:
		return user.DeepSeekKey, nil
	case factory.ProviderHuggingFace:
		return user.HuggingFaceKey, nil
	default:
		return "", nil
	}
}
