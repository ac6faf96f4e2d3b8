// Package user manages registration and per-provider API keys.
package user

import (
	"context"
	"strings"
	"time"

	"github.com/andreas2301/genericllmadapter/internal/core"
	"github.com/andreas2301/genericllmadapter/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service handles user lookup and API key management.
type Service struct {
	store  storage.Store
	logger *zap.Logger
}

// NewService creates a user service.
func NewService(store storage.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// Register creates a user and issues an access token.
func (s *Service) Register(ctx context.Context, email string) (*core.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, core.WrapError(core.ErrConfigMissing, nil)
	}

	u := &core.User{
		ID:          uuid.NewString(),
		Email:       email,
		AccessToken: uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("email", MaskEmail(email)))
	return u, nil
}

// GetByToken resolves a user from an access token.
func (s *Service) GetByToken(ctx context.Context, token string) (*core.User, error) {
	if token == "" {
		return nil, core.ErrUnauthorized
	}
	u, err := s.store.GetUserByToken(ctx, token)
	if err != nil {
		return nil, core.WrapError(core.ErrUnauthorized, nil)
	}
	return u, nil
}

// UpdateKeys applies a partial API key update for a user.
func (s *Service) UpdateKeys(ctx context.Context, userID string, update storage.KeyUpdate) error {
	if err := s.store.UpdateUserKeys(ctx, userID, update); err != nil {
		return err
	}
	s.logger.Info("API keys updated", zap.String("user_id", userID))
	return nil
}

// MaskEmail hides most of the local part so addresses are safe to log.
// Example: user@example.com -> u***@example.com
func MaskEmail(email string) string {
	at := strings.Index(email, "@")
	if at < 0 {
		return "***"
	}
	local, domain := email[:at], email[at+1:]
	if len(local) <= 2 {
		return local + "***@" + domain
	}
	return local[:1] + "***@" + domain
}
