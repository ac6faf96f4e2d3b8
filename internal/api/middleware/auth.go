package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/andreas2301/genericllmadapter/internal/api/response"
	"github.com/andreas2301/genericllmadapter/internal/core"
)

type contextKey string

const userKey contextKey = "user"

// TokenResolver resolves a bearer access token to a user.
type TokenResolver interface {
	GetByToken(ctx context.Context, token string) (*core.User, error)
}

// BearerAuth returns middleware that resolves the Authorization bearer token
// against the user store and attaches the user to the request context.
func BearerAuth(users TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				response.Error(w, http.StatusUnauthorized, core.ErrUnauthorized)
				return
			}

			u, err := users.GetByToken(r.Context(), token)
			if err != nil {
				response.Error(w, http.StatusUnauthorized, core.ErrUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// WithUser attaches a user to the context.
func WithUser(ctx context.Context, u *core.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFrom returns the authenticated user from the context, or nil.
func UserFrom(ctx context.Context) *core.User {
	u, _ := ctx.Value(userKey).(*core.User)
	return u
}
