package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/mustafanalbant1/Event-Finder/internal/api/respond"
	"github.com/mustafanalbant1/Event-Finder/internal/auth"
	"github.com/mustafanalbant1/Event-Finder/internal/domain/users"
)

type contextKey string

const userKey contextKey = "current_user"

// UserResolver loads the user a validated token points at.
type UserResolver interface {
	Get(ctx context.Context, id string) (users.User, error)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (users.User, bool) {
	user, ok := ctx.Value(userKey).(users.User)
	return user, ok
}

// WithUser injects a user into the context. Exported for handler tests.
func WithUser(ctx context.Context, user users.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// RequireUser rejects requests without a valid bearer token. The token
// subject must resolve to an existing user; tokens for deleted accounts are
// treated the same as invalid ones.
func RequireUser(manager *auth.JWTManager, resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := resolveUser(r, manager, resolver)
			if err != nil {
				respond.Error(w, r, http.StatusUnauthorized, "authentication required", err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// OptionalUser resolves a bearer token when one is present. Requests without
// an Authorization header pass through anonymously; a token that is present
// but invalid is still a 401.
func OptionalUser(manager *auth.JWTManager, resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			user, err := resolveUser(r, manager, resolver)
			if err != nil {
				respond.Error(w, r, http.StatusUnauthorized, "invalid token", err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func resolveUser(r *http.Request, manager *auth.JWTManager, resolver UserResolver) (users.User, error) {
	token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
	if err != nil {
		return users.User{}, err
	}
	claims, err := manager.Validate(token)
	if err != nil {
		return users.User{}, err
	}
	user, err := resolver.Get(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return users.User{}, auth.ErrInvalidToken
		}
		return users.User{}, err
	}
	return user, nil
}
