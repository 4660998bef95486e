package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/soundrift/soundrift/internal/modules/identity/domain"
	"github.com/soundrift/soundrift/internal/shared/utils"
)

type contextKey string

const (
	ContextKeyUserId contextKey = "user_id"
	ContextKeyRole   contextKey = "role"
)

type AuthMiddleware struct {
	jwtSecret string
}

func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{jwtSecret: jwtSecret}
}

// CallerID returns the authenticated user's id from the request context, if any.
func CallerID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ContextKeyUserId).(uuid.UUID)
	return id, ok
}

// CallerRole returns the authenticated user's role from the request context.
func CallerRole(ctx context.Context) (domain.Role, bool) {
	role, ok := ctx.Value(ContextKeyRole).(domain.Role)
	return role, ok
}

func (m *AuthMiddleware) tokenFromRequest(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}
	return r.URL.Query().Get("token")
}

// RequireAuth rejects requests without a valid token and injects the caller's
// identity and role into the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := m.tokenFromRequest(r)
		if tokenStr == "" {
			utils.WriteError(w, http.StatusUnauthorized, "missing or invalid authorization", nil)
			return
		}

		claims, err := utils.ValidateToken(tokenStr, m.jwtSecret)
		if err != nil {
			utils.WriteError(w, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyUserId, claims.UserID)
		ctx = context.WithValue(ctx, ContextKeyRole, domain.Role(claims.Role))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FlexibleAuth attempts to authenticate the caller but proceeds as an
// anonymous guest when no valid token is present.
func (m *AuthMiddleware) FlexibleAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := m.tokenFromRequest(r)
		if tokenStr == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := utils.ValidateToken(tokenStr, m.jwtSecret)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyUserId, claims.UserID)
		ctx = context.WithValue(ctx, ContextKeyRole, domain.Role(claims.Role))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
