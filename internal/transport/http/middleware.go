package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	userapp "github.com/ozmsg/gateway/internal/user_service/app"
	userdomain "github.com/ozmsg/gateway/internal/user_service/domain"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const authenticatedUserKey = contextKey("authenticatedUser")

// AuthenticatedUser is the request identity extracted from the bearer token.
type AuthenticatedUser struct {
	ID       uuid.UUID
	Username string
	Role     userdomain.Role
}

// IsAdmin reports whether the authenticated user holds the admin role.
func (u AuthenticatedUser) IsAdmin() bool { return u.Role == userdomain.RoleAdmin }

// UserFromContext returns the authenticated user stored by AuthMiddleware.
func UserFromContext(ctx context.Context) (AuthenticatedUser, bool) {
	u, ok := ctx.Value(authenticatedUserKey).(AuthenticatedUser)
	return u, ok
}

// AuthMiddleware validates the Authorization bearer token and stores the
// resulting identity in the request context.
func AuthMiddleware(auth *userapp.AuthService, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				respondError(w, http.StatusUnauthorized, "authorization header required")
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				respondError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			claims, err := auth.ValidateToken(parts[1])
			if err != nil {
				logger.WarnContext(r.Context(), "Token validation failed", "error", err)
				respondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "invalid token subject")
				return
			}

			authUser := AuthenticatedUser{ID: userID, Username: claims.Username, Role: claims.Role}
			ctx := context.WithValue(r.Context(), authenticatedUserKey, authUser)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose authenticated user is not an admin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok || !user.IsAdmin() {
			respondError(w, http.StatusForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
