package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/ukydev/car-showroom/internal/apperr"
	"github.com/ukydev/car-showroom/internal/auth"
	"github.com/ukydev/car-showroom/internal/db"
	"github.com/ukydev/car-showroom/internal/models"
	"github.com/ukydev/car-showroom/internal/response"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	UserContextKey contextKey = "user"
)

// AuthMiddleware verifies bearer tokens and resolves them to stored users.
type AuthMiddleware struct {
	authService *auth.Service
	users       db.UserCollection
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(authService *auth.Service, users db.UserCollection) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		users:       users,
	}
}

// Authenticate requires a valid bearer token whose user still exists and is
// active, and attaches that user to the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.resolve(r)
		if err != nil {
			response.Error(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) resolve(r *http.Request) (*models.User, error) {
	token, err := m.authService.ExtractTokenFromHeader(r.Header.Get("Authorization"))
	if err != nil {
		return nil, apperr.Unauthenticated("Not authorized, no token")
	}

	claims, err := m.authService.ValidateToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, apperr.Unauthenticated("Not authorized, token expired")
		}
		return nil, apperr.Unauthenticated("Not authorized, token failed")
	}

	user, err := m.users.FindUserByID(r.Context(), claims.UserID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, apperr.Unauthenticated("Not authorized, user not found")
		}
		return nil, apperr.Internal("Server error", err)
	}
	if !user.IsActive {
		return nil, apperr.Unauthenticated("Not authorized, account is deactivated")
	}
	return user, nil
}

// AdminOnly rejects callers whose resolved user is not an admin. It must run
// after Authenticate.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUserFromContext(r.Context())
		if !ok {
			response.Error(w, r, apperr.Unauthenticated("Not authorized"))
			return
		}
		if !user.IsAdmin() {
			response.Error(w, r, apperr.Forbidden("Access denied. Admin only."))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserFromContext returns the user attached by Authenticate.
func GetUserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	return user, ok && user != nil
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}
