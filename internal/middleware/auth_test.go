package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/car-showroom/internal/auth"
	"github.com/ukydev/car-showroom/internal/config"
	"github.com/ukydev/car-showroom/internal/db/dbtest"
	"github.com/ukydev/car-showroom/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func setup(t *testing.T) (*auth.Service, *dbtest.Users, *AuthMiddleware) {
	t.Helper()
	authService := auth.NewService(config.AuthConfig{JWTSecret: "test-secret", TokenExpiry: time.Hour})
	users := dbtest.NewStore().Users
	return authService, users, NewAuthMiddleware(authService, users)
}

func addUser(t *testing.T, users *dbtest.Users, role models.Role, active bool) *models.User {
	t.Helper()
	user := &models.User{Name: "Test", Email: string(role) + "@example.com", Role: role, IsActive: active}
	require.NoError(t, users.InsertUser(context.Background(), user))
	return user
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	authService, users, middleware := setup(t)

	t.Run("valid token", func(t *testing.T) {
		user := addUser(t, users, models.RoleAdmin, true)
		token, _ := authService.GenerateToken(user)

		req := httptest.NewRequest("GET", "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
			got, ok := GetUserFromContext(r.Context())
			assert.True(t, ok)
			assert.Equal(t, user.ID, got.ID)
			assert.Equal(t, user.Email, got.Email)
		})

		middleware.Authenticate(handler).ServeHTTP(w, req)
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	rejected := []struct {
		name   string
		header func() string
	}{
		{"missing authorization header", func() string { return "" }},
		{"invalid token", func() string { return "Bearer invalid-token" }},
		{"wrong scheme", func() string { return "Token abc" }},
		{"user no longer exists", func() string {
			token, _ := authService.GenerateToken(&models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin})
			return "Bearer " + token
		}},
		{"inactive user", func() string {
			user := addUser(t, users, models.RoleUser, false)
			token, _ := authService.GenerateToken(user)
			return "Bearer " + token
		}},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/auth/me", nil)
			if h := tt.header(); h != "" {
				req.Header.Set("Authorization", h)
			}
			w := httptest.NewRecorder()

			handlerCalled := false
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
			})

			middleware.Authenticate(handler).ServeHTTP(w, req)
			assert.False(t, handlerCalled)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}
}

func TestAdminOnly(t *testing.T) {
	authService, users, middleware := setup(t)
	admin := addUser(t, users, models.RoleAdmin, true)
	regular := addUser(t, users, models.RoleUser, true)

	tests := []struct {
		name     string
		user     *models.User
		expected int
	}{
		{"admin passes", admin, http.StatusOK},
		{"regular user is forbidden", regular, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, _ := authService.GenerateToken(tt.user)
			req := httptest.NewRequest("POST", "/api/brands", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()

			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			middleware.Authenticate(AdminOnly(handler)).ServeHTTP(w, req)
			assert.Equal(t, tt.expected, w.Code)
		})
	}

	t.Run("without authenticate", func(t *testing.T) {
		w := httptest.NewRecorder()
		AdminOnly(http.NotFoundHandler()).ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGetUserFromContext(t *testing.T) {
	_, ok := GetUserFromContext(context.Background())
	assert.False(t, ok)

	user := &models.User{Name: "Admin", Role: models.RoleAdmin}
	got, ok := GetUserFromContext(WithUser(context.Background(), user))
	assert.True(t, ok)
	assert.Same(t, user, got)
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewRateLimitMiddleware()
	now := time.Now()
	limiter.now = func() time.Time { return now }

	handler := limiter.RateLimit(2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(ip string) int {
		req := httptest.NewRequest("POST", "/api/auth/admin/login", nil)
		req.RemoteAddr = ip + ":12345"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2"))

	now = now.Add(2 * time.Minute)
	assert.Equal(t, http.StatusOK, call("10.0.0.1"))
}

func TestRateLimitMiddleware_IgnoresForwardedHeaders(t *testing.T) {
	limiter := NewRateLimitMiddleware()
	handler := limiter.RateLimit(3, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	limited := 0
	for i := 0; i < 1000; i++ {
		req := httptest.NewRequest("POST", "/api/auth/admin/login", nil)
		req.RemoteAddr = "203.0.113.9:40000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i%250))
		req.Header.Set("X-Real-IP", fmt.Sprintf("192.0.2.%d", i%250))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			limited++
		}
	}

	assert.Equal(t, 997, limited)
	assert.Len(t, limiter.requests, 1)
}

func TestRateLimitMiddleware_DropsIdleClients(t *testing.T) {
	limiter := NewRateLimitMiddleware()
	now := time.Now()
	limiter.now = func() time.Time { return now }

	for i := 0; i < 100; i++ {
		assert.True(t, limiter.allow(fmt.Sprintf("10.1.0.%d", i), 5, time.Minute))
	}
	assert.Len(t, limiter.requests, 100)

	now = now.Add(2 * time.Minute)
	assert.True(t, limiter.allow("10.2.0.1", 5, time.Minute))
	assert.Len(t, limiter.requests, 1)
	assert.Contains(t, limiter.requests, "10.2.0.1")
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.168.1.5:4000"
	req.Header.Set("X-Real-IP", "172.16.0.1")
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "192.168.1.5", getClientIP(req))

	req.RemoteAddr = "192.168.1.6"
	assert.Equal(t, "192.168.1.6", getClientIP(req))
}

func TestRecover(t *testing.T) {
	handler := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/cars", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Something went wrong!")
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	handler := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/health", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}
