package handlers

import (
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/car-showroom/internal/apperr"
	"github.com/ukydev/car-showroom/internal/auth"
	"github.com/ukydev/car-showroom/internal/db"
	"github.com/ukydev/car-showroom/internal/middleware"
	"github.com/ukydev/car-showroom/internal/models"
	"github.com/ukydev/car-showroom/internal/response"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService    *auth.Service
	userCollection db.UserCollection
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, userCollection db.UserCollection) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		userCollection: userCollection,
	}
}

// Login handles admin login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) error {
	var loginReq models.LoginRequest
	if err := decodeJSON(w, r, &loginReq); err != nil {
		return err
	}

	loginReq.Email = strings.TrimSpace(loginReq.Email)
	if loginReq.Email == "" || loginReq.Password == "" {
		return apperr.Validation("Please provide email and password")
	}

	user, err := h.userCollection.FindUserByEmail(r.Context(), loginReq.Email)
	if err != nil {
		if db.IsNotFound(err) {
			return apperr.Unauthenticated("Invalid credentials")
		}
		return err
	}

	if !h.authService.CheckPassword(loginReq.Password, user.PasswordHash) {
		return apperr.Unauthenticated("Invalid credentials")
	}

	if !user.IsActive {
		return apperr.Unauthenticated("Account is deactivated")
	}

	if !user.IsAdmin() {
		return apperr.Forbidden("Access denied. Admin only.")
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		return apperr.Internal("Failed to generate token", err)
	}

	// A failed lastLogin write does not fail the login.
	if err := h.userCollection.UpdateLastLogin(r.Context(), user.ID); err != nil {
		log.WithError(err).WithField("user_id", user.ID.Hex()).Warn("failed to update last login")
	}

	response.JSON(w, http.StatusOK, models.LoginResponse{
		Success: true,
		Token:   token,
		User:    *user,
	})
	return nil
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) error {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		return apperr.Unauthenticated("Not authorized, no token")
	}

	response.JSON(w, http.StatusOK, struct {
		Success bool         `json:"success"`
		User    *models.User `json:"user"`
	}{true, user})
	return nil
}

// UpdateProfile updates the current user's name and email
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) error {
	current, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		return apperr.Unauthenticated("Not authorized, no token")
	}

	var updateReq models.ProfileUpdateRequest
	if err := decodeJSON(w, r, &updateReq); err != nil {
		return err
	}

	user := *current
	if name := strings.TrimSpace(updateReq.Name); name != "" {
		user.Name = name
	}
	if email := strings.ToLower(strings.TrimSpace(updateReq.Email)); email != "" && email != user.Email {
		existing, err := h.userCollection.FindUserByEmail(r.Context(), email)
		if err == nil && existing.ID != user.ID {
			return apperr.Conflict("Email already in use")
		}
		if err != nil && !db.IsNotFound(err) {
			return err
		}
		user.Email = email
	}
	if err := models.Validate(&user); err != nil {
		return err
	}

	if err := h.userCollection.UpdateUser(r.Context(), &user); err != nil {
		if db.IsDuplicate(err) {
			return apperr.Conflict("Email already in use")
		}
		return err
	}

	response.OK(w, http.StatusOK, "Profile updated successfully", user)
	return nil
}

// ChangePassword changes the current user's password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) error {
	current, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		return apperr.Unauthenticated("Not authorized, no token")
	}

	var passwordReq models.ChangePasswordRequest
	if err := decodeJSON(w, r, &passwordReq); err != nil {
		return err
	}

	if passwordReq.CurrentPassword == "" || passwordReq.NewPassword == "" {
		return apperr.Validation("Current password and new password are required")
	}

	if err := h.authService.ValidatePassword(passwordReq.NewPassword); err != nil {
		return apperr.Field("newPassword", err.Error())
	}

	// The context copy carries the hash loaded by Authenticate.
	if !h.authService.CheckPassword(passwordReq.CurrentPassword, current.PasswordHash) {
		return apperr.Unauthenticated("Current password is incorrect")
	}

	newPasswordHash, err := h.authService.HashPassword(passwordReq.NewPassword)
	if err != nil {
		return apperr.Internal("Failed to hash password", err)
	}

	user := *current
	user.PasswordHash = newPasswordHash
	if err := h.userCollection.UpdateUser(r.Context(), &user); err != nil {
		return err
	}

	response.OK(w, http.StatusOK, "Password changed successfully", nil)
	return nil
}
