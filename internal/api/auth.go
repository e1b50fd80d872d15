package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/lekarna/internal/auth"
	"github.com/erazemk/lekarna/internal/model"
	"github.com/erazemk/lekarna/internal/store"
)

// AuthHandler handles account and session endpoints.
type AuthHandler struct {
	DB        *sql.DB
	JWTSecret string
	TokenTTL  time.Duration
	ResetTTL  time.Duration
	// RevealResetCode returns reset codes in the response instead of only logging them.
	RevealResetCode bool
}

type signupRequest struct {
	FullName string `json:"fullName" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (h *AuthHandler) issue(w http.ResponseWriter, status int, user *model.User) {
	token, err := auth.GenerateToken(h.JWTSecret, h.TokenTTL, user.ID, user.Email)
	if err != nil {
		slog.Error("failed to generate token", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	jsonResponse(w, status, tokenResponse{Token: token, User: user})
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeValid(w, r, &req) {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user, err := store.CreateUser(r.Context(), h.DB, normalizeEmail(req.Email), strings.TrimSpace(req.FullName), string(hash))
	if errors.Is(err, store.ErrEmailTaken) {
		jsonError(w, http.StatusConflict, "email already registered")
		return
	}
	if err != nil {
		slog.Error("failed to create user", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	slog.Info("user signed up", "user", user.ID)
	h.issue(w, http.StatusCreated, user)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeValid(w, r, &req) {
		return
	}

	user, err := store.GetUserByEmail(r.Context(), h.DB, normalizeEmail(req.Email))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		slog.Warn("login failed", "email", req.Email, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	slog.Info("user logged in", "user", user.ID)
	h.issue(w, http.StatusOK, user)
}

// Logout handles POST /api/auth/logout by revoking the presented token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := store.RevokeToken(r.Context(), h.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
		slog.Error("failed to revoke token", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to log out")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// ChangePassword handles PUT /api/auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req changePasswordRequest
	if !decodeValid(w, r, &req) {
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil || user == nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		jsonError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	if err := h.setPassword(r, user.ID, req.NewPassword); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update password")
		return
	}

	slog.Info("user changed own password", "user", user.ID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"})
}

func (h *AuthHandler) setPassword(r *http.Request, userID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return store.UpdateUserPassword(r.Context(), h.DB, userID, string(hash))
}

// ForgotPassword handles POST /api/auth/forgot-password.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !decodeValid(w, r, &req) {
		return
	}

	user, err := store.GetUserByEmail(r.Context(), h.DB, normalizeEmail(req.Email))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		jsonError(w, http.StatusNotFound, "no account with that email")
		return
	}

	code, expiresAt, err := store.CreatePasswordReset(r.Context(), h.DB, user.ID, h.ResetTTL)
	if err != nil {
		slog.Error("failed to create password reset", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create reset code")
		return
	}

	if h.RevealResetCode {
		jsonResponse(w, http.StatusOK, map[string]any{
			"message":   "reset code created",
			"resetCode": code,
			"expiresAt": expiresAt,
		})
		return
	}

	slog.Info("password reset requested", "user", user.ID, "email", user.Email, "code", code, "expires", expiresAt)
	jsonResponse(w, http.StatusOK, map[string]any{
		"message":   "reset code sent",
		"expiresAt": expiresAt,
	})
}

// ResetPassword handles POST /api/auth/reset-password/{token}.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeValid(w, r, &req) {
		return
	}

	code := strings.ToUpper(strings.TrimSpace(r.PathValue("token")))
	userID, err := store.ConsumePasswordReset(r.Context(), h.DB, code)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if userID == "" {
		jsonError(w, http.StatusBadRequest, "invalid or expired reset code")
		return
	}

	if err := h.setPassword(r, userID, req.Password); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update password")
		return
	}

	slog.Info("password reset", "user", userID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"})
}
