package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/lekarna/internal/imaging"
	"github.com/erazemk/lekarna/internal/model"
	"github.com/erazemk/lekarna/internal/store"
)

type settingsData struct {
	PageData
	Profile *model.User
}

func (s *Server) renderSettings(w http.ResponseWriter, r *http.Request, status int, errMsg, success string) {
	claims := GetWebClaims(r.Context())
	user, err := store.GetUser(r.Context(), s.DB, claims.UserID)
	if err != nil || user == nil {
		slog.Error("failed to get user for settings", "user", claims.UserID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.Templates.RenderStatus(w, status, "settings.html", &settingsData{
		PageData: PageData{Title: "Settings", User: claims, Error: errMsg, Success: success},
		Profile:  user,
	})
}

// SettingsPage handles GET /settings.
func (s *Server) SettingsPage(w http.ResponseWriter, r *http.Request) {
	s.renderSettings(w, r, http.StatusOK, "", "")
}

// ProfileSubmit handles POST /settings/profile.
func (s *Server) ProfileSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	fullName := strings.TrimSpace(r.FormValue("full_name"))
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	partnerName := strings.TrimSpace(r.FormValue("partner_name"))

	if fullName == "" || email == "" {
		s.renderSettings(w, r, http.StatusBadRequest, "Enter your name and email.", "")
		return
	}

	err := store.UpdateUserProfile(r.Context(), s.DB, claims.UserID, email, fullName, partnerName)
	if errors.Is(err, store.ErrEmailTaken) {
		s.renderSettings(w, r, http.StatusConflict, "That email is already registered.", "")
		return
	}
	if err != nil {
		slog.Error("failed to update profile", "error", err)
		s.renderSettings(w, r, http.StatusInternalServerError, "Could not save your profile.", "")
		return
	}

	s.renderSettings(w, r, http.StatusOK, "", "Profile saved.")
}

// PasswordSubmit handles POST /settings/password (change own password).
func (s *Server) PasswordSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	currentPassword := r.FormValue("current_password")
	newPassword := r.FormValue("new_password")

	if currentPassword == "" || newPassword == "" {
		s.renderSettings(w, r, http.StatusBadRequest, "Enter your current and new password.", "")
		return
	}
	if err := model.ValidatePassword(newPassword); err != nil {
		s.renderSettings(w, r, http.StatusBadRequest, "The new password is too short.", "")
		return
	}

	user, err := store.GetUser(r.Context(), s.DB, claims.UserID)
	if err != nil || user == nil {
		s.renderSettings(w, r, http.StatusInternalServerError, "Could not load your account.", "")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		s.renderSettings(w, r, http.StatusUnauthorized, "The current password is wrong.", "")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err == nil {
		err = store.UpdateUserPassword(r.Context(), s.DB, claims.UserID, string(hash))
	}
	if err != nil {
		slog.Error("failed to update password", "error", err)
		s.renderSettings(w, r, http.StatusInternalServerError, "Could not save the password.", "")
		return
	}

	slog.Info("user changed own password", "user", claims.UserID, "via", "web")
	s.renderSettings(w, r, http.StatusOK, "", "Password changed.")
}

// ImageSubmit handles POST /settings/image/{slot}.
func (s *Server) ImageSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	slot := r.PathValue("slot")
	if !model.ValidImageSlot(slot) {
		http.NotFound(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		s.renderSettings(w, r, http.StatusBadRequest, "Could not read the upload. Images may be at most 10 MB.", "")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		s.renderSettings(w, r, http.StatusBadRequest, "Choose an image to upload.", "")
		return
	}
	defer file.Close()

	result, err := imaging.Avatar(file)
	if err != nil {
		s.renderSettings(w, r, http.StatusBadRequest, "Only JPEG and PNG images are accepted.", "")
		return
	}

	if err := store.SetUserImage(r.Context(), s.DB, claims.UserID, slot, result.Data, result.MIME); err != nil {
		slog.Error("failed to save image", "error", err)
		s.renderSettings(w, r, http.StatusInternalServerError, "Could not save the image.", "")
		return
	}

	slog.Info("profile image uploaded", "user", claims.UserID, "slot", slot)
	http.Redirect(w, r, "/settings", http.StatusSeeOther)
}

// ImageGet handles GET /images/{slot} (cookie-authenticated).
func (s *Server) ImageGet(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	slot := r.PathValue("slot")
	if !model.ValidImageSlot(slot) {
		http.NotFound(w, r)
		return
	}

	data, mime, err := store.GetUserImage(r.Context(), s.DB, claims.UserID, slot)
	if err != nil {
		slog.Error("failed to get image", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "private, max-age=300")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write image response", "error", err)
	}
}
