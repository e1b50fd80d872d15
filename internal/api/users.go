package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/lekarna/internal/imaging"
	"github.com/erazemk/lekarna/internal/model"
	"github.com/erazemk/lekarna/internal/store"
)

// UsersHandler handles the signed-in user's profile.
type UsersHandler struct {
	DB *sql.DB
}

type updateProfileRequest struct {
	FullName    string `json:"fullName" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email"`
	PartnerName string `json:"partnerName" validate:"max=100"`
}

func (h *UsersHandler) current(w http.ResponseWriter, r *http.Request) *model.User {
	user, err := store.GetUser(r.Context(), h.DB, ownerID(r))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get user")
		return nil
	}
	if user == nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return nil
	}
	return user
}

// Me handles GET /api/users/me.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	if user := h.current(w, r); user != nil {
		jsonResponse(w, http.StatusOK, user)
	}
}

// UpdateMe handles PUT /api/users/me.
func (h *UsersHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if !decodeValid(w, r, &req) {
		return
	}

	err := store.UpdateUserProfile(r.Context(), h.DB, ownerID(r),
		normalizeEmail(req.Email), strings.TrimSpace(req.FullName), strings.TrimSpace(req.PartnerName))
	if errors.Is(err, store.ErrEmailTaken) {
		jsonError(w, http.StatusConflict, "email already registered")
		return
	}
	if err != nil {
		slog.Error("failed to update profile", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	if user := h.current(w, r); user != nil {
		jsonResponse(w, http.StatusOK, user)
	}
}

// UploadImage handles PUT /api/users/me/image/{slot}.
func (h *UsersHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	slot := r.PathValue("slot")
	if !model.ValidImageSlot(slot) {
		jsonError(w, http.StatusBadRequest, "image slot must be profile or partner")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+1<<20)
	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "missing image file")
		return
	}
	defer file.Close()

	result, err := imaging.Avatar(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetUserImage(r.Context(), h.DB, ownerID(r), slot, result.Data, result.MIME); err != nil {
		slog.Error("failed to save image", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to save image")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "image uploaded"})
}

// GetImage handles GET /api/users/me/image/{slot}.
func (h *UsersHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	slot := r.PathValue("slot")
	if !model.ValidImageSlot(slot) {
		jsonError(w, http.StatusBadRequest, "image slot must be profile or partner")
		return
	}

	data, mime, err := store.GetUserImage(r.Context(), h.DB, ownerID(r), slot)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.Write(data)
}
