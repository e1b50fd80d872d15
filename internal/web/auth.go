package web

import (
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/lekarna/internal/auth"
	"github.com/erazemk/lekarna/internal/store"
)

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "login.html", &PageData{Title: "Log in"})
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	password := r.FormValue("password")

	fail := func(msg string) {
		s.Templates.RenderStatus(w, http.StatusUnauthorized, "login.html", &PageData{Title: "Log in", Error: msg})
	}

	if email == "" || password == "" {
		fail("Enter your email and password.")
		return
	}

	user, err := store.GetUserByEmail(r.Context(), s.DB, email)
	if err != nil || user == nil {
		fail("Wrong email or password.")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Warn("web login failed", "email", email, "remote", r.RemoteAddr)
		fail("Wrong email or password.")
		return
	}

	token, err := auth.GenerateToken(s.JWTSecret, s.TokenTTL, user.ID, user.Email)
	if err != nil {
		fail("Could not log in.")
		return
	}

	maxAge := int(s.TokenTTL.Seconds())
	if maxAge <= 0 {
		maxAge = int(auth.DefaultTTL.Seconds())
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   maxAge,
	})

	slog.Info("user logged in", "user", user.ID, "via", "web")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout handles POST /logout. The token is revoked so a copied cookie stops
// working too.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		if claims, err := auth.ValidateToken(s.JWTSecret, cookie.Value); err == nil {
			if err := store.RevokeToken(r.Context(), s.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
				slog.Error("failed to revoke token", "error", err)
			}
			s.drawers.drop(claims.UserID)
		}
	}
	clearAuthCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
