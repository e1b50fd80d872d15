package web

import (
	"net/http"

	webembed "github.com/erazemk/lekarna/web"
)

// NewRouter creates the web page router with all page routes registered. s
// must have everything but Templates set.
func NewRouter(s *Server) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}
	s.Templates = templates
	s.drawers.ttl = s.TokenTTL

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(s.JWTSecret, s.DB)
	protect := func(h http.HandlerFunc) http.Handler { return cookieAuth(h) }

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public routes.
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("POST /logout", s.Logout)

	// Authenticated routes.
	mux.Handle("GET /{$}", protect(s.Dashboard))
	mux.Handle("POST /expiring/{id}/delete", protect(s.DeleteExpiring))
	mux.Handle("GET /calendar", protect(s.CalendarPage))

	mux.Handle("GET /medications", protect(s.MedicationsPage))
	mux.Handle("POST /medications", protect(s.MedicationCreateSubmit))
	mux.Handle("GET /medications/{id}", protect(s.MedicationEditPage))
	mux.Handle("POST /medications/{id}", protect(s.MedicationUpdateSubmit))
	mux.Handle("POST /medications/{id}/delete", protect(s.MedicationDeleteSubmit))

	mux.Handle("GET /vitamins", protect(s.VitaminsPage))
	mux.Handle("POST /vitamins", protect(s.VitaminCreateSubmit))
	mux.Handle("GET /vitamins/{id}", protect(s.VitaminEditPage))
	mux.Handle("POST /vitamins/{id}", protect(s.VitaminUpdateSubmit))
	mux.Handle("POST /vitamins/{id}/delete", protect(s.VitaminDeleteSubmit))

	mux.Handle("GET /health-products", protect(s.ProductsPage))
	mux.Handle("POST /health-products", protect(s.ProductCreateSubmit))
	mux.Handle("GET /health-products/{id}", protect(s.ProductEditPage))
	mux.Handle("POST /health-products/{id}", protect(s.ProductUpdateSubmit))
	mux.Handle("POST /health-products/{id}/delete", protect(s.ProductDeleteSubmit))

	mux.Handle("GET /settings", protect(s.SettingsPage))
	mux.Handle("POST /settings/profile", protect(s.ProfileSubmit))
	mux.Handle("POST /settings/password", protect(s.PasswordSubmit))
	mux.Handle("POST /settings/image/{slot}", protect(s.ImageSubmit))
	mux.Handle("GET /images/{slot}", protect(s.ImageGet))

	return mux, nil
}
