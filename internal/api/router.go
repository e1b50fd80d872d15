package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/erazemk/lekarna/internal/auth"
	"github.com/erazemk/lekarna/internal/expiry"
	"github.com/erazemk/lekarna/internal/store"
)

// Config holds the API router's dependencies.
type Config struct {
	DB         *sql.DB
	Records    store.Records
	Aggregator *expiry.Aggregator
	JWTSecret  string
	// TokenTTL defaults to auth.DefaultTTL.
	TokenTTL time.Duration
	// ResetTTL defaults to one hour.
	ResetTTL        time.Duration
	RevealResetCode bool
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(cfg Config) http.Handler {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = auth.DefaultTTL
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	clk := clock{Now: cfg.Now, Location: cfg.Aggregator.Location()}

	mux := http.NewServeMux()

	authHandler := &AuthHandler{
		DB:              cfg.DB,
		JWTSecret:       cfg.JWTSecret,
		TokenTTL:        cfg.TokenTTL,
		ResetTTL:        cfg.ResetTTL,
		RevealResetCode: cfg.RevealResetCode,
	}
	usersHandler := &UsersHandler{DB: cfg.DB}
	medicationsHandler := &MedicationsHandler{Records: cfg.Records, clock: clk}
	vitaminsHandler := &VitaminsHandler{Records: cfg.Records, clock: clk}
	productsHandler := &ProductsHandler{Records: cfg.Records}
	expirationsHandler := &ExpirationsHandler{Aggregator: cfg.Aggregator, Now: cfg.Now}

	authMW := AuthMiddleware(cfg.JWTSecret, cfg.DB)
	protect := func(h http.HandlerFunc) http.Handler { return authMW(h) }

	// Public: account access.
	mux.HandleFunc("POST /api/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/forgot-password", authHandler.ForgotPassword)
	mux.HandleFunc("POST /api/auth/reset-password/{token}", authHandler.ResetPassword)

	mux.Handle("PUT /api/auth/password", protect(authHandler.ChangePassword))
	mux.Handle("POST /api/auth/logout", protect(authHandler.Logout))

	// Profile.
	mux.Handle("GET /api/users/me", protect(usersHandler.Me))
	mux.Handle("PUT /api/users/me", protect(usersHandler.UpdateMe))
	mux.Handle("PUT /api/users/me/image/{slot}", protect(usersHandler.UploadImage))
	mux.Handle("GET /api/users/me/image/{slot}", protect(usersHandler.GetImage))

	// Medications.
	mux.Handle("GET /api/medications", protect(medicationsHandler.List))
	mux.Handle("GET /api/medications/expiring", protect(medicationsHandler.Expiring))
	mux.Handle("POST /api/medications", protect(medicationsHandler.Create))
	mux.Handle("GET /api/medications/{id}", protect(medicationsHandler.Get))
	mux.Handle("PUT /api/medications/{id}", protect(medicationsHandler.Update))
	mux.Handle("DELETE /api/medications/{id}", protect(medicationsHandler.Delete))

	// Vitamins.
	mux.Handle("GET /api/vitamins", protect(vitaminsHandler.List))
	mux.Handle("GET /api/vitamins/expiring", protect(vitaminsHandler.Expiring))
	mux.Handle("POST /api/vitamins", protect(vitaminsHandler.Create))
	mux.Handle("GET /api/vitamins/{id}", protect(vitaminsHandler.Get))
	mux.Handle("PUT /api/vitamins/{id}", protect(vitaminsHandler.Update))
	mux.Handle("DELETE /api/vitamins/{id}", protect(vitaminsHandler.Delete))

	// Health products.
	mux.Handle("GET /api/health-products", protect(productsHandler.List))
	mux.Handle("POST /api/health-products", protect(productsHandler.Create))
	mux.Handle("GET /api/health-products/{id}", protect(productsHandler.Get))
	mux.Handle("PUT /api/health-products/{id}", protect(productsHandler.Update))
	mux.Handle("DELETE /api/health-products/{id}", protect(productsHandler.Delete))

	// Expirations.
	mux.Handle("GET /api/expirations/upcoming", protect(expirationsHandler.Upcoming))
	mux.Handle("GET /api/expirations/calendar", protect(expirationsHandler.Calendar))
	mux.Handle("DELETE /api/expirations/{kind}/{id}", protect(expirationsHandler.Delete))

	return mux
}
