package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/lekarna/internal/expiry"
)

type dashboardData struct {
	PageData
	Medications int
	Vitamins    int
	Products    int
	Expiring    []expiry.Event
}

func (s *Server) dashboardData(r *http.Request, ownerID string) dashboardData {
	data := dashboardData{PageData: PageData{Title: "Dashboard", User: GetWebClaims(r.Context())}}

	if meds, err := s.Records.ListMedications(r.Context(), ownerID); err == nil {
		data.Medications = len(meds)
	} else {
		slog.Error("failed to list medications for dashboard", "error", err)
	}
	if vits, err := s.Records.ListVitamins(r.Context(), ownerID); err == nil {
		data.Vitamins = len(vits)
	} else {
		slog.Error("failed to list vitamins for dashboard", "error", err)
	}
	if products, err := s.Records.ListProducts(r.Context(), ownerID, ""); err == nil {
		data.Products = len(products)
	} else {
		slog.Error("failed to list health products for dashboard", "error", err)
	}

	return data
}

// Dashboard handles GET /. The expiring drawer is recomputed on every visit.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	data := s.dashboardData(r, claims.UserID)

	drawer := s.drawers.get(s.Aggregator, claims.UserID, s.now())
	events, err := drawer.Refresh(r.Context(), s.now())
	if err != nil {
		slog.Warn("failed to refresh expiring items", "user", claims.UserID, "error", err)
		data.Error = "Could not load expiring items."
	}
	data.Expiring = events

	s.Templates.Render(w, "dashboard.html", &data)
}

// DeleteExpiring handles POST /expiring/{id}/delete. The item is removed from
// the drawer without recomputing it. An item the drawer no longer holds means
// the page was stale, so the drawer is recomputed and shown again instead.
func (s *Server) DeleteExpiring(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	drawer := s.drawers.get(s.Aggregator, claims.UserID, s.now())

	err := drawer.Delete(r.Context(), r.PathValue("id"))
	if err == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := s.dashboardData(r, claims.UserID)
	if errors.Is(err, expiry.ErrNotInDrawer) {
		events, err := drawer.Refresh(r.Context(), s.now())
		if err != nil {
			slog.Warn("failed to refresh expiring items", "user", claims.UserID, "error", err)
		}
		data.Expiring = events
		data.Error = "The list was refreshed. Try again."
		s.Templates.RenderStatus(w, http.StatusConflict, "dashboard.html", &data)
		return
	}

	slog.Warn("failed to delete expiring item", "user", claims.UserID, "error", err)
	data.Expiring = drawer.Items()
	data.Error = "Could not delete the item. Try again."
	s.Templates.RenderStatus(w, http.StatusBadGateway, "dashboard.html", &data)
}
