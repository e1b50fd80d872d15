package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"cloud.google.com/go/civil"

	"github.com/erazemk/lekarna/internal/expiry"
	"github.com/erazemk/lekarna/internal/store"
)

// ExpirationsHandler serves the aggregated expiration views.
type ExpirationsHandler struct {
	Aggregator *expiry.Aggregator
	Now        func() time.Time
}

type upcomingResponse struct {
	Events []expiry.Event `json:"events"`
	Today  civil.Date     `json:"today"`
}

type calendarDay struct {
	Markers []expiry.Marker `json:"markers"`
	Events  []expiry.Event  `json:"events"`
}

type calendarResponse struct {
	Days         map[civil.Date]calendarDay `json:"days"`
	SelectedDate *civil.Date                `json:"selectedDate,omitempty"`
	Selected     []expiry.Event             `json:"selected"`
}

func (h *ExpirationsHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// aggregationError writes the response for a failed aggregation.
func aggregationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, expiry.ErrFetch):
		slog.Warn("expiration aggregation failed", "error", err)
		jsonError(w, http.StatusBadGateway, "could not load items")
	case errors.Is(err, expiry.ErrNoOwner):
		jsonError(w, http.StatusUnauthorized, "not authenticated")
	default:
		slog.Error("expiration aggregation failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}

// Upcoming handles GET /api/expirations/upcoming. The optional "at" query
// parameter (RFC 3339) replaces the current time as the reference instant.
func (h *ExpirationsHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	ref := h.now()
	if at := r.URL.Query().Get("at"); at != "" {
		t, err := time.Parse(time.RFC3339, at)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "at must be an RFC 3339 timestamp")
			return
		}
		ref = t
	}

	events, err := h.Aggregator.Upcoming(r.Context(), ownerID(r), ref)
	if err != nil {
		aggregationError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, upcomingResponse{
		Events: emptyIfNil(events),
		Today:  h.Aggregator.Today(ref),
	})
}

// Calendar handles GET /api/expirations/calendar. When "date" is given the
// events of that day are returned in "selected".
func (h *ExpirationsHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	var selected *civil.Date
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := civil.ParseDate(raw)
		if err != nil || !d.IsValid() {
			jsonError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		selected = &d
	}

	cal, err := h.Aggregator.Calendar(r.Context(), ownerID(r))
	if err != nil {
		aggregationError(w, err)
		return
	}

	resp := calendarResponse{
		Days:         make(map[civil.Date]calendarDay, len(cal)),
		SelectedDate: selected,
		Selected:     []expiry.Event{},
	}
	for _, d := range cal.Dates() {
		resp.Days[d] = calendarDay{Markers: cal.Markers(d), Events: cal.On(d)}
	}
	if selected != nil {
		resp.Selected = emptyIfNil(cal.On(*selected))
	}

	jsonResponse(w, http.StatusOK, resp)
}

// Delete handles DELETE /api/expirations/{kind}/{id}. Deleting an item that
// is already gone is not an error.
func (h *ExpirationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	kind, err := expiry.ParseKind(r.PathValue("kind"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "kind must be medication or vitamin")
		return
	}

	err = h.Aggregator.DeleteEvent(r.Context(), ownerID(r), expiry.Event{
		ItemID: r.PathValue("id"),
		Kind:   kind,
	})
	switch {
	case err == nil:
		jsonResponse(w, http.StatusOK, map[string]bool{"deleted": true})
	case errors.Is(err, store.ErrNotFound):
		jsonResponse(w, http.StatusOK, map[string]bool{"deleted": false})
	case errors.Is(err, expiry.ErrDelete):
		slog.Warn("expiring item delete failed", "error", err)
		jsonError(w, http.StatusBadGateway, "could not delete item")
	case errors.Is(err, expiry.ErrNoOwner):
		jsonError(w, http.StatusUnauthorized, "not authenticated")
	default:
		slog.Error("expiring item delete failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}
