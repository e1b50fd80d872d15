package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"cloud.google.com/go/civil"

	"github.com/erazemk/lekarna/internal/model"
	"github.com/erazemk/lekarna/internal/store"
)

// clock supplies the current time and the zone calendar days are read in.
type clock struct {
	Now      func() time.Time
	Location *time.Location
}

func (c clock) today() civil.Date {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return model.DayOf(now(), c.Location)
}

// parseDayField parses an optional date field, writing a 400 when it is
// present but unreadable.
func (c clock) parseDayField(w http.ResponseWriter, field, value string) (*civil.Date, bool) {
	d, err := model.ParseOptionalDay(value, c.Location)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": map[string]string{field: "date"},
		})
		return nil, false
	}
	return d, true
}

// recordError maps a store error to a response.
func recordError(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, what+" not found")
		return
	}
	slog.Error("record store failed", "record", what, "error", err)
	jsonError(w, http.StatusInternalServerError, "failed to access "+what)
}
