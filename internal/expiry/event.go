// Package expiry turns a user's medications and vitamins into expiration
// events for the dashboard drawer and the calendar.
package expiry

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/erazemk/lekarna/internal/model"
)

// Kind is the type of item an event was derived from.
type Kind string

// Kinds.
const (
	KindMedication Kind = "Medication"
	KindVitamin    Kind = "Vitamin"
)

// ParseKind reads a kind case-insensitively ("vitamin", "Medication", ...).
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "medication", "medications":
		return KindMedication, nil
	case "vitamin", "vitamins":
		return KindVitamin, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Color is the calendar dot color for the kind.
func (k Kind) Color() string {
	switch k {
	case KindVitamin:
		return "#e36b6b"
	case KindMedication:
		return "#3b82f6"
	}
	return "#9ca3af"
}

// Urgency says how soon an upcoming event expires.
type Urgency string

// Urgencies. There are no others: anything further out is not upcoming.
const (
	UrgencyToday    Urgency = "today"
	UrgencyTomorrow Urgency = "tomorrow"
)

// Event is an expiring item. Urgency is only set for upcoming events.
type Event struct {
	ItemID    string     `json:"itemId"`
	Kind      Kind       `json:"kind"`
	Label     string     `json:"label"`
	Urgency   Urgency    `json:"urgency,omitempty"`
	ExpiresOn civil.Date `json:"expiresOn"`
}

// Marker is one calendar dot.
type Marker struct {
	Kind  Kind   `json:"kind"`
	Color string `json:"color"`
}

func fromMedication(m model.Medication) (Event, bool) {
	if m.DateStop == nil {
		return Event{}, false
	}
	return Event{
		ItemID:    m.ID,
		Kind:      KindMedication,
		Label:     m.Name,
		ExpiresOn: *m.DateStop,
	}, true
}

func fromVitamin(v model.Vitamin) (Event, bool) {
	if v.ExpirationDate == nil {
		return Event{}, false
	}
	return Event{
		ItemID:    v.ID,
		Kind:      KindVitamin,
		Label:     v.SelectedName,
		ExpiresOn: *v.ExpirationDate,
	}, true
}

// urgencyFor places day relative to today.
func urgencyFor(day, today civil.Date) (Urgency, bool) {
	switch day {
	case today:
		return UrgencyToday, true
	case today.AddDays(1):
		return UrgencyTomorrow, true
	}
	return "", false
}
