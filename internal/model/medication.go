package model

import (
	"time"

	"cloud.google.com/go/civil"
)

// Medication is a tracked prescription or remedy. DateStop is the last day of
// treatment and doubles as the day the medication expires. A nil DateStop
// means the medication never shows up in expiration views.
type Medication struct {
	ID         string      `json:"id"`
	OwnerID    string      `json:"ownerId"`
	Name       string      `json:"name"`
	Dose       string      `json:"dose,omitempty"`
	TakenFor   string      `json:"takenFor,omitempty"`
	Frequency  string      `json:"frequency,omitempty"`
	TimesTaken string      `json:"timesTaken,omitempty"`
	DateStop   *civil.Date `json:"dateStop,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// MedicationInput holds the caller-editable medication fields.
type MedicationInput struct {
	Name       string
	Dose       string
	TakenFor   string
	Frequency  string
	TimesTaken string
	DateStop   *civil.Date
}
