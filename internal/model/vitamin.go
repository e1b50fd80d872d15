package model

import (
	"time"

	"cloud.google.com/go/civil"
)

// Vitamin is a supplement package with an expiration date.
type Vitamin struct {
	ID             string      `json:"id"`
	OwnerID        string      `json:"ownerId"`
	SelectedType   string      `json:"selectedType,omitempty"`
	SelectedName   string      `json:"selectedName"`
	Quantity       int         `json:"quantity"`
	ExpirationDate *civil.Date `json:"expirationDate,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// VitaminInput holds the caller-editable vitamin fields.
type VitaminInput struct {
	SelectedType   string
	SelectedName   string
	Quantity       int
	ExpirationDate *civil.Date
}
