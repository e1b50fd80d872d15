package model

import "time"

// Product is a health product kept in stock (bandages, thermometers, ...).
// Products do not expire.
type Product struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Category  string    `json:"category"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProductInput holds the caller-editable product fields.
type ProductInput struct {
	Category string
	Name     string
	Quantity int
}
