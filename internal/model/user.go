package model

import (
	"errors"
	"time"
)

// MinPasswordLength is the shortest password accepted on signup, reset or change.
const MinPasswordLength = 8

// ErrPasswordTooShort is returned by ValidatePassword.
var ErrPasswordTooShort = errors.New("password must be at least 8 characters")

// User is an account. Every medication, vitamin and health product belongs to
// exactly one user.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	PartnerName  string    `json:"partnerName,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Image slots a user can upload.
const (
	ImageProfile = "profile"
	ImagePartner = "partner"
)

// ValidImageSlot reports whether slot names an uploadable user image.
func ValidImageSlot(slot string) bool {
	return slot == ImageProfile || slot == ImagePartner
}

// ValidatePassword checks password strength rules.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}
