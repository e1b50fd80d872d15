package model

import "testing"

func TestValidImageSlot(t *testing.T) {
	tests := []struct {
		slot     string
		expected bool
	}{
		{ImageProfile, true},
		{ImagePartner, true},
		{"", false},
		{"avatar", false},
		{"Profile", false},
	}

	for _, tt := range tests {
		got := ValidImageSlot(tt.slot)
		if got != tt.expected {
			t.Errorf("ValidImageSlot(%q) = %v, want %v", tt.slot, got, tt.expected)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"short", true},
		{"1234567", true},
		{"12345678", false},
		{"a-valid-password", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
	}
}
