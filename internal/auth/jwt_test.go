package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret-key"

	token, err := GenerateToken(secret, time.Hour, "user-1", "ana@example.com")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	if claims.UserID != "user-1" {
		t.Errorf("expected uid 'user-1', got %q", claims.UserID)
	}
	if claims.Email != "ana@example.com" {
		t.Errorf("expected email 'ana@example.com', got %q", claims.Email)
	}
	if claims.ID == "" {
		t.Error("expected a JTI")
	}
}

func TestTokensHaveUniqueJTI(t *testing.T) {
	a, _ := GenerateToken("s", time.Hour, "u", "e")
	b, _ := GenerateToken("s", time.Hour, "u", "e")
	ca, _ := ValidateToken("s", a)
	cb, _ := ValidateToken("s", b)
	if ca.ID == cb.ID {
		t.Error("expected distinct JTIs")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _ := GenerateToken("secret1", time.Hour, "u", "e")

	_, err := ValidateToken("secret2", token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateTokenInvalid(t *testing.T) {
	_, err := ValidateToken("secret", "not-a-token")
	if err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	claims := Claims{
		UserID: "u",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ValidateToken("s", signed); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected expired token to be rejected, got %v", err)
	}
}

func TestValidateTokenRejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{
		UserID: "u",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("s"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ValidateToken("s", signed); err == nil {
		t.Error("expected HS512 token to be rejected")
	}
}

func TestTokenTTL(t *testing.T) {
	token, _ := GenerateToken("test", 2*time.Hour, "u", "e")
	claims, _ := ValidateToken("test", token)

	expected := time.Now().Add(2 * time.Hour)
	diff := claims.ExpiresAt.Time.Sub(expected)
	if diff < -5*time.Second || diff > 5*time.Second {
		t.Errorf("expiry off by %v", diff)
	}

	token, _ = GenerateToken("test", 0, "u", "e")
	claims, _ = ValidateToken("test", token)
	diff = claims.ExpiresAt.Time.Sub(time.Now().Add(DefaultTTL))
	if diff < -5*time.Second || diff > 5*time.Second {
		t.Errorf("default expiry off by %v", diff)
	}
}
