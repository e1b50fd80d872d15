package store

import (
	"context"
	"testing"

	"github.com/erazemk/lekarna/internal/db"
)

func TestGetJWTSecret_GeneratesAndPersists(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	secret1, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if len(secret1) != 64 { // 32 bytes = 64 hex chars
		t.Fatalf("expected 64 hex chars, got %d", len(secret1))
	}

	secret2, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if secret1 != secret2 {
		t.Fatalf("expected same secret, got %q and %q", secret1, secret2)
	}
}

func TestGetOrCreateSetting(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, ok, _ := GetSetting(ctx, database, "greeting"); ok {
		t.Fatal("expected setting to be absent")
	}

	v, err := GetOrCreateSetting(ctx, database, "greeting", "hello")
	if err != nil {
		t.Fatal(err)
	}
	if v != "hello" {
		t.Errorf("expected 'hello', got %q", v)
	}

	v, _ = GetOrCreateSetting(ctx, database, "greeting", "ignored")
	if v != "hello" {
		t.Errorf("expected stored value to win, got %q", v)
	}
}
