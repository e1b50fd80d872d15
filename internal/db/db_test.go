package db

import (
	"context"
	"path/filepath"
	"testing"
)

func TestMigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lekarna.sqlite3")

	database, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	if err := Migrate(ctx, database); err != nil {
		t.Fatalf("first Migrate: %v", err)
	}
	if err := Migrate(ctx, database); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	for _, table := range []string{"users", "settings", "revoked_tokens", "medications", "vitamins", "health_products", "password_resets"} {
		var name string
		err := database.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestOpenEnablesForeignKeys(t *testing.T) {
	database := NewTestDB(t)

	var enabled int
	if err := database.QueryRow(`PRAGMA foreign_keys`).Scan(&enabled); err != nil {
		t.Fatalf("reading pragma: %v", err)
	}
	if enabled != 1 {
		t.Errorf("expected foreign_keys=1, got %d", enabled)
	}
}

func TestDSN(t *testing.T) {
	got := dsn("data.sqlite3")
	want := "data.sqlite3?_pragma=journal_mode%28WAL%29&_pragma=busy_timeout%285000%29&_pragma=foreign_keys%28ON%29&_pragma=synchronous%28NORMAL%29"
	if got != want {
		t.Errorf("dsn = %q, want %q", got, want)
	}
}
