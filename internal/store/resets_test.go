package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/erazemk/lekarna/internal/db"
)

func TestPasswordResetSingleUse(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "reset@example.com", "Reset", "hash")

	code, expiresAt, err := CreatePasswordReset(ctx, database, user.ID, time.Hour)
	if err != nil {
		t.Fatalf("CreatePasswordReset: %v", err)
	}
	if len(code) != ResetCodeLength || strings.ToUpper(code) != code {
		t.Errorf("unexpected code format %q", code)
	}
	if !expiresAt.After(time.Now()) {
		t.Error("expected expiry in the future")
	}

	userID, err := ConsumePasswordReset(ctx, database, code)
	if err != nil {
		t.Fatalf("ConsumePasswordReset: %v", err)
	}
	if userID != user.ID {
		t.Errorf("expected user %s, got %q", user.ID, userID)
	}

	userID, _ = ConsumePasswordReset(ctx, database, code)
	if userID != "" {
		t.Error("expected code to be single-use")
	}
}

func TestPasswordResetExpired(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "late@example.com", "Late", "hash")
	code, _, _ := CreatePasswordReset(ctx, database, user.ID, -time.Minute)

	userID, err := ConsumePasswordReset(ctx, database, code)
	if err != nil {
		t.Fatalf("ConsumePasswordReset: %v", err)
	}
	if userID != "" {
		t.Error("expected expired code to be rejected")
	}
}

func TestPasswordResetReplacesOlderCode(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "twice@example.com", "Twice", "hash")
	first, _, _ := CreatePasswordReset(ctx, database, user.ID, time.Hour)
	second, _, _ := CreatePasswordReset(ctx, database, user.ID, time.Hour)
	if first == second {
		t.Skip("codes collided")
	}

	if id, _ := ConsumePasswordReset(ctx, database, first); id != "" {
		t.Error("expected first code to be invalidated")
	}
	if id, _ := ConsumePasswordReset(ctx, database, second); id != user.ID {
		t.Error("expected second code to work")
	}
}
