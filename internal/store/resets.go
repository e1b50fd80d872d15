package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"time"
)

// resetAlphabet is used for reset codes that are typed in by hand.
const resetAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// ResetCodeLength is the number of characters in a password reset code.
const ResetCodeLength = 6

func generateResetCode() (string, error) {
	code := make([]byte, ResetCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(resetAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = resetAlphabet[n.Int64()]
	}
	return string(code), nil
}

// CreatePasswordReset issues a single-use reset code for the user. Earlier
// unused codes for the same user are invalidated.
func CreatePasswordReset(ctx context.Context, db *sql.DB, userID string, ttl time.Duration) (string, time.Time, error) {
	code, err := generateResetCode()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generating reset code: %w", err)
	}
	expiresAt := time.Now().Add(ttl).UTC()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM password_resets WHERE user_id = ? AND used_at IS NULL`, userID,
	); err != nil {
		return "", time.Time{}, fmt.Errorf("clearing reset codes: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO password_resets (token, user_id, expires_at) VALUES (?, ?, ?)`,
		code, userID, expiresAt,
	); err != nil {
		return "", time.Time{}, fmt.Errorf("storing reset code: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", time.Time{}, fmt.Errorf("committing reset code: %w", err)
	}

	return code, expiresAt, nil
}

// ConsumePasswordReset marks a reset code as used and returns its user ID.
// It returns an empty ID when the code is unknown, used or expired.
func ConsumePasswordReset(ctx context.Context, db *sql.DB, code string) (string, error) {
	now := time.Now().UTC()

	var userID string
	err := db.QueryRowContext(ctx,
		`UPDATE password_resets SET used_at = ?
		 WHERE token = ? AND used_at IS NULL AND expires_at > ?
		 RETURNING user_id`,
		now, code, now,
	).Scan(&userID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("consuming reset code: %w", err)
	}
	return userID, nil
}
