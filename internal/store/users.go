package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/erazemk/lekarna/internal/model"
)

// ErrEmailTaken is returned when another account already uses the email.
var ErrEmailTaken = errors.New("email already registered")

const userColumns = `id, email, full_name, partner_name, password_hash, created_at`

func scanUser(row rowScanner) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PartnerName, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

// CreateUser creates a new account.
func CreateUser(ctx context.Context, db *sql.DB, email, fullName, passwordHash string) (*model.User, error) {
	id := newID()
	_, err := db.ExecContext(ctx,
		`INSERT INTO users (id, email, full_name, password_hash) VALUES (?, ?, ?, ?)`,
		id, email, fullName, passwordHash,
	)
	if isUniqueViolation(err) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID, or nil if there is none.
func GetUser(ctx context.Context, db *sql.DB, id string) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByEmail returns a user by email (case-insensitive), or nil if there is none.
func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

// UpdateUserProfile updates a user's name, email and partner name.
func UpdateUserProfile(ctx context.Context, db *sql.DB, id, email, fullName, partnerName string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET email = ?, full_name = ?, partner_name = ? WHERE id = ?`,
		email, fullName, partnerName, id,
	)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("updating user profile: %w", err)
	}
	return nil
}

// UpdateUserPassword updates a user's password hash.
func UpdateUserPassword(ctx context.Context, db *sql.DB, id, passwordHash string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}

// imageColumns maps an image slot to its data and MIME columns.
var imageColumns = map[string][2]string{
	model.ImageProfile: {"profile_image", "profile_image_mime"},
	model.ImagePartner: {"partner_image", "partner_image_mime"},
}

// SetUserImage stores an image in one of the user's image slots.
func SetUserImage(ctx context.Context, db *sql.DB, id, slot string, image []byte, mime string) error {
	cols, ok := imageColumns[slot]
	if !ok {
		return fmt.Errorf("unknown image slot %q", slot)
	}

	_, err := db.ExecContext(ctx,
		`UPDATE users SET `+cols[0]+` = ?, `+cols[1]+` = ? WHERE id = ?`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting user image: %w", err)
	}
	return nil
}

// GetUserImage returns the image in a user's slot and its MIME type.
// A nil slice means no image has been uploaded.
func GetUserImage(ctx context.Context, db *sql.DB, id, slot string) ([]byte, string, error) {
	cols, ok := imageColumns[slot]
	if !ok {
		return nil, "", fmt.Errorf("unknown image slot %q", slot)
	}

	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT `+cols[0]+`, `+cols[1]+` FROM users WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting user image: %w", err)
	}
	return image, mime.String, nil
}
