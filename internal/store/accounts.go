package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/lekarna/internal/model"
)

// GeneratedPasswordLength is the length of passwords made for new accounts.
const GeneratedPasswordLength = 16

const passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"

// GeneratePassword creates a random password of the given length.
func GeneratePassword(length int) (string, error) {
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(passwordAlphabet))))
		if err != nil {
			return "", err
		}
		result[i] = passwordAlphabet[n.Int64()]
	}
	return string(result), nil
}

// CreateAccount creates an account with a generated password and returns the
// user together with the password in plain text. An empty fullName falls back
// to the local part of the email.
func CreateAccount(ctx context.Context, db *sql.DB, email, fullName string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if fullName = strings.TrimSpace(fullName); fullName == "" {
		fullName, _, _ = strings.Cut(email, "@")
	}

	password, err := GeneratePassword(GeneratedPasswordLength)
	if err != nil {
		return nil, "", fmt.Errorf("generating password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}

	user, err := CreateUser(ctx, db, email, fullName, string(hash))
	if err != nil {
		return nil, "", fmt.Errorf("creating account: %w", err)
	}
	return user, password, nil
}
