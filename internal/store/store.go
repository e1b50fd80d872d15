package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/erazemk/lekarna/internal/model"
)

// ErrNotFound is returned when a record does not exist or belongs to another owner.
var ErrNotFound = errors.New("record not found")

// Records is the inventory record store. Every call is scoped to one owner.
// Implementations return ErrNotFound from Get, Update and Delete when the
// record is absent. Expiration days are always calendar dates; values that
// cannot be read as a day come back as nil.
type Records interface {
	ListMedications(ctx context.Context, ownerID string) ([]model.Medication, error)
	ListMedicationsExpiring(ctx context.Context, ownerID string, from, to civil.Date) ([]model.Medication, error)
	GetMedication(ctx context.Context, ownerID, id string) (*model.Medication, error)
	CreateMedication(ctx context.Context, ownerID string, in model.MedicationInput) (*model.Medication, error)
	UpdateMedication(ctx context.Context, ownerID, id string, in model.MedicationInput) (*model.Medication, error)
	DeleteMedication(ctx context.Context, ownerID, id string) error

	ListVitamins(ctx context.Context, ownerID string) ([]model.Vitamin, error)
	ListVitaminsExpiring(ctx context.Context, ownerID string, from, to civil.Date) ([]model.Vitamin, error)
	GetVitamin(ctx context.Context, ownerID, id string) (*model.Vitamin, error)
	CreateVitamin(ctx context.Context, ownerID string, in model.VitaminInput) (*model.Vitamin, error)
	UpdateVitamin(ctx context.Context, ownerID, id string, in model.VitaminInput) (*model.Vitamin, error)
	DeleteVitamin(ctx context.Context, ownerID, id string) error

	ListProducts(ctx context.Context, ownerID, category string) ([]model.Product, error)
	GetProduct(ctx context.Context, ownerID, id string) (*model.Product, error)
	CreateProduct(ctx context.Context, ownerID string, in model.ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, ownerID, id string, in model.ProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, ownerID, id string) error
}

var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// SQLRecords stores records in the SQLite database.
type SQLRecords struct {
	db *sql.DB
}

var _ Records = (*SQLRecords)(nil)

// NewSQLRecords returns a Records backed by db.
func NewSQLRecords(db *sql.DB) *SQLRecords {
	return &SQLRecords{db: db}
}

func newID() string {
	return uuid.NewString()
}

// dayValue converts an optional day to its stored form.
func dayValue(d *civil.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

// scanDay reads a stored day. Anything that is not a valid YYYY-MM-DD is absent.
func scanDay(s sql.NullString) *civil.Date {
	if !s.Valid {
		return nil
	}
	d, err := civil.ParseDate(s.String)
	if err != nil || !d.IsValid() {
		return nil
	}
	return &d
}

// execAffecting runs a mutation and reports ErrNotFound when no row matched.
func (s *SQLRecords) execAffecting(ctx context.Context, q squirrel.Sqlizer, what string) error {
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("building %s query: %w", what, err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLRecords) exec(ctx context.Context, q squirrel.Sqlizer, what string) error {
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("building %s query: %w", what, err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

func (s *SQLRecords) query(ctx context.Context, q squirrel.SelectBuilder, what string) (*sql.Rows, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building %s query: %w", what, err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	return rows, nil
}
