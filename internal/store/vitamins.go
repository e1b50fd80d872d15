package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Masterminds/squirrel"

	"github.com/erazemk/lekarna/internal/model"
)

var vitaminColumns = []string{
	"id", "owner_id", "selected_type", "selected_name", "quantity",
	"expiration_date", "created_at", "updated_at",
}

func scanVitamin(row rowScanner) (*model.Vitamin, error) {
	v := &model.Vitamin{}
	var expires sql.NullString
	err := row.Scan(&v.ID, &v.OwnerID, &v.SelectedType, &v.SelectedName, &v.Quantity,
		&expires, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	v.ExpirationDate = scanDay(expires)
	return v, nil
}

func (s *SQLRecords) listVitamins(ctx context.Context, q squirrel.SelectBuilder) ([]model.Vitamin, error) {
	rows, err := s.query(ctx, q.OrderBy("selected_name", "id"), "listing vitamins")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vits []model.Vitamin
	for rows.Next() {
		v, err := scanVitamin(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning vitamin: %w", err)
		}
		vits = append(vits, *v)
	}
	return vits, rows.Err()
}

// ListVitamins returns all of the owner's vitamins.
func (s *SQLRecords) ListVitamins(ctx context.Context, ownerID string) ([]model.Vitamin, error) {
	return s.listVitamins(ctx, builder.Select(vitaminColumns...).
		From("vitamins").
		Where(squirrel.Eq{"owner_id": ownerID}))
}

// ListVitaminsExpiring returns vitamins whose expiration date is within [from, to].
func (s *SQLRecords) ListVitaminsExpiring(ctx context.Context, ownerID string, from, to civil.Date) ([]model.Vitamin, error) {
	return s.listVitamins(ctx, builder.Select(vitaminColumns...).
		From("vitamins").
		Where(squirrel.Eq{"owner_id": ownerID}).
		Where(squirrel.GtOrEq{"expiration_date": from.String()}).
		Where(squirrel.LtOrEq{"expiration_date": to.String()}))
}

// GetVitamin returns one vitamin.
func (s *SQLRecords) GetVitamin(ctx context.Context, ownerID, id string) (*model.Vitamin, error) {
	query, args, err := builder.Select(vitaminColumns...).
		From("vitamins").
		Where(squirrel.Eq{"id": id, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building vitamin query: %w", err)
	}

	v, err := scanVitamin(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting vitamin: %w", err)
	}
	return v, nil
}

// CreateVitamin stores a new vitamin for the owner.
func (s *SQLRecords) CreateVitamin(ctx context.Context, ownerID string, in model.VitaminInput) (*model.Vitamin, error) {
	id := newID()
	now := time.Now().UTC()

	err := s.exec(ctx, builder.Insert("vitamins").
		Columns(vitaminColumns...).
		Values(id, ownerID, in.SelectedType, in.SelectedName, in.Quantity,
			dayValue(in.ExpirationDate), now, now), "creating vitamin")
	if err != nil {
		return nil, err
	}

	return s.GetVitamin(ctx, ownerID, id)
}

// UpdateVitamin replaces the editable fields of a vitamin.
func (s *SQLRecords) UpdateVitamin(ctx context.Context, ownerID, id string, in model.VitaminInput) (*model.Vitamin, error) {
	err := s.execAffecting(ctx, builder.Update("vitamins").
		SetMap(map[string]any{
			"selected_type":   in.SelectedType,
			"selected_name":   in.SelectedName,
			"quantity":        in.Quantity,
			"expiration_date": dayValue(in.ExpirationDate),
			"updated_at":      time.Now().UTC(),
		}).
		Where(squirrel.Eq{"id": id, "owner_id": ownerID}), "updating vitamin")
	if err != nil {
		return nil, err
	}

	return s.GetVitamin(ctx, ownerID, id)
}

// DeleteVitamin removes a vitamin.
func (s *SQLRecords) DeleteVitamin(ctx context.Context, ownerID, id string) error {
	return s.execAffecting(ctx, builder.Delete("vitamins").
		Where(squirrel.Eq{"id": id, "owner_id": ownerID}), "deleting vitamin")
}
