package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/erazemk/lekarna/internal/model"
)

var productColumns = []string{"id", "owner_id", "category", "name", "quantity", "created_at", "updated_at"}

func scanProduct(row rowScanner) (*model.Product, error) {
	p := &model.Product{}
	err := row.Scan(&p.ID, &p.OwnerID, &p.Category, &p.Name, &p.Quantity, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListProducts returns the owner's health products, optionally filtered by category.
func (s *SQLRecords) ListProducts(ctx context.Context, ownerID, category string) ([]model.Product, error) {
	q := builder.Select(productColumns...).
		From("health_products").
		Where(squirrel.Eq{"owner_id": ownerID}).
		OrderBy("category", "name", "id")
	if category != "" {
		q = q.Where(squirrel.Eq{"category": category})
	}

	rows, err := s.query(ctx, q, "listing health products")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning health product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// GetProduct returns one health product.
func (s *SQLRecords) GetProduct(ctx context.Context, ownerID, id string) (*model.Product, error) {
	query, args, err := builder.Select(productColumns...).
		From("health_products").
		Where(squirrel.Eq{"id": id, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building health product query: %w", err)
	}

	p, err := scanProduct(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting health product: %w", err)
	}
	return p, nil
}

// CreateProduct stores a new health product for the owner.
func (s *SQLRecords) CreateProduct(ctx context.Context, ownerID string, in model.ProductInput) (*model.Product, error) {
	id := newID()
	now := time.Now().UTC()

	err := s.exec(ctx, builder.Insert("health_products").
		Columns(productColumns...).
		Values(id, ownerID, in.Category, in.Name, in.Quantity, now, now), "creating health product")
	if err != nil {
		return nil, err
	}

	return s.GetProduct(ctx, ownerID, id)
}

// UpdateProduct replaces the editable fields of a health product.
func (s *SQLRecords) UpdateProduct(ctx context.Context, ownerID, id string, in model.ProductInput) (*model.Product, error) {
	err := s.execAffecting(ctx, builder.Update("health_products").
		SetMap(map[string]any{
			"category":   in.Category,
			"name":       in.Name,
			"quantity":   in.Quantity,
			"updated_at": time.Now().UTC(),
		}).
		Where(squirrel.Eq{"id": id, "owner_id": ownerID}), "updating health product")
	if err != nil {
		return nil, err
	}

	return s.GetProduct(ctx, ownerID, id)
}

// DeleteProduct removes a health product.
func (s *SQLRecords) DeleteProduct(ctx context.Context, ownerID, id string) error {
	return s.execAffecting(ctx, builder.Delete("health_products").
		Where(squirrel.Eq{"id": id, "owner_id": ownerID}), "deleting health product")
}
