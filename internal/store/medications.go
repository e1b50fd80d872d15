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

var medicationColumns = []string{
	"id", "owner_id", "name", "dose", "taken_for", "frequency", "times_taken",
	"date_stop", "created_at", "updated_at",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMedication(row rowScanner) (*model.Medication, error) {
	m := &model.Medication{}
	var dateStop sql.NullString
	err := row.Scan(&m.ID, &m.OwnerID, &m.Name, &m.Dose, &m.TakenFor, &m.Frequency,
		&m.TimesTaken, &dateStop, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.DateStop = scanDay(dateStop)
	return m, nil
}

func (s *SQLRecords) listMedications(ctx context.Context, q squirrel.SelectBuilder) ([]model.Medication, error) {
	rows, err := s.query(ctx, q.OrderBy("name", "id"), "listing medications")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meds []model.Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning medication: %w", err)
		}
		meds = append(meds, *m)
	}
	return meds, rows.Err()
}

// ListMedications returns all of the owner's medications.
func (s *SQLRecords) ListMedications(ctx context.Context, ownerID string) ([]model.Medication, error) {
	return s.listMedications(ctx, builder.Select(medicationColumns...).
		From("medications").
		Where(squirrel.Eq{"owner_id": ownerID}))
}

// ListMedicationsExpiring returns medications whose stop date is within [from, to].
func (s *SQLRecords) ListMedicationsExpiring(ctx context.Context, ownerID string, from, to civil.Date) ([]model.Medication, error) {
	return s.listMedications(ctx, builder.Select(medicationColumns...).
		From("medications").
		Where(squirrel.Eq{"owner_id": ownerID}).
		Where(squirrel.GtOrEq{"date_stop": from.String()}).
		Where(squirrel.LtOrEq{"date_stop": to.String()}))
}

// GetMedication returns one medication.
func (s *SQLRecords) GetMedication(ctx context.Context, ownerID, id string) (*model.Medication, error) {
	query, args, err := builder.Select(medicationColumns...).
		From("medications").
		Where(squirrel.Eq{"id": id, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building medication query: %w", err)
	}

	m, err := scanMedication(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting medication: %w", err)
	}
	return m, nil
}

// CreateMedication stores a new medication for the owner.
func (s *SQLRecords) CreateMedication(ctx context.Context, ownerID string, in model.MedicationInput) (*model.Medication, error) {
	id := newID()
	now := time.Now().UTC()

	err := s.exec(ctx, builder.Insert("medications").
		Columns(medicationColumns...).
		Values(id, ownerID, in.Name, in.Dose, in.TakenFor, in.Frequency, in.TimesTaken,
			dayValue(in.DateStop), now, now), "creating medication")
	if err != nil {
		return nil, err
	}

	return s.GetMedication(ctx, ownerID, id)
}

// UpdateMedication replaces the editable fields of a medication.
func (s *SQLRecords) UpdateMedication(ctx context.Context, ownerID, id string, in model.MedicationInput) (*model.Medication, error) {
	err := s.execAffecting(ctx, builder.Update("medications").
		SetMap(map[string]any{
			"name":        in.Name,
			"dose":        in.Dose,
			"taken_for":   in.TakenFor,
			"frequency":   in.Frequency,
			"times_taken": in.TimesTaken,
			"date_stop":   dayValue(in.DateStop),
			"updated_at":  time.Now().UTC(),
		}).
		Where(squirrel.Eq{"id": id, "owner_id": ownerID}), "updating medication")
	if err != nil {
		return nil, err
	}

	return s.GetMedication(ctx, ownerID, id)
}

// DeleteMedication removes a medication.
func (s *SQLRecords) DeleteMedication(ctx context.Context, ownerID, id string) error {
	return s.execAffecting(ctx, builder.Delete("medications").
		Where(squirrel.Eq{"id": id, "owner_id": ownerID}), "deleting medication")
}
