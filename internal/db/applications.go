package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jobcoach/jobcoach/internal/types"
)

const applicationColumns = `id, user_id, company, position, status, job_url, notes, applied_date, created_at, updated_at`

func scanApplication(row pgx.Row) (*types.Application, error) {
	var a types.Application
	err := row.Scan(&a.ID, &a.UserID, &a.Company, &a.Position, &a.Status,
		&a.JobURL, &a.Notes, &a.AppliedDate, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListApplications returns the user's applications, most recently updated first.
func (db *DB) ListApplications(ctx context.Context, userID uuid.UUID) ([]types.Application, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+applicationColumns+` FROM applications
		 WHERE user_id = $1
		 ORDER BY updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	apps := []types.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

// GetApplication returns one application, or ErrNotFound.
func (db *DB) GetApplication(ctx context.Context, userID, id uuid.UUID) (*types.Application, error) {
	a, err := scanApplication(db.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return a, nil
}

// CreateApplication inserts an application owned by userID.
func (db *DB) CreateApplication(ctx context.Context, userID uuid.UUID, in *types.ApplicationInput) (*types.Application, error) {
	a, err := scanApplication(db.pool.QueryRow(ctx,
		`INSERT INTO applications (user_id, company, position, status, job_url, notes, applied_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+applicationColumns,
		userID, in.Company, in.Position, in.Status, in.JobURL, in.Notes, in.AppliedDate,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	return a, nil
}

// UpdateApplication replaces the writable fields of an application, or returns ErrNotFound.
func (db *DB) UpdateApplication(ctx context.Context, userID, id uuid.UUID, in *types.ApplicationInput) (*types.Application, error) {
	a, err := scanApplication(db.pool.QueryRow(ctx,
		`UPDATE applications
		 SET company = $3, position = $4, status = $5, job_url = $6, notes = $7, applied_date = $8, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+applicationColumns,
		id, userID, in.Company, in.Position, in.Status, in.JobURL, in.Notes, in.AppliedDate,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update application: %w", err)
	}
	return a, nil
}

// DeleteApplication removes an application, or returns ErrNotFound.
func (db *DB) DeleteApplication(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM applications WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
