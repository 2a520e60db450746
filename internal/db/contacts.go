package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jobcoach/jobcoach/internal/types"
)

const contactColumns = `id, user_id, name, company, role, email, linkedin_url, notes, last_interaction, created_at, updated_at`

func scanContact(row pgx.Row) (*types.Contact, error) {
	var c types.Contact
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Company, &c.Role, &c.Email,
		&c.LinkedInURL, &c.Notes, &c.LastInteraction, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListContacts returns the user's contacts, most recently updated first.
func (db *DB) ListContacts(ctx context.Context, userID uuid.UUID) ([]types.Contact, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+contactColumns+` FROM contacts
		 WHERE user_id = $1
		 ORDER BY updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	contacts := []types.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, *c)
	}
	return contacts, rows.Err()
}

// GetContact returns one contact, or ErrNotFound.
func (db *DB) GetContact(ctx context.Context, userID, id uuid.UUID) (*types.Contact, error) {
	c, err := scanContact(db.pool.QueryRow(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return c, nil
}

// CreateContact inserts a contact owned by userID.
func (db *DB) CreateContact(ctx context.Context, userID uuid.UUID, in *types.ContactInput) (*types.Contact, error) {
	c, err := scanContact(db.pool.QueryRow(ctx,
		`INSERT INTO contacts (user_id, name, company, role, email, linkedin_url, notes, last_interaction)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+contactColumns,
		userID, in.Name, in.Company, in.Role, in.Email, in.LinkedInURL, in.Notes, in.LastInteraction,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return c, nil
}

// UpdateContact replaces the writable fields of a contact, or returns ErrNotFound.
func (db *DB) UpdateContact(ctx context.Context, userID, id uuid.UUID, in *types.ContactInput) (*types.Contact, error) {
	c, err := scanContact(db.pool.QueryRow(ctx,
		`UPDATE contacts
		 SET name = $3, company = $4, role = $5, email = $6, linkedin_url = $7, notes = $8,
		     last_interaction = $9, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+contactColumns,
		id, userID, in.Name, in.Company, in.Role, in.Email, in.LinkedInURL, in.Notes, in.LastInteraction,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}
	return c, nil
}

// DeleteContact removes a contact, or returns ErrNotFound.
func (db *DB) DeleteContact(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM contacts WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
