package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kardex-app/kardex/internal/storage"
)

// UpsertPatient inserts or updates a patient row.
//
// created_at is preserved on update; updated_at always advances.
func (db *DB) UpsertPatient(ctx context.Context, p *storage.Patient) error {
	p.SetDefaults()
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid patient: %w", err)
	}

	query := `
	INSERT INTO patients (id, family_name, given_name, birth_date, sex, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		family_name = excluded.family_name,
		given_name = excluded.given_name,
		birth_date = excluded.birth_date,
		sex = excluded.sex,
		updated_at = excluded.updated_at
	`

	_, err := db.conn.ExecContext(ctx, query,
		p.ID,
		p.FamilyName,
		p.GivenName,
		timeToNullString(p.BirthDate),
		p.Sex,
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert patient %s: %w", p.ID, err)
	}

	return nil
}

// GetPatient retrieves a single patient by ID.
// Returns storage.ErrNotFound if no such patient exists.
func (db *DB) GetPatient(ctx context.Context, id string) (*storage.Patient, error) {
	query := `
	SELECT id, family_name, given_name, birth_date, sex, created_at, updated_at
	FROM patients
	WHERE id = ?
	`

	row := db.conn.QueryRowContext(ctx, query, id)
	p, err := scanPatient(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("patient %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient %s: %w", id, err)
	}
	return p, nil
}

// ListPatients retrieves patients matching the given filter, ordered
// by family name, then given name.
func (db *DB) ListPatients(ctx context.Context, filter storage.ListFilter) ([]*storage.Patient, error) {
	var conditions []string
	var args []interface{}

	if filter.Name != "" {
		conditions = append(conditions, "(family_name LIKE ? OR given_name LIKE ?)")
		pattern := "%" + filter.Name + "%"
		args = append(args, pattern, pattern)
	}

	query := `
	SELECT id, family_name, given_name, birth_date, sex, created_at, updated_at
	FROM patients
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY family_name ASC, given_name ASC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	defer rows.Close()

	var patients []*storage.Patient
	for rows.Next() {
		p, err := scanPatient(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		patients = append(patients, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating patients: %w", err)
	}

	return patients, nil
}

// DeletePatient removes a patient and, via the foreign key cascade,
// every form record keyed to them. Idempotent.
func (db *DB) DeletePatient(ctx context.Context, id string) error {
	query := `DELETE FROM patients WHERE id = ?`
	if _, err := db.conn.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete patient %s: %w", id, err)
	}
	return nil
}

// scanPatient scans one patient row via the given Scan function.
func scanPatient(scan func(dest ...interface{}) error) (*storage.Patient, error) {
	var p storage.Patient
	var birthDate sql.NullString
	var createdAt, updatedAt string

	err := scan(
		&p.ID,
		&p.FamilyName,
		&p.GivenName,
		&birthDate,
		&p.Sex,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		p.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		p.UpdatedAt = t
	}
	p.BirthDate = nullStringToTime(birthDate)

	return &p, nil
}
