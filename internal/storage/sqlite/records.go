package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kardex-app/kardex/internal/storage"
)

// LoadRecord returns the flat field map for one subject's form record.
// Returns storage.ErrNotFound if no record exists for the key.
func (db *DB) LoadRecord(ctx context.Context, form, subject string) (map[string]string, error) {
	query := `SELECT fields FROM form_records WHERE form = ? AND subject_id = ?`

	var fieldsJSON string
	err := db.conn.QueryRowContext(ctx, query, form, subject).Scan(&fieldsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %s/%s: %w", form, subject, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record %s/%s: %w", form, subject, err)
	}

	fields := make(map[string]string)
	if fieldsJSON != "" && fieldsJSON != "null" {
		if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record %s/%s: %w", form, subject, err)
		}
	}

	return fields, nil
}

// UpsertRecord inserts or replaces one subject's form record.
func (db *DB) UpsertRecord(ctx context.Context, form, subject string, fields map[string]string) error {
	if form == "" {
		return fmt.Errorf("form is required")
	}
	if subject == "" {
		return fmt.Errorf("subject id is required")
	}

	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to marshal record fields: %w", err)
	}

	query := `
	INSERT INTO form_records (form, subject_id, fields, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(form, subject_id) DO UPDATE SET
		fields = excluded.fields,
		updated_at = excluded.updated_at
	`

	_, err = db.conn.ExecContext(ctx, query,
		form,
		subject,
		string(fieldsJSON),
		time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert record %s/%s: %w", form, subject, err)
	}

	return nil
}

// DeleteRecord removes one subject's form record. Idempotent.
func (db *DB) DeleteRecord(ctx context.Context, form, subject string) error {
	query := `DELETE FROM form_records WHERE form = ? AND subject_id = ?`
	if _, err := db.conn.ExecContext(ctx, query, form, subject); err != nil {
		return fmt.Errorf("failed to delete record %s/%s: %w", form, subject, err)
	}
	return nil
}

// RecordCount returns the number of stored form records, across all
// forms. Used by the bundle status output.
func (db *DB) RecordCount(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM form_records").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// PatientCount returns the number of patients in the bundle.
func (db *DB) PatientCount(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM patients").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count patients: %w", err)
	}
	return count, nil
}
