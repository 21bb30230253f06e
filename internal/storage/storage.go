// Package storage defines the persistence contracts consumed by the
// editing engine and the CLI, plus the patient model shared by both.
//
// Form records cross this boundary in their flat persisted shape: a
// map of field key to encoded string. The typed representation lives
// entirely in the record package; keeping the store string-typed means
// a backend never needs to know a form's shape.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when a requested patient or record does not
// exist in the store.
var ErrNotFound = errors.New("not found")

// Patient is the demographic row a bundle keeps per subject.
type Patient struct {
	ID         string
	FamilyName string
	GivenName  string
	BirthDate  *time.Time
	Sex        string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate checks if the patient has valid field values.
func (p *Patient) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(p.FamilyName) == "" {
		return fmt.Errorf("family name is required")
	}
	if p.CreatedAt.IsZero() {
		return fmt.Errorf("created_at is required")
	}
	if p.UpdatedAt.IsZero() {
		return fmt.Errorf("updated_at is required")
	}
	return nil
}

// SetDefaults applies default values for optional fields.
func (p *Patient) SetDefaults() {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
}

// DisplayName returns "Family, Given" for lists.
func (p *Patient) DisplayName() string {
	if p.GivenName == "" {
		return p.FamilyName
	}
	return p.FamilyName + ", " + p.GivenName
}

// RecordStore persists form records keyed by (form, subject).
//
// Implementations must return ErrNotFound (possibly wrapped) from
// LoadRecord when no record exists for the key. Upsert is
// insert-or-update; repeated upserts with identical data are harmless.
type RecordStore interface {
	// LoadRecord returns the flat field map for one subject's record.
	LoadRecord(ctx context.Context, form, subject string) (map[string]string, error)

	// UpsertRecord inserts or replaces one subject's record.
	UpsertRecord(ctx context.Context, form, subject string, fields map[string]string) error

	// DeleteRecord removes one subject's record. Deleting a record
	// that does not exist is not an error.
	DeleteRecord(ctx context.Context, form, subject string) error
}

// ListFilter configures PatientStore.ListPatients.
type ListFilter struct {
	// Name filters by substring match on family or given name
	// (empty = all patients).
	Name string
	// Limit restricts the number of results (0 = no limit).
	Limit int
}

// PatientStore persists patient demographics.
type PatientStore interface {
	UpsertPatient(ctx context.Context, p *Patient) error
	GetPatient(ctx context.Context, id string) (*Patient, error)
	ListPatients(ctx context.Context, filter ListFilter) ([]*Patient, error)
	DeletePatient(ctx context.Context, id string) error
}

// Store is the full bundle persistence surface.
type Store interface {
	RecordStore
	PatientStore
}
