package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kardex-app/kardex/internal/storage"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "chart.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testPatient(id string) *storage.Patient {
	birth := time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC)
	return &storage.Patient{
		ID:         id,
		FamilyName: "Moreau",
		GivenName:  "Lucie",
		BirthDate:  &birth,
		Sex:        "F",
	}
}

func TestOpen_CreatesSchema(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	// Idempotent re-init.
	require.NoError(t, db.InitSchemaContext(ctx))

	n, err := db.PatientCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestPatients_CRUD(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	p := testPatient("p-001")
	require.NoError(t, db.UpsertPatient(ctx, p))

	got, err := db.GetPatient(ctx, "p-001")
	require.NoError(t, err)
	assert.Equal(t, "Moreau", got.FamilyName)
	assert.Equal(t, "Lucie", got.GivenName)
	require.NotNil(t, got.BirthDate)
	assert.Equal(t, "2024-05-17", got.BirthDate.Format("2006-01-02"))

	// Update keeps created_at, advances updated_at.
	created := got.CreatedAt
	p.GivenName = "Lucie-Anne"
	p.UpdatedAt = time.Now().Add(time.Second)
	require.NoError(t, db.UpsertPatient(ctx, p))

	got, err = db.GetPatient(ctx, "p-001")
	require.NoError(t, err)
	assert.Equal(t, "Lucie-Anne", got.GivenName)
	assert.Equal(t, created.Format(time.RFC3339), got.CreatedAt.Format(time.RFC3339))

	require.NoError(t, db.DeletePatient(ctx, "p-001"))
	_, err = db.GetPatient(ctx, "p-001")
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	// Deleting again is fine.
	require.NoError(t, db.DeletePatient(ctx, "p-001"))
}

func TestPatients_Validation(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	err := db.UpsertPatient(ctx, &storage.Patient{ID: "p-x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "family name is required")
}

func TestListPatients(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for _, p := range []*storage.Patient{
		{ID: "p-1", FamilyName: "Moreau", GivenName: "Lucie"},
		{ID: "p-2", FamilyName: "Aubert", GivenName: "Theo"},
		{ID: "p-3", FamilyName: "Moreau", GivenName: "Adrien"},
	} {
		require.NoError(t, db.UpsertPatient(ctx, p))
	}

	all, err := db.ListPatients(ctx, storage.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Ordered by family then given name.
	assert.Equal(t, "p-2", all[0].ID)
	assert.Equal(t, "p-3", all[1].ID)
	assert.Equal(t, "p-1", all[2].ID)

	filtered, err := db.ListPatients(ctx, storage.ListFilter{Name: "Moreau"})
	require.NoError(t, err)
	assert.Len(t, filtered, 2)

	limited, err := db.ListPatients(ctx, storage.ListFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRecords_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.UpsertPatient(ctx, testPatient("p-001")))

	fields := map[string]string{
		"weightKg":      "3.2",
		"complications": "Jaundice, Preterm",
		"notes":         "",
	}
	require.NoError(t, db.UpsertRecord(ctx, "perinatal", "p-001", fields))

	got, err := db.LoadRecord(ctx, "perinatal", "p-001")
	require.NoError(t, err)
	assert.Equal(t, fields, got)

	// Replace wins over insert for the same key.
	fields["weightKg"] = "3.5"
	require.NoError(t, db.UpsertRecord(ctx, "perinatal", "p-001", fields))
	got, err = db.LoadRecord(ctx, "perinatal", "p-001")
	require.NoError(t, err)
	assert.Equal(t, "3.5", got["weightKg"])

	n, err := db.RecordCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRecords_NotFound(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.LoadRecord(ctx, "perinatal", "p-missing")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestRecords_SeparatePerForm(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.UpsertPatient(ctx, testPatient("p-001")))
	require.NoError(t, db.UpsertRecord(ctx, "perinatal", "p-001", map[string]string{"weightKg": "3.2"}))
	require.NoError(t, db.UpsertRecord(ctx, "pasthistory", "p-001", map[string]string{"conditions": "Asthma"}))

	peri, err := db.LoadRecord(ctx, "perinatal", "p-001")
	require.NoError(t, err)
	pmh, err := db.LoadRecord(ctx, "pasthistory", "p-001")
	require.NoError(t, err)

	assert.NotContains(t, peri, "conditions")
	assert.Equal(t, "Asthma", pmh["conditions"])
}

func TestRecords_CascadeOnPatientDelete(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.UpsertPatient(ctx, testPatient("p-001")))
	require.NoError(t, db.UpsertRecord(ctx, "perinatal", "p-001", map[string]string{"weightKg": "3.2"}))

	require.NoError(t, db.DeletePatient(ctx, "p-001"))

	_, err := db.LoadRecord(ctx, "perinatal", "p-001")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestStoreInterface(t *testing.T) {
	// The DB must satisfy the full persistence surface.
	var _ storage.Store = (*DB)(nil)
}
