package bundle

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesLayout(t *testing.T) {
	root := t.TempDir()

	b, err := Open(root)
	require.NoError(t, err)
	defer b.Close()

	assert.FileExists(t, filepath.Join(root, DatabaseName))
	assert.DirExists(t, filepath.Join(root, DocumentsDirName))

	n, err := b.DB().PatientCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestOpen_MissingRoot(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestOpen_RootIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := Open(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestDocuments(t *testing.T) {
	root := t.TempDir()
	b, err := Open(root)
	require.NoError(t, err)
	defer b.Close()

	// No folder yet: no documents, no error.
	docs, err := b.Documents("p-001")
	require.NoError(t, err)
	assert.Empty(t, docs)

	dir := filepath.Join(b.DocumentsDir(), "p-001")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b-referral.pdf"), []byte("pdf"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a-xray.png"), []byte("png"), 0644))

	docs, err = b.Documents("p-001")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	// Sorted by name; subdirectories are skipped.
	assert.Equal(t, "a-xray.png", docs[0].Name)
	assert.Equal(t, "b-referral.pdf", docs[1].Name)
	assert.Equal(t, int64(3), docs[0].Size)

	_, err = b.Documents("  ")
	require.Error(t, err)
}
