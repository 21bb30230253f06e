// Package bundle handles the on-disk patient bundle: a directory
// holding the chart.db database and a documents/ subfolder with the
// scanned or attached files per patient.
//
// Layout:
//
//	<root>/
//	    chart.db          SQLite database (patients + form records)
//	    documents/
//	        <patientID>/  attached files for one patient
package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kardex-app/kardex/internal/storage/sqlite"
)

// DatabaseName is the database filename inside a bundle.
const DatabaseName = "chart.db"

// DocumentsDirName is the documents subfolder inside a bundle.
const DocumentsDirName = "documents"

// Bundle is an opened patient bundle.
type Bundle struct {
	root string
	db   *sqlite.DB
}

// Open opens the bundle rooted at the given directory, creating the
// database and documents folder if they don't exist yet. The caller
// MUST call Close() when done.
func Open(root string) (*Bundle, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("bundle %s is not a directory", root)
	}

	if err := os.MkdirAll(filepath.Join(root, DocumentsDirName), 0755); err != nil {
		return nil, fmt.Errorf("failed to create documents directory: %w", err)
	}

	db, err := sqlite.Open(filepath.Join(root, DatabaseName))
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle database: %w", err)
	}

	return &Bundle{root: root, db: db}, nil
}

// Close releases the bundle's database connection.
func (b *Bundle) Close() error {
	return b.db.Close()
}

// Root returns the bundle's root directory.
func (b *Bundle) Root() string {
	return b.root
}

// DB returns the bundle's record store.
func (b *Bundle) DB() *sqlite.DB {
	return b.db
}

// DocumentsDir returns the bundle's documents directory.
func (b *Bundle) DocumentsDir() string {
	return filepath.Join(b.root, DocumentsDirName)
}

// DocumentInfo describes one file under a patient's documents folder.
type DocumentInfo struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Documents lists the files attached to one patient, sorted by name.
// A patient without a documents folder has no documents; that is not
// an error.
func (b *Bundle) Documents(subject string) ([]DocumentInfo, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, fmt.Errorf("subject id is required")
	}

	dir := filepath.Join(b.DocumentsDir(), subject)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []DocumentInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read documents for %s: %w", subject, err)
	}

	var docs []DocumentInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		docs = append(docs, DocumentInfo{
			Name:    entry.Name(),
			Path:    filepath.Join(dir, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs, nil
}
