package bundle

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ImportResult contains statistics about a completed import.
type ImportResult struct {
	// Path is the staged bundle directory inside the library.
	Path string
	// FilesCopied is the number of files written.
	FilesCopied int
}

// Import stages a bundle from src (a directory or a .zip archive)
// into the application-managed library directory, so the application
// never edits the clinician's original copy.
//
// Name collisions inside the library are resolved with a numeric
// suffix: "name", "name-2", "name-3", and so on.
func Import(src, libraryDir string) (*ImportResult, error) {
	info, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read import source %s: %w", src, err)
	}

	if err := os.MkdirAll(libraryDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create library directory: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	dest, err := uniqueDest(libraryDir, base)
	if err != nil {
		return nil, err
	}

	var copied int
	if info.IsDir() {
		copied, err = copyTree(src, dest)
	} else if strings.EqualFold(filepath.Ext(src), ".zip") {
		copied, err = extractZip(src, dest)
	} else {
		return nil, fmt.Errorf("import source %s is neither a directory nor a .zip archive", src)
	}
	if err != nil {
		// A half-staged bundle is worse than none.
		_ = os.RemoveAll(dest)
		return nil, err
	}

	return &ImportResult{Path: dest, FilesCopied: copied}, nil
}

// uniqueDest picks a non-existing directory name inside libraryDir.
func uniqueDest(libraryDir, base string) (string, error) {
	if base == "" || base == "." {
		base = "bundle"
	}
	dest := filepath.Join(libraryDir, base)
	for i := 2; ; i++ {
		if _, err := os.Stat(dest); os.IsNotExist(err) {
			return dest, nil
		}
		if i > 1000 {
			return "", fmt.Errorf("too many bundles named %s in %s", base, libraryDir)
		}
		dest = filepath.Join(libraryDir, fmt.Sprintf("%s-%d", base, i))
	}
}

// copyTree copies a directory recursively. Symlinks are skipped: a
// bundle is self-contained and a link could point outside it.
func copyTree(src, dest string) (int, error) {
	copied := 0
	err := filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		if info.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if err := copyFile(path, target); err != nil {
			return err
		}
		copied++
		return nil
	})
	if err != nil {
		return copied, fmt.Errorf("failed to copy bundle: %w", err)
	}
	return copied, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// extractZip extracts a .zip archive into dest. Entries whose
// resolved path escapes dest are rejected.
func extractZip(src, dest string) (int, error) {
	reader, err := zip.OpenReader(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open archive %s: %w", src, err)
	}
	defer reader.Close()

	copied := 0
	for _, entry := range reader.File {
		target, err := safeJoin(dest, entry.Name)
		if err != nil {
			return copied, err
		}

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return copied, fmt.Errorf("failed to create directory %s: %w", entry.Name, err)
			}
			continue
		}

		if err := extractEntry(entry, target); err != nil {
			return copied, fmt.Errorf("failed to extract %s: %w", entry.Name, err)
		}
		copied++
	}
	return copied, nil
}

func extractEntry(entry *zip.File, target string) error {
	in, err := entry.Open()
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// safeJoin joins an archive entry name onto dest and rejects paths
// that escape it.
func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	if target != dest && !strings.HasPrefix(target, dest+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes the bundle directory", name)
	}
	return target, nil
}
