// Package tempdir provides uniquely named scratch directories that are
// removed when the caller is done with them.
package tempdir

import (
	"fmt"
	"os"
	"path/filepath"
)

// Pattern is the os.MkdirTemp pattern used for every directory.
const Pattern = "hybrid-*"

// Dir is a scoped temporary directory.
type Dir struct {
	path string
}

// New creates a directory under base. An empty base uses os.TempDir.
func New(base string) (*Dir, error) {
	path, err := os.MkdirTemp(base, Pattern)
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	return &Dir{path: path}, nil
}

// Path returns the directory path.
func (d *Dir) Path() string { return d.path }

// RelPath returns the path of name inside the directory.
func (d *Dir) RelPath(name string) string {
	return filepath.Join(d.path, name)
}

// WriteFile writes data to name inside the directory and returns its path.
func (d *Dir) WriteFile(name string, data []byte) (string, error) {
	path := d.RelPath(name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// Remove deletes the directory and everything in it. Calling Remove more
// than once is safe.
func (d *Dir) Remove() error {
	if d.path == "" {
		return nil
	}
	err := os.RemoveAll(d.path)
	d.path = ""
	return err
}
