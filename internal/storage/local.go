package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStore keeps uploaded files in a directory on disk.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the upload directory when missing.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory '%s': %w", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

// Save writes the file under the upload directory and returns its path.
func (s *LocalStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file '%s': %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write file '%s': %w", path, err)
	}
	return path, nil
}

// Remove deletes the stored copy. A file that is already gone is not an error.
func (s *LocalStore) Remove(ctx context.Context, name string) error {
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// compile-time check to ensure LocalStore implements the FileStore interface
var _ FileStore = (*LocalStore)(nil)
