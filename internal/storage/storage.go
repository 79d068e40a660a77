package storage

import (
	"context"
	"io"
)

// FileStore persists uploaded documents. Save returns the local path of the
// stored copy so the extraction pipeline can read it from disk.
type FileStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Remove(ctx context.Context, name string) error
}
