package storage

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/minio/minio-go/v7"
)

// MinIOStore mirrors uploads into a MinIO bucket while keeping a working
// copy on disk for the extraction pipeline.
type MinIOStore struct {
	client *minio.Client
	bucket string
	local  *LocalStore
}

// NewMinIOStore ensures the bucket exists and prepares the local working
// directory.
func NewMinIOStore(ctx context.Context, client *minio.Client, bucket, dir string) (*MinIOStore, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket '%s': %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket '%s': %w", bucket, err)
		}
	}

	local, err := NewLocalStore(dir)
	if err != nil {
		return nil, err
	}
	return &MinIOStore{client: client, bucket: bucket, local: local}, nil
}

// Save writes the working copy to disk, then uploads it as an object.
func (s *MinIOStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	path, err := s.local.Save(ctx, name, r)
	if err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		s.local.Remove(ctx, name)
		return "", fmt.Errorf("failed to reopen '%s' for upload: %w", path, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		s.local.Remove(ctx, name)
		return "", err
	}

	_, err = s.client.PutObject(ctx, s.bucket, name, f, stat.Size(), minio.PutObjectOptions{
		ContentType: "application/pdf",
	})
	if err != nil {
		s.local.Remove(ctx, name)
		return "", fmt.Errorf("failed to upload '%s' to MinIO: %w", name, err)
	}
	return path, nil
}

// Remove deletes both the object and the working copy.
func (s *MinIOStore) Remove(ctx context.Context, name string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove '%s' from MinIO: %w", name, err)
	}
	return s.local.Remove(ctx, name)
}

// compile-time check to ensure MinIOStore implements the FileStore interface
var _ FileStore = (*MinIOStore)(nil)
