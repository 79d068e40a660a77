package minio

import (
	"context"
	"fmt"
	"sync"

	"docchat/internal/config"
	"docchat/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	client  *minio.Client
	once    sync.Once
	initErr error
)

// GetClient initializes and returns a MinIO client instance using the
// singleton pattern, so the connection is established once per process.
func GetClient(cfg *config.MinIOConfig, log *logger.Logger) (*minio.Client, error) {
	once.Do(func() {
		c, err := minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.Secure,
		})
		if err != nil {
			initErr = fmt.Errorf("failed to create MinIO client: %w", err)
			return
		}

		// Simple health check at startup.
		if _, err := c.ListBuckets(context.Background()); err != nil {
			initErr = fmt.Errorf("MinIO startup health check failed: %w", err)
			return
		}

		log.Info("Connected to MinIO at " + cfg.Endpoint)
		client = c
	})

	return client, initErr
}

// HealthCheck verifies the connection is still usable.
func HealthCheck(ctx context.Context) error {
	if client == nil {
		return fmt.Errorf("MinIO client is not initialized")
	}
	if _, err := client.ListBuckets(ctx); err != nil {
		return fmt.Errorf("MinIO health check failed: %w", err)
	}
	return nil
}
