package redis

import (
	"context"
	"fmt"
	"sync"

	"docchat/internal/config"
	"docchat/pkg/logger"

	"github.com/go-redis/redis/v8"
)

var (
	client  *redis.Client
	once    sync.Once
	initErr error
)

// GetClient initializes and returns a Redis client instance using the
// singleton pattern, so the connection is established once per process.
func GetClient(cfg *config.RedisConfig, log *logger.Logger) (*redis.Client, error) {
	once.Do(func() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		})

		if err := rdb.Ping(context.Background()).Err(); err != nil {
			initErr = fmt.Errorf("failed to connect to Redis: %w", err)
			return
		}

		log.Info("Connected to Redis at " + cfg.Address)
		client = rdb
	})

	return client, initErr
}

// Close safely shuts down the singleton connection.
func Close() error {
	if client != nil {
		return client.Close()
	}
	return nil
}

// HealthCheck verifies the connection is still usable.
func HealthCheck(ctx context.Context) error {
	if client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return client.Ping(ctx).Err()
}
