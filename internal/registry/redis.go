package registry

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "docchat:filename:"

// RedisRegistry is a Registry backed by Redis SETNX, so reservations hold
// across multiple service instances.
type RedisRegistry struct {
	client *redis.Client
}

// NewRedisRegistry wraps an existing Redis client.
func NewRedisRegistry(client *redis.Client) *RedisRegistry {
	return &RedisRegistry{client: client}
}

// Reserve claims the filename, failing when it is already held.
func (r *RedisRegistry) Reserve(ctx context.Context, filename string) error {
	ok, err := r.client.SetNX(ctx, keyPrefix+filename, 1, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to reserve filename in redis: %w", err)
	}
	if !ok {
		return ErrAlreadyReserved
	}
	return nil
}

// Release frees the filename for future uploads.
func (r *RedisRegistry) Release(ctx context.Context, filename string) error {
	if err := r.client.Del(ctx, keyPrefix+filename).Err(); err != nil {
		return fmt.Errorf("failed to release filename in redis: %w", err)
	}
	return nil
}

// compile-time check to ensure RedisRegistry implements the Registry interface
var _ Registry = (*RedisRegistry)(nil)
