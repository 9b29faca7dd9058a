package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/expenseally/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// RedisLeaseStore implements LeaseStore on Redis. SETNX with a TTL makes
// acquisition atomic across instances, and an abandoned lease frees
// itself when the TTL expires.
type RedisLeaseStore struct {
	client    *redis.Client
	keyPrefix string
}

const leaseKeyPrefix = "scheduler:lease:"

// NewRedisLeaseStore connects to Redis and verifies the connection
func NewRedisLeaseStore(cfg config.RedisConfig) (*RedisLeaseStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisLeaseStore{
		client:    client,
		keyPrefix: leaseKeyPrefix,
	}, nil
}

// NewRedisLeaseStoreWithClient wraps an existing Redis client, sharing a
// connection pool with other components
func NewRedisLeaseStoreWithClient(client *redis.Client, keyPrefix string) *RedisLeaseStore {
	if keyPrefix == "" {
		keyPrefix = leaseKeyPrefix
	}
	return &RedisLeaseStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Acquire takes the lease via SETNX. Returns false when held elsewhere.
func (s *RedisLeaseStore) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	acquired, err := s.client.SetNX(ctx, s.keyPrefix+name, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lease %s: %w", name, err)
	}
	return acquired, nil
}

// Release deletes the lease key
func (s *RedisLeaseStore) Release(ctx context.Context, name string) error {
	if err := s.client.Del(ctx, s.keyPrefix+name).Err(); err != nil {
		return fmt.Errorf("failed to release lease %s: %w", name, err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisLeaseStore) Close() error {
	return s.client.Close()
}

var _ LeaseStore = (*RedisLeaseStore)(nil)
