package cache

import (
	"fmt"

	"github.com/expenseally/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// LeaseStoreFactory creates lease stores based on configuration
type LeaseStoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// LeaseStoreFactoryOption is a functional option for the factory
type LeaseStoreFactoryOption func(*LeaseStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) LeaseStoreFactoryOption {
	return func(f *LeaseStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back
// to the in-memory store. Multi-instance deployments should disable it:
// a local lease cannot stop another instance from running the same job.
func WithInMemoryFallback(allow bool) LeaseStoreFactoryOption {
	return func(f *LeaseStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewLeaseStoreFactory creates a new factory
func NewLeaseStoreFactory(cfg config.RedisConfig, opts ...LeaseStoreFactoryOption) *LeaseStoreFactory {
	f := &LeaseStoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Create returns a Redis-backed lease store, or the in-memory store when
// Redis is unreachable and fallback is allowed
func (f *LeaseStoreFactory) Create() (LeaseStore, error) {
	store, err := NewRedisLeaseStore(f.redisConfig)
	if err == nil {
		f.logger.Info("using Redis lease store", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis lease store unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory lease store",
		zap.String("addr", f.redisConfig.Addr()),
		zap.Error(err),
	)
	return NewInMemoryLeaseStore(), nil
}
