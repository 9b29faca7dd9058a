package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/expenseally/backend/internal/infrastructure/config"
)

const rateKeyPrefix = "fx:rates:"

// rateTTL bounds how long a cached quote is served; the daily refresh
// normally replaces it well before expiry.
const rateTTL = 48 * time.Hour

// RateStore persists the most recent rate quote per base currency.
type RateStore interface {
	SaveQuote(ctx context.Context, quote *RateQuote) error
	LoadQuote(ctx context.Context, base string) (*RateQuote, error)
}

// RedisRateStore keeps quotes in Redis so every instance serves the
// same rates.
type RedisRateStore struct {
	client *redis.Client
}

// NewRedisRateStore creates a store backed by an existing Redis client.
func NewRedisRateStore(client *redis.Client) *RedisRateStore {
	return &RedisRateStore{client: client}
}

// NewRedisRateStoreFromConfig dials Redis and verifies connectivity.
func NewRedisRateStoreFromConfig(cfg config.RedisConfig) (*RedisRateStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("fx: failed to connect to redis: %w", err)
	}

	return &RedisRateStore{client: client}, nil
}

// SaveQuote stores a quote under its base currency.
func (s *RedisRateStore) SaveQuote(ctx context.Context, quote *RateQuote) error {
	data, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("fx: failed to encode quote: %w", err)
	}
	return s.client.Set(ctx, rateKeyPrefix+quote.Base, data, rateTTL).Err()
}

// LoadQuote returns the stored quote for a base currency, or
// ErrRateNotFound when none is cached.
func (s *RedisRateStore) LoadQuote(ctx context.Context, base string) (*RateQuote, error) {
	data, err := s.client.Get(ctx, rateKeyPrefix+base).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: no cached rates for %s", ErrRateNotFound, base)
	}
	if err != nil {
		return nil, err
	}

	var quote RateQuote
	if err := json.Unmarshal(data, &quote); err != nil {
		return nil, fmt.Errorf("fx: failed to decode quote: %w", err)
	}
	return &quote, nil
}

// InMemoryRateStore keeps quotes in process memory. Single-node and
// test fallback.
type InMemoryRateStore struct {
	mu     sync.RWMutex
	quotes map[string]*RateQuote
}

// NewInMemoryRateStore creates an empty in-memory store.
func NewInMemoryRateStore() *InMemoryRateStore {
	return &InMemoryRateStore{quotes: make(map[string]*RateQuote)}
}

// SaveQuote stores a quote under its base currency.
func (s *InMemoryRateStore) SaveQuote(_ context.Context, quote *RateQuote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[quote.Base] = quote
	return nil
}

// LoadQuote returns the stored quote for a base currency.
func (s *InMemoryRateStore) LoadQuote(_ context.Context, base string) (*RateQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quote, ok := s.quotes[base]
	if !ok {
		return nil, fmt.Errorf("%w: no cached rates for %s", ErrRateNotFound, base)
	}
	return quote, nil
}
