package cache

import (
	"context"
	"time"
)

// LeaseStore hands out named, expiring leases. The scheduler takes a
// lease before running a job so that only one instance executes it when
// several servers share a database.
type LeaseStore interface {
	// Acquire takes the named lease for the duration of ttl. Returns
	// false when another holder already has it.
	Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error)

	// Release gives the lease back before its TTL runs out.
	Release(ctx context.Context, name string) error

	// Close releases any resources held by the store.
	Close() error
}
