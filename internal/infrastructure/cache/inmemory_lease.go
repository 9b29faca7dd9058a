package cache

import (
	"context"
	"sync"
	"time"
)

type leaseEntry struct {
	expiresAt time.Time
}

// InMemoryLeaseStore implements LeaseStore with a local map. Suitable
// for single-instance deployments and tests; it cannot coordinate
// across processes.
type InMemoryLeaseStore struct {
	mu        sync.Mutex
	leases    map[string]leaseEntry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryLeaseStore creates an in-memory lease store and starts a
// background sweep for expired entries
func NewInMemoryLeaseStore() *InMemoryLeaseStore {
	store := &InMemoryLeaseStore{
		leases:   make(map[string]leaseEntry),
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

// Acquire takes the lease if it is free or its previous holder expired
func (s *InMemoryLeaseStore) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lease, held := s.leases[name]; held && time.Now().Before(lease.expiresAt) {
		return false, nil
	}

	s.leases[name] = leaseEntry{expiresAt: time.Now().Add(ttl)}
	return true, nil
}

// Release frees the lease
func (s *InMemoryLeaseStore) Release(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.leases, name)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryLeaseStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryLeaseStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryLeaseStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for name, lease := range s.leases {
		if now.After(lease.expiresAt) {
			delete(s.leases, name)
		}
	}
}

var _ LeaseStore = (*InMemoryLeaseStore)(nil)
