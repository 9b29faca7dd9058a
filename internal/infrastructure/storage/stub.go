package storage

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

var _ ObjectStorage = (*InMemoryObjectStorage)(nil)

// InMemoryObjectStorage keeps objects in a map. Used in development and
// tests when no S3-compatible backend is configured.
type InMemoryObjectStorage struct {
	// BaseURL is the base used for generated upload/download URLs
	BaseURL string

	mu      sync.RWMutex
	objects map[string][]byte
}

// NewInMemoryObjectStorage creates an empty in-memory store.
func NewInMemoryObjectStorage() *InMemoryObjectStorage {
	return &InMemoryObjectStorage{
		BaseURL: "https://storage.invalid",
		objects: make(map[string][]byte),
	}
}

// EnsureBucket is a no-op.
func (s *InMemoryObjectStorage) EnsureBucket(_ context.Context) error {
	return nil
}

// Upload stores the object in memory.
func (s *InMemoryObjectStorage) Upload(_ context.Context, key string, data []byte, _ string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), data...)
	return nil
}

// GenerateUploadURL returns a fake PUT URL.
func (s *InMemoryObjectStorage) GenerateUploadURL(_ context.Context, key, _ string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/upload/" + key, expiresAt, nil
}

// GenerateDownloadURL returns a fake GET URL.
func (s *InMemoryObjectStorage) GenerateDownloadURL(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/download/" + key, expiresAt, nil
}

// DeleteObject removes the object if present.
func (s *InMemoryObjectStorage) DeleteObject(_ context.Context, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// ObjectExists reports whether the object was uploaded.
func (s *InMemoryObjectStorage) ObjectExists(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, errors.New("storage key is required")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}

// ListKeys returns stored keys under a prefix.
func (s *InMemoryObjectStorage) ListKeys(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Object returns a stored object's bytes for test assertions.
func (s *InMemoryObjectStorage) Object(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	return data, ok
}
