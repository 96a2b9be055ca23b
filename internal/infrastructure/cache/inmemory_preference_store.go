package cache

import (
	"context"
	"sync"

	"github.com/exoorder/backend/internal/domain/preference"
)

// InMemoryPreferenceStore keeps preferences in process memory. Nothing
// survives a restart.
type InMemoryPreferenceStore struct {
	mu     sync.RWMutex
	values map[preference.Key]string
}

var _ preference.Store = (*InMemoryPreferenceStore)(nil)

// NewInMemoryPreferenceStore creates an empty store
func NewInMemoryPreferenceStore() *InMemoryPreferenceStore {
	return &InMemoryPreferenceStore{values: make(map[preference.Key]string)}
}

// Get returns the stored value or preference.ErrNotFound
func (s *InMemoryPreferenceStore) Get(_ context.Context, key preference.Key) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok {
		return "", preference.ErrNotFound
	}
	return value, nil
}

// Set overwrites the value for key
func (s *InMemoryPreferenceStore) Set(_ context.Context, key preference.Key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Ping always succeeds
func (s *InMemoryPreferenceStore) Ping(context.Context) error {
	return nil
}

// Close is a no-op
func (s *InMemoryPreferenceStore) Close() error {
	return nil
}
