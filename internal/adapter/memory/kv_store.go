package memory

import (
	"context"
	"slices"
	"sync"
)

// KVStore is an in-process port.KVStore. Values are copied on the way in and
// out so callers never share backing arrays with the store.
type KVStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewKVStore returns an empty store.
func NewKVStore() *KVStore {
	return &KVStore{data: make(map[string][]byte)}
}

// Get returns a copy of the value under key, or nil when absent.
func (s *KVStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	return slices.Clone(v), nil
}

// Put stores a copy of value under key.
func (s *KVStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = slices.Clone(value)
	return nil
}
