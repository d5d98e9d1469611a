package cache

import (
	"context"
	"sync"
)

// memoryStore is the local/dev fallback Store. It is safe for concurrent use
// within one process but is not shared across processes; deployments with
// more than one replica must use Redis.
type memoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryStore() Store {
	return &memoryStore{entries: map[string]Entry{}}
}

func (s *memoryStore) Get(_ context.Context, key string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (s *memoryStore) Set(_ context.Context, key string, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = *entry
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}
