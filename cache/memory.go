package cache

import (
	"context"
	"sync"
)

// MemoryStorage keeps entries in process memory. It is unbounded.
type MemoryStorage struct {
	lock    sync.RWMutex
	entries map[string]map[string]Entry
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: make(map[string]map[string]Entry)}
}

func (s *MemoryStorage) Fetch(_ context.Context, url string) ([]Entry, bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	variants := s.entries[url]
	if len(variants) == 0 {
		return nil, false, nil
	}
	entries := make([]Entry, 0, len(variants))
	for _, e := range variants {
		entries = append(entries, e)
	}
	return entries, true, nil
}

func (s *MemoryStorage) Store(ctx context.Context, e Entry) (ChunkHandler, error) {
	return newBufferedHandler(ctx, e, s.commit), nil
}

func (s *MemoryStorage) commit(_ context.Context, e Entry) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	variants, ok := s.entries[e.URL]
	if !ok {
		variants = make(map[string]Entry)
		s.entries[e.URL] = variants
	}
	variants[e.Discriminators.Key()] = e
	return nil
}

// Len returns the number of stored entries across all URLs.
func (s *MemoryStorage) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	n := 0
	for _, variants := range s.entries {
		n += len(variants)
	}
	return n
}

func (s *MemoryStorage) Close() error {
	return nil
}
