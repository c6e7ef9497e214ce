package progress

import (
	"context"
	"sync"
)

// MemoryStore keeps records in process memory. It backs tests and
// sessions that opt out of persistence.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Load(ctx context.Context, adventureID string) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[adventureID]
	return rec, ok, nil
}

func (s *MemoryStore) Save(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.AdventureID] = rec
	return nil
}

func (s *MemoryStore) Reset(ctx context.Context, adventureID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, adventureID)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
