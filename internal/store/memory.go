package store

import (
	"errors"
	"sync"

	"github.com/i474232898/aqi-display/internal/aqi"
)

var (
	// ErrNotFound is returned before the first result has been processed.
	ErrNotFound = errors.New("no air quality data loaded")
)

// MemoryStore is a concurrency-safe single-slot store. Every Save overwrites
// the previous snapshot; nothing is kept across restarts.
type MemoryStore struct {
	mu     sync.RWMutex
	latest *aqi.Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save replaces the stored snapshot.
func (s *MemoryStore) Save(snapshot aqi.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = &snapshot
}

// Latest returns the most recent snapshot.
func (s *MemoryStore) Latest() (aqi.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil {
		return aqi.Snapshot{}, ErrNotFound
	}
	return *s.latest, nil
}

// Reset forgets the stored snapshot, e.g. after the city changed.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = nil
}
