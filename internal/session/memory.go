package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data    Data
	expires time.Time
}

// sweepInterval is the minimum time between scans for expired sessions.
const sweepInterval = time.Minute

// MemoryStore keeps sessions in process memory. Expired entries are
// dropped on access and swept from Save at most once per sweepInterval.
type MemoryStore struct {
	mu        sync.Mutex
	items     map[string]memoryEntry
	now       func() time.Time
	lastSweep time.Time
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Load(_ context.Context, id string) (Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[id]
	if !ok {
		return Data{}, ErrNotFound
	}
	if !entry.expires.IsZero() && s.now().After(entry.expires) {
		delete(s.items, id)
		return Data{}, ErrNotFound
	}
	return entry.data, nil
}

func (s *MemoryStore) Save(_ context.Context, id string, data Data, ttl time.Duration) error {
	now := s.now()
	var expires time.Time
	if ttl > 0 {
		expires = now.Add(ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.Sub(s.lastSweep) >= sweepInterval {
		s.sweep(now)
	}
	s.items[id] = memoryEntry{data: data, expires: expires}
	return nil
}

// sweep deletes expired entries. Callers hold s.mu.
func (s *MemoryStore) sweep(now time.Time) {
	for id, entry := range s.items {
		if !entry.expires.IsZero() && now.After(entry.expires) {
			delete(s.items, id)
		}
	}
	s.lastSweep = now
}

// Len reports the number of stored entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
	return nil
}
