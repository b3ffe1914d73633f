package kv

import (
	"sync"
	"time"
)

// entry holds a stored value with its timestamp.
type entry struct {
	value     string
	timestamp time.Time
}

// MemoryStore is a thread-safe in-memory store with TTL support.
type MemoryStore struct {
	data map[string]entry
	mu   sync.RWMutex
	ttl  time.Duration
}

// NewMemoryStore creates a new in-memory store with the specified TTL.
// A zero or negative TTL means entries never expire.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl < 0 {
		ttl = 0
	}
	return &MemoryStore{
		data: make(map[string]entry),
		ttl:  ttl,
	}
}

// Get retrieves a value from the store.
// Returns the value and true if found and not expired, empty string and false otherwise.
func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return "", false
	}

	if s.ttl > 0 && time.Since(e.timestamp) > s.ttl {
		// Entry expired - clean it up
		s.mu.Lock()
		delete(s.data, key)
		s.mu.Unlock()
		return "", false
	}

	return e.value, true
}

// Set stores a value.
func (s *MemoryStore) Set(key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = entry{
		value:     value,
		timestamp: time.Now(),
	}
	return nil
}

// Len returns the number of entries in the store (including expired ones).
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Clear removes all entries.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]entry)
}

// Verify MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
