package dialog

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	pending   Pending
	expiresAt time.Time
}

// MemoryStore is an in-process Store for single-instance deployments and
// tests. Entries expire lazily on read when a TTL is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

// NewMemoryStore creates a MemoryStore. ttl <= 0 disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
	}
}

func (s *MemoryStore) Get(_ context.Context, userKey string) (*Pending, error) {
	s.mu.RLock()
	entry, ok := s.entries[userKey]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, userKey)
		s.mu.Unlock()
		return nil, nil
	}

	pending := entry.pending
	return &pending, nil
}

func (s *MemoryStore) Set(_ context.Context, userKey string, pending *Pending) error {
	entry := memoryEntry{pending: *pending}
	if s.ttl > 0 {
		entry.expiresAt = time.Now().Add(s.ttl)
	}

	s.mu.Lock()
	s.entries[userKey] = entry
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, userKey string) error {
	s.mu.Lock()
	delete(s.entries, userKey)
	s.mu.Unlock()
	return nil
}
