package greeting

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the single-instance staged-greeting store. Entries expire
// after ttl; expiry is enforced lazily on access and by an opportunistic
// sweep on Stage.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry

	ttl time.Duration
	now func() time.Time
}

type memoryEntry struct {
	text     string
	deadline time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Stage(_ context.Context, key, text string) error {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.entries {
		if e.deadline.Before(now) {
			delete(s.entries, k)
		}
	}
	s.entries[key] = memoryEntry{text: text, deadline: now.Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Claim(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	delete(s.entries, key)
	if !ok || e.deadline.Before(s.now()) {
		return "", false, nil
	}
	return e.text, true, nil
}

// Len reports staged entries, expired ones included. Test helper.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
