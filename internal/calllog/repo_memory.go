package calllog

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is a simple in-memory call log for tests and single-instance
// deployments.
type MemoryRepo struct {
	mu   sync.Mutex
	seen map[string]struct{}

	Records []Record
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{seen: map[string]struct{}{}} }

func (r *MemoryRepo) Insert(_ context.Context, rec Record) error {
	if rec.CallID == "" {
		return ErrInvalidRecord
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	// First write wins on a termination race.
	if _, ok := r.seen[rec.CallID]; ok {
		return nil
	}
	r.seen[rec.CallID] = struct{}{}
	r.Records = append(r.Records, rec)
	return nil
}

func (r *MemoryRepo) List(_ context.Context, from, to time.Time) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, 0)
	for _, rec := range r.Records {
		if !rec.EndedAt.IsZero() {
			if rec.EndedAt.Before(from) || !rec.EndedAt.Before(to) {
				continue
			}
		}
		out = append(out, rec)
	}
	return out, nil
}
