package calllog

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidRecord = errors.New("calllog: invalid record")

// Repository persists call dispositions.
//
// Implementations must treat Insert as append-only; a second insert for the
// same call ID may happen when a status callback races the agent-side
// hangup, and the first write wins.
type Repository interface {
	Insert(ctx context.Context, rec Record) error
	List(ctx context.Context, from, to time.Time) ([]Record, error)
}

// NopRepository discards everything. Used when the call log is disabled.
type NopRepository struct{}

func (NopRepository) Insert(context.Context, Record) error { return nil }

func (NopRepository) List(context.Context, time.Time, time.Time) ([]Record, error) {
	return nil, nil
}
