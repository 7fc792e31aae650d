// ABOUTME: Store interface and record type for the relay audit ledger.
// ABOUTME: Records gate decisions and delivery outcomes for operator inspection.

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Record is one relay decision: which event arrived, what the gate
// decided, and how delivery went. The event payload itself is never
// persisted.
type Record struct {
	ID        string
	EventID   string
	Outcome   string // processed, duplicate, ignored
	Channel   string
	Error     string // empty on success
	CreatedAt time.Time
}

// Store defines the audit ledger interface. Writes are best-effort
// from the relay's point of view: a ledger failure never fails an
// invocation.
type Store interface {
	RecordDecision(ctx context.Context, rec *Record) error
	ListRecent(ctx context.Context, limit int) ([]*Record, error)
	Close() error
}
