// ABOUTME: Idempotency gate deciding first-seen vs. duplicate for event IDs.
// ABOUTME: Claims an ID atomically against a TTL store; store failures follow a configurable policy.

package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrInvalidClaim is returned when a claim is attempted with an empty
// event ID or a non-positive TTL.
var ErrInvalidClaim = errors.New("invalid claim")

// ErrStoreUnavailable is returned (fail-closed policy only) when the
// backing store cannot be reached or errors during a claim.
var ErrStoreUnavailable = errors.New("gate store unavailable")

// Outcome is the result of a claim attempt.
type Outcome int

const (
	// OutcomeFirstSeen means the event ID was not previously claimed and
	// is now marked as seen for the TTL window.
	OutcomeFirstSeen Outcome = iota + 1

	// OutcomeAlreadySeen means the event ID was claimed earlier within
	// the TTL window. No write occurred.
	OutcomeAlreadySeen
)

// String returns a human-readable name for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeFirstSeen:
		return "first_seen"
	case OutcomeAlreadySeen:
		return "already_seen"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// seenValue is the sentinel stored under a claimed event ID. Only key
// presence matters; the value exists for operator inspection.
const seenValue = "processed"

// Store is the conditional-set primitive the gate runs on. SetIfAbsent
// must be atomic: a single check-and-set against the store, never a
// composed read followed by a write.
type Store interface {
	// SetIfAbsent writes key=value with the given TTL only if the key is
	// not present. It returns true if the write happened, false if the
	// key already existed.
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// Close releases the store's resources.
	Close() error
}

// Gate prevents duplicate downstream side effects for the same logical
// event within a bounded window. It performs exactly one store attempt
// per claim and holds no state of its own.
type Gate struct {
	store    Store
	failOpen bool
	logger   *slog.Logger
}

// New creates a gate over the given store. When failOpen is true, store
// failures are treated as OutcomeFirstSeen so that legitimate
// notifications are not silently dropped during an outage, at the cost
// of possible duplicate delivery. When false, store failures surface as
// ErrStoreUnavailable and processing stops.
func New(store Store, failOpen bool, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		store:    store,
		failOpen: failOpen,
		logger:   logger.With("component", "gate"),
	}
}

// Claim atomically checks whether eventID has been seen within the TTL
// window and marks it as seen if not. A duplicate returns
// OutcomeAlreadySeen and performs no write.
func (g *Gate) Claim(ctx context.Context, eventID string, ttl time.Duration) (Outcome, error) {
	if eventID == "" {
		return 0, fmt.Errorf("%w: empty event ID", ErrInvalidClaim)
	}
	if ttl <= 0 {
		return 0, fmt.Errorf("%w: non-positive TTL %v", ErrInvalidClaim, ttl)
	}

	set, err := g.store.SetIfAbsent(ctx, eventID, seenValue, ttl)
	if err != nil {
		if g.failOpen {
			g.logger.Warn("gate store unavailable, failing open",
				"event_id", eventID,
				"error", err,
			)
			return OutcomeFirstSeen, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if set {
		return OutcomeFirstSeen, nil
	}
	return OutcomeAlreadySeen, nil
}
