// ABOUTME: Relay orchestration: gate claim, content generation, notification delivery.
// ABOUTME: One invocation per event; claims before processing, never retries, never rolls back.

package relay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/2389/beacon-relay/internal/event"
	"github.com/2389/beacon-relay/internal/gate"
	"github.com/2389/beacon-relay/internal/generate"
	"github.com/2389/beacon-relay/internal/notify"
	"github.com/2389/beacon-relay/internal/store"
)

// Status is the terminal state of one handler invocation.
type Status string

const (
	// StatusProcessed means the event was first-seen, content was
	// generated, and the notification was delivered.
	StatusProcessed Status = "processed"

	// StatusDuplicate means the gate observed the event ID as already
	// seen; no generation or delivery happened.
	StatusDuplicate Status = "duplicate"

	// StatusIgnored means the event was the bot's own message and was
	// dropped without claiming.
	StatusIgnored Status = "ignored"
)

// Result reports what the relay did with an event.
type Result struct {
	Status  Status
	EventID string
}

// Options configures a Relay.
type Options struct {
	// TTL is how long a claimed event ID stays marked as seen.
	TTL time.Duration

	// BotUserID is the relay's own messaging identity; events from this
	// user are ignored to stop the bot answering itself.
	BotUserID string
}

// Relay sequences the idempotency gate, the generative backend, and
// the messaging sink for one event at a time. All collaborators are
// injected at construction and reused across invocations.
type Relay struct {
	gate      *gate.Gate
	generator generate.Generator
	sink      notify.Sink
	ledger    store.Store // may be nil: ledger disabled
	opts      Options
	logger    *slog.Logger
}

// New creates a relay. ledger may be nil to disable audit recording.
func New(g *gate.Gate, gen generate.Generator, sink notify.Sink, ledger store.Store, opts Options, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{
		gate:      g,
		generator: gen,
		sink:      sink,
		ledger:    ledger,
		opts:      opts,
		logger:    logger.With("component", "relay"),
	}
}

// HandleEvent processes one inbound event to completion.
//
// The event ID is claimed before any side effect. A delivery failure
// after a successful claim leaves the ID claimed: that notification is
// skipped until the TTL releases it, which is the accepted cost of the
// at-most-one-attempt-per-window contract.
func (r *Relay) HandleEvent(ctx context.Context, ev *event.Event) (*Result, error) {
	if ev.ID == "" {
		return nil, fmt.Errorf("handling event: %w", event.ErrMissingEventID)
	}

	logger := r.logger.With("event_id", ev.ID)

	if r.opts.BotUserID != "" && ev.User == r.opts.BotUserID {
		logger.Debug("ignoring bot's own message")
		r.record(ctx, ev, StatusIgnored, nil)
		return &Result{Status: StatusIgnored, EventID: ev.ID}, nil
	}

	outcome, err := r.gate.Claim(ctx, ev.ID, r.opts.TTL)
	if err != nil {
		return nil, fmt.Errorf("claiming event %s: %w", ev.ID, err)
	}
	if outcome == gate.OutcomeAlreadySeen {
		logger.Info("duplicate event ignored")
		r.record(ctx, ev, StatusDuplicate, nil)
		return &Result{Status: StatusDuplicate, EventID: ev.ID}, nil
	}

	question := event.StripMention(ev.Text, r.opts.BotUserID)
	requestID := uuid.New().String()

	logger.Info("processing event",
		"channel", ev.Channel,
		"user", ev.User,
		"request_id", requestID,
	)

	content, err := r.generator.Generate(ctx, generate.Request{
		Input:     question,
		SessionID: requestID,
	})
	if err != nil {
		genErr := fmt.Errorf("generating content for event %s: %w", ev.ID, err)
		r.record(ctx, ev, StatusProcessed, genErr)
		return nil, genErr
	}

	err = r.sink.Post(ctx, notify.Message{
		Channel:     ev.Channel,
		Text:        content,
		ThreadTS:    ev.ThreadTS,
		MentionUser: ev.User,
	})
	if err != nil {
		// The claim stands: no rollback, no retry.
		deliverErr := fmt.Errorf("delivering notification for event %s: %w", ev.ID, err)
		r.record(ctx, ev, StatusProcessed, deliverErr)
		return nil, deliverErr
	}

	logger.Info("notification delivered", "channel", ev.Channel)
	r.record(ctx, ev, StatusProcessed, nil)
	return &Result{Status: StatusProcessed, EventID: ev.ID}, nil
}

// record writes an audit entry, best-effort. Ledger failures are logged
// and swallowed so they never affect event processing.
func (r *Relay) record(ctx context.Context, ev *event.Event, status Status, procErr error) {
	if r.ledger == nil {
		return
	}

	rec := &store.Record{
		EventID: ev.ID,
		Outcome: string(status),
		Channel: ev.Channel,
	}
	if procErr != nil {
		rec.Error = procErr.Error()
	}

	if err := r.ledger.RecordDecision(ctx, rec); err != nil {
		r.logger.Warn("audit record failed", "event_id", ev.ID, "error", err)
	}
}
