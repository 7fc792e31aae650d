// ABOUTME: Tests for relay orchestration of gate, generator, and sink.
// ABOUTME: Covers the end-to-end scenarios: single event, duplicate, delivery failure.

package relay

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/beacon-relay/internal/event"
	"github.com/2389/beacon-relay/internal/gate"
	"github.com/2389/beacon-relay/internal/generate"
	"github.com/2389/beacon-relay/internal/notify"
)

// fakeGenerator records calls and returns canned content.
type fakeGenerator struct {
	calls     int
	lastInput string
	content   string
	err       error
}

func (f *fakeGenerator) Generate(_ context.Context, req generate.Request) (string, error) {
	f.calls++
	f.lastInput = req.Input
	if f.err != nil {
		return "", f.err
	}
	return f.content, nil
}

// fakeSink records posted messages.
type fakeSink struct {
	calls   int
	lastMsg notify.Message
	err     error
}

func (f *fakeSink) Post(_ context.Context, msg notify.Message) error {
	f.calls++
	f.lastMsg = msg
	if f.err != nil {
		return f.err
	}
	return nil
}

type fixture struct {
	relay *Relay
	gen   *fakeGenerator
	sink  *fakeSink
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	memStore := gate.NewMemoryStore(1000)
	t.Cleanup(func() { memStore.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	g := gate.New(memStore, true, logger)
	gen := &fakeGenerator{content: "the deploy finished at noon"}
	sink := &fakeSink{}

	r := New(g, gen, sink, nil, Options{
		TTL:       time.Hour,
		BotUserID: "U999BOT",
	}, logger)

	return &fixture{relay: r, gen: gen, sink: sink}
}

func testEvent(id string) *event.Event {
	return &event.Event{
		ID:       id,
		Text:     "<@U999BOT> what happened to the deploy?",
		User:     "U123",
		Channel:  "C456",
		ThreadTS: "1700000000.000100",
	}
}

func TestRelay_SingleEvent(t *testing.T) {
	f := newFixture(t)

	res, err := f.relay.HandleEvent(context.Background(), testEvent("evt-1"))
	require.NoError(t, err)

	assert.Equal(t, StatusProcessed, res.Status)
	assert.Equal(t, "evt-1", res.EventID)
	assert.Equal(t, 1, f.gen.calls, "generation invoked exactly once")
	assert.Equal(t, 1, f.sink.calls, "delivery invoked exactly once")

	// Mention stripped before it reaches the backend
	assert.Equal(t, "what happened to the deploy?", f.gen.lastInput)

	// Response threads back to the originating user
	assert.Equal(t, "C456", f.sink.lastMsg.Channel)
	assert.Equal(t, "1700000000.000100", f.sink.lastMsg.ThreadTS)
	assert.Equal(t, "U123", f.sink.lastMsg.MentionUser)
	assert.Equal(t, "the deploy finished at noon", f.sink.lastMsg.Text)
}

func TestRelay_DuplicateEvent(t *testing.T) {
	f := newFixture(t)

	_, err := f.relay.HandleEvent(context.Background(), testEvent("evt-1"))
	require.NoError(t, err)

	res, err := f.relay.HandleEvent(context.Background(), testEvent("evt-1"))
	require.NoError(t, err)

	assert.Equal(t, StatusDuplicate, res.Status)
	assert.Equal(t, 1, f.gen.calls, "no generation for the duplicate")
	assert.Equal(t, 1, f.sink.calls, "no delivery for the duplicate")
}

func TestRelay_DeliveryFailure_NoRetry_ClaimStands(t *testing.T) {
	f := newFixture(t)
	f.sink.err = errors.New("channel_not_found")

	_, err := f.relay.HandleEvent(context.Background(), testEvent("evt-2"))
	require.Error(t, err)
	assert.Equal(t, 1, f.sink.calls, "exactly one delivery attempt")

	// A later event with the same ID is still a duplicate: the claim is
	// not rolled back on delivery failure.
	res, err := f.relay.HandleEvent(context.Background(), testEvent("evt-2"))
	require.NoError(t, err)
	assert.Equal(t, StatusDuplicate, res.Status)
	assert.Equal(t, 1, f.sink.calls)
	assert.Equal(t, 1, f.gen.calls)
}

func TestRelay_GenerationFailure_NothingPosted(t *testing.T) {
	f := newFixture(t)
	f.gen.err = generate.ErrNoContent

	_, err := f.relay.HandleEvent(context.Background(), testEvent("evt-3"))
	require.Error(t, err)
	assert.ErrorIs(t, err, generate.ErrNoContent)
	assert.Zero(t, f.sink.calls, "no partial notification on generation failure")
}

func TestRelay_SelfMessageIgnored(t *testing.T) {
	f := newFixture(t)

	ev := testEvent("evt-4")
	ev.User = "U999BOT"

	res, err := f.relay.HandleEvent(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, StatusIgnored, res.Status)
	assert.Zero(t, f.gen.calls)
	assert.Zero(t, f.sink.calls)

	// The ignored event did not claim its ID: a real event reusing the
	// ID (unexpected but possible) would still process.
	ev2 := testEvent("evt-4")
	res, err = f.relay.HandleEvent(context.Background(), ev2)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessed, res.Status)
}

func TestRelay_MissingEventID(t *testing.T) {
	f := newFixture(t)

	_, err := f.relay.HandleEvent(context.Background(), &event.Event{Text: "hi"})
	assert.ErrorIs(t, err, event.ErrMissingEventID)
	assert.Zero(t, f.gen.calls)
}

func TestRelay_StoreDownFailOpen_StillDelivers(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	g := gate.New(downStore{}, true, logger)
	gen := &fakeGenerator{content: "ok"}
	sink := &fakeSink{}
	r := New(g, gen, sink, nil, Options{TTL: time.Hour}, logger)

	res, err := r.HandleEvent(context.Background(), testEvent("evt-5"))
	require.NoError(t, err)
	assert.Equal(t, StatusProcessed, res.Status)
	assert.Equal(t, 1, sink.calls)
}

func TestRelay_StoreDownFailClosed_Errors(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	g := gate.New(downStore{}, false, logger)
	gen := &fakeGenerator{content: "ok"}
	sink := &fakeSink{}
	r := New(g, gen, sink, nil, Options{TTL: time.Hour}, logger)

	_, err := r.HandleEvent(context.Background(), testEvent("evt-6"))
	assert.ErrorIs(t, err, gate.ErrStoreUnavailable)
	assert.Zero(t, gen.calls)
	assert.Zero(t, sink.calls)
}

// downStore simulates an unreachable gate store.
type downStore struct{}

func (downStore) SetIfAbsent(context.Context, string, string, time.Duration) (bool, error) {
	return false, errors.New("i/o timeout")
}

func (downStore) Close() error { return nil }
