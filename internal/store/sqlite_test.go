// ABOUTME: Tests for the SQLite audit ledger.
// ABOUTME: Validates schema creation, decision persistence, and recency ordering.

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "relay.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_RecordDecision(t *testing.T) {
	s := testStore(t)

	rec := &Record{
		EventID: "Ev123",
		Outcome: "processed",
		Channel: "C456",
	}
	err := s.RecordDecision(context.Background(), rec)
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID, "ID should be generated")
	assert.False(t, rec.CreatedAt.IsZero(), "CreatedAt should be stamped")

	records, err := s.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Ev123", records[0].EventID)
	assert.Equal(t, "processed", records[0].Outcome)
	assert.Equal(t, "C456", records[0].Channel)
	assert.Empty(t, records[0].Error)
}

func TestSQLiteStore_RecordDecision_WithError(t *testing.T) {
	s := testStore(t)

	err := s.RecordDecision(context.Background(), &Record{
		EventID: "Ev123",
		Outcome: "processed",
		Error:   "posting to channel C456: channel_not_found",
	})
	require.NoError(t, err)

	records, err := s.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Contains(t, records[0].Error, "channel_not_found")
}

func TestSQLiteStore_ListRecent_Ordering(t *testing.T) {
	s := testStore(t)

	base := time.Now().UTC().Add(-time.Hour)
	for i, id := range []string{"Ev1", "Ev2", "Ev3"} {
		err := s.RecordDecision(context.Background(), &Record{
			EventID:   id,
			Outcome:   "processed",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	records, err := s.ListRecent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Ev3", records[0].EventID, "newest first")
	assert.Equal(t, "Ev2", records[1].EventID)
}

func TestSQLiteStore_ListRecent_Empty(t *testing.T) {
	s := testStore(t)

	records, err := s.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSQLiteStore_ListRecent_ClampsLimit(t *testing.T) {
	s := testStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.RecordDecision(context.Background(), &Record{
			EventID: "Ev",
			Outcome: "duplicate",
		}))
	}

	records, err := s.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, records, 5, "zero limit should default, not return nothing")
}
