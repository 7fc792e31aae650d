// ABOUTME: In-process gate store: a thread-safe TTL map with size-bounded eviction.
// ABOUTME: Used for tests and single-instance deployments without a shared cache.

package gate

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// memoryEntry tracks the expiry and eviction-order element for a key.
type memoryEntry struct {
	expiresAt time.Time
	element   *list.Element
}

// MemoryStore implements Store with an in-process map. The check and
// the write happen under a single mutex hold, which gives the same
// atomicity as the Redis conditional set but only within one process.
// Insertion order is kept in a doubly-linked list for O(1) eviction
// when the store reaches capacity.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	order   *list.List // keys in insertion order, oldest at front
	maxSize int
	done    chan struct{}
	closed  bool
}

// NewMemoryStore creates a memory store holding at most maxSize keys.
// A background goroutine sweeps expired entries once a minute; expiry is
// also checked on access, so the sweep only bounds memory.
func NewMemoryStore(maxSize int) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*memoryEntry),
		order:   list.New(),
		maxSize: maxSize,
		done:    make(chan struct{}),
	}
	go s.sweep()
	return s
}

// SetIfAbsent marks key as seen for ttl if it is not currently marked.
// An expired entry counts as absent and is replaced.
func (s *MemoryStore) SetIfAbsent(_ context.Context, key, _ string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if entry, ok := s.entries[key]; ok {
		if now.Before(entry.expiresAt) {
			return false, nil
		}
		// Expired: reclaim in place.
		entry.expiresAt = now.Add(ttl)
		s.order.MoveToBack(entry.element)
		return true, nil
	}

	if len(s.entries) >= s.maxSize {
		s.evictOldest()
	}

	elem := s.order.PushBack(key)
	s.entries[key] = &memoryEntry{
		expiresAt: now.Add(ttl),
		element:   elem,
	}
	return true, nil
}

// evictOldest removes the oldest entry. Must be called with mu held.
func (s *MemoryStore) evictOldest() {
	front := s.order.Front()
	if front == nil {
		return
	}
	key, _ := front.Value.(string)
	s.order.Remove(front)
	delete(s.entries, key)
}

// sweep periodically drops expired entries until the store is closed.
func (s *MemoryStore) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.removeExpired()
		case <-s.done:
			return
		}
	}
}

func (s *MemoryStore) removeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, entry := range s.entries {
		if now.After(entry.expiresAt) {
			s.order.Remove(entry.element)
			delete(s.entries, key)
		}
	}
}

// Close stops the background sweep. Safe to call multiple times.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.done)
		s.closed = true
	}
	return nil
}
