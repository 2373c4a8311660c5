package store

import (
	"container/heap"
	"errors"
	"strings"
	"sync"
	"time"

	"shared-clipboard/internal/metrics"
)

// DefaultRetention is how long an entry lives after it is submitted.
const DefaultRetention = 5 * time.Minute

// ErrInvalidInput is returned when the submitted text is empty after trimming.
var ErrInvalidInput = errors.New("store: empty text")

// Store is a concurrency-safe, in-memory list of clipboard entries.
//
// Design principles:
// - Entries are kept newest-first
// - Every entry has a fixed expiry deadline tracked in a min-heap
// - Expired entries are hidden from List immediately and physically
//   removed by RemoveExpired (driven by the TTL cleaner)
type Store struct {
	mu        sync.RWMutex
	entries   []Entry
	deadlines deadlineHeap
	lastID    int64
	retention time.Duration
	now       func() time.Time
	metrics   *metrics.Registry
}

// Option customises the Store.
type Option func(*Store)

// WithRetention overrides the retention window.
func WithRetention(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.retention = d
		}
	}
}

// WithNow overrides the clock, primarily for testing.
func WithNow(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore initializes and returns a new Store.
func NewStore(metricsRegistry *metrics.Registry, opts ...Option) *Store {
	s := &Store{
		retention: DefaultRetention,
		now:       time.Now,
		metrics:   metricsRegistry,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Retention returns the configured retention window.
func (s *Store) Retention() time.Duration {
	return s.retention
}

// Submit trims raw and stores it as a new entry at the head of the list.
//
// Rules:
// - Empty or whitespace-only text fails with ErrInvalidInput and stores nothing.
// - The id is the creation time in milliseconds, bumped past the last issued
//   id when submissions share a millisecond.
// - The entry is scheduled for removal after the retention window.
func (s *Store) Submit(raw string) (Entry, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		s.metrics.Inc(metrics.RejectedTotal)
		return Entry{}, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id

	entry := Entry{
		ID:        id,
		Text:      text,
		CreatedAt: now,
		ExpiresAt: now.Add(s.retention),
	}

	s.entries = append([]Entry{entry}, s.entries...)
	heap.Push(&s.deadlines, deadline{at: entry.ExpiresAt, id: id})

	s.metrics.Inc(metrics.SubmissionsTotal)
	s.metrics.Inc(metrics.EntriesLive)

	return entry, nil
}

// List returns a snapshot of all non-expired entries, newest first.
func (s *Store) List() []Entry {
	s.metrics.Inc(metrics.ListsTotal)

	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if !e.IsExpired(now) {
			out = append(out, e)
		}
	}
	return out
}

// Remove deletes the entry with the given id.
// Removing an id that is not present is a no-op.
func (s *Store) Remove(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.removeLocked(id)
}

func (s *Store) removeLocked(id int64) bool {
	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
			s.metrics.Dec(metrics.EntriesLive)
			return true
		}
	}
	return false
}

// RemoveExpired removes every entry whose deadline has passed.
//
// Each deadline is popped from the heap exactly once, so an entry can only
// be expired once. Used by the background TTL cleaner.
func (s *Store) RemoveExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0

	for s.deadlines.Len() > 0 && !s.deadlines[0].at.After(now) {
		d := heap.Pop(&s.deadlines).(deadline)
		if s.removeLocked(d.id) {
			removed++
		}
	}

	if removed > 0 {
		s.metrics.Add(metrics.EntriesExpiredTotal, int64(removed))
	}
	return removed
}

// NextExpiry reports the earliest pending deadline.
func (s *Store) NextExpiry() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.deadlines.Len() == 0 {
		return time.Time{}, false
	}
	return s.deadlines[0].at, true
}

// Len returns the number of stored entries, including expired ones not yet
// removed by the cleaner.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}
