package store

import (
	"sync"
	"time"

	"github.com/swarmreport/swarmreport/pkg/types"
	"github.com/swarmreport/swarmreport/server/internal/freshness"
)

// Entry is one reporter's latest accepted report.
type Entry struct {
	Identity    string
	Report      types.SystemReport
	LastUpdated time.Time
}

// Store maps reporter identity to its latest Entry and remembers the order in
// which identities were first seen. Every identity in order is present in
// entries and vice versa.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	order   []string
}

// New creates an empty Store.
func New() *Store {
	return &Store{entries: make(map[string]*Entry)}
}

// Upsert records report as the latest state for identity. A new identity is
// appended to the display order; a known one is updated in place and keeps its
// position. LastUpdated never moves backwards: a receipt time older than the
// stored one replaces the payload but keeps the newer timestamp.
func (s *Store) Upsert(identity string, report types.SystemReport, receivedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[identity]; ok {
		e.Report = report
		if receivedAt.After(e.LastUpdated) {
			e.LastUpdated = receivedAt
		}
		return
	}
	s.entries[identity] = &Entry{
		Identity:    identity,
		Report:      report,
		LastUpdated: receivedAt,
	}
	s.order = append(s.order, identity)
}

// Sweep removes every entry whose silence (now - LastUpdated) exceeds
// threshold and returns how many were removed. Silence is counted in whole
// seconds, as freshness.Since reports it, so an entry the views show at
// exactly the threshold is kept.
func (s *Store) Sweep(now time.Time, threshold time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit := int64(threshold / time.Second)

	kept := s.order[:0]
	removed := 0
	for _, id := range s.order {
		e := s.entries[id]
		if freshness.Since(now, e.LastUpdated) > limit {
			delete(s.entries, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	// Clear the tail so evicted identities are not retained by the backing array.
	for i := len(kept); i < len(s.order); i++ {
		s.order[i] = ""
	}
	s.order = kept
	return removed
}

// Ordered returns a copy of all entries in first-seen order, taken under a
// single read lock. The caller owns the result.
func (s *Store) Ordered() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.order))
	for _, id := range s.order {
		e := s.entries[id]
		out = append(out, Entry{
			Identity:    e.Identity,
			Report:      e.Report.Clone(),
			LastUpdated: e.LastUpdated,
		})
	}
	return out
}

// Get returns a copy of the entry for identity.
func (s *Store) Get(identity string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[identity]
	if !ok {
		return Entry{}, false
	}
	return Entry{Identity: e.Identity, Report: e.Report.Clone(), LastUpdated: e.LastUpdated}, true
}

// Len returns the number of reporters currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Order returns a copy of the identity order. Intended for diagnostics and tests.
func (s *Store) Order() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
