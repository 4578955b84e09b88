// Package session keeps the latest historical analysis per client session.
//
// Clients that send no session ID all share DefaultID, which reproduces the
// single shared slot older clients rely on.
package session

import (
	"strings"
	"sync"
	"time"

	"github.com/LeonardoBeccarini/agri_advisor/internal/model/entities"
)

const DefaultID = ""

type entry struct {
	analysis entities.HistoricalAnalysis
	expires  time.Time
}

type Store struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
}

// NewStore creates a store whose entries expire ttl after their last Put.
// A ttl <= 0 disables expiry.
func NewStore(ttl time.Duration) *Store {
	return &Store{ttl: ttl, now: time.Now, entries: make(map[string]entry)}
}

// WithClock replaces the time source; used by tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Put replaces whatever the session held before. Last write wins.
func (s *Store) Put(id string, a entities.HistoricalAnalysis) {
	e := entry{analysis: a}
	if s.ttl > 0 {
		e.expires = s.now().Add(s.ttl)
	}
	s.mu.Lock()
	s.entries[normalize(id)] = e
	s.mu.Unlock()
}

func (s *Store) Get(id string) (entities.HistoricalAnalysis, bool) {
	s.mu.RLock()
	e, ok := s.entries[normalize(id)]
	s.mu.RUnlock()
	if !ok || s.expired(e) {
		return entities.HistoricalAnalysis{}, false
	}
	return e.analysis, true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep drops expired sessions and reports how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, k)
			n++
		}
	}
	return n
}

func (s *Store) expired(e entry) bool {
	return !e.expires.IsZero() && s.now().After(e.expires)
}

func normalize(id string) string { return strings.TrimSpace(id) }
