package console

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type sessionEntry struct {
	view     *View
	lastSeen time.Time
}

// Sessions maps browser session ids to their views. Idle sessions are dropped
// after ttl.
type Sessions struct {
	mu      sync.Mutex
	ttl     time.Duration
	newView func() *View
	now     func() time.Time
	entries map[string]*sessionEntry
}

// NewSessions builds a session table that creates views with newView.
func NewSessions(ttl time.Duration, newView func() *View) *Sessions {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Sessions{
		ttl:     ttl,
		newView: newView,
		now:     time.Now,
		entries: make(map[string]*sessionEntry),
	}
}

// Get returns the view for id, creating a fresh session when id is empty,
// unknown or expired. The returned id is the one the caller must keep using.
func (s *Sessions) Get(id string) (*View, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictLocked(now)
	if entry, ok := s.entries[id]; ok && id != "" {
		entry.lastSeen = now
		return entry.view, id
	}
	id = uuid.NewString()
	entry := &sessionEntry{view: s.newView(), lastSeen: now}
	s.entries[id] = entry
	return entry.view, id
}

// Len reports the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Sessions) evictLocked(now time.Time) {
	for id, entry := range s.entries {
		if now.Sub(entry.lastSeen) > s.ttl {
			delete(s.entries, id)
		}
	}
}
