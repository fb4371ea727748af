// Package session implements the Active Peer Table and the Session Manager
// that authenticates peers against it.
package session

import (
	"sync"
	"time"
)

// Session is a single live peer, held only in memory.
type Session struct {
	Name       string
	Token      string
	LastActive time.Time
}

// AddResult reports the outcome of Table.Add.
type AddResult int

const (
	AddOK AddResult = iota
	AddFull
	AddNameTaken
)

// Table is the Active Peer Table: a fixed-capacity, mutex-guarded map of
// live sessions keyed by user name. Every method takes the table's single
// lock for its full duration, so operations are atomic with respect to one
// another.
type Table struct {
	mu       sync.RWMutex
	maxUsers int
	sessions map[string]*Session
}

// NewTable creates a Table that holds at most maxUsers sessions.
func NewTable(maxUsers int) *Table {
	return &Table{
		maxUsers: maxUsers,
		sessions: make(map[string]*Session, maxUsers),
	}
}

// Add inserts a new session under name if the table has space and name is
// not already present. Both checks and the insert happen under one lock, so
// this is the atomic primitive the Session Manager builds its FULL/COPY
// rejections on.
func (t *Table) Add(name, token string) AddResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.sessions[name]; exists {
		return AddNameTaken
	}
	if len(t.sessions) >= t.maxUsers {
		return AddFull
	}

	t.sessions[name] = &Session{
		Name:       name,
		Token:      token,
		LastActive: time.Now(),
	}
	return AddOK
}

// Remove deletes the session under name, but only if its token matches.
// Returns true if a session was removed.
func (t *Table) Remove(name, token string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, exists := t.sessions[name]
	if !exists || s.Token != token {
		return false
	}
	delete(t.sessions, name)
	return true
}

// Find returns a copy of the session under name, or false if none is live.
func (t *Table) Find(name string) (Session, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s, exists := t.sessions[name]
	if !exists {
		return Session{}, false
	}
	return *s, true
}

// List returns a copy of every live session. The snapshot is safe to
// iterate after the table's lock has been released.
func (t *Table) List() []Session {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Session, 0, len(t.sessions))
	for _, s := range t.sessions {
		out = append(out, *s)
	}
	return out
}

// Touch refreshes LastActive for name to now. A no-op if name has no live
// session (e.g. evicted between authentication and the touch).
func (t *Table) Touch(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s, exists := t.sessions[name]; exists {
		s.LastActive = time.Now()
	}
}

// Rotate atomically replaces the session under name with a fresh token,
// used by Resume to re-issue credentials without a remove/add race window.
// Returns false if no session with the expected token is live under name.
func (t *Table) Rotate(name, oldToken, newToken string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, exists := t.sessions[name]
	if !exists || s.Token != oldToken {
		return false
	}
	s.Token = newToken
	s.LastActive = time.Now()
	return true
}

// HasSpace reports whether the table has room for another session.
func (t *Table) HasSpace() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions) < t.maxUsers
}

// Size returns the number of live sessions.
func (t *Table) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}

// EvictStale removes every session whose LastActive is older than threshold
// relative to now, returning the names evicted. Used by the Reaper.
func (t *Table) EvictStale(now time.Time, threshold time.Duration) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var evicted []string
	for name, s := range t.sessions {
		if now.Sub(s.LastActive) > threshold {
			evicted = append(evicted, name)
			delete(t.sessions, name)
		}
	}
	return evicted
}

// IsActive reports whether name currently holds a live session, regardless
// of token. Used by the File Index's liveness filter.
func (t *Table) IsActive(name string) bool {
	_, exists := t.Find(name)
	return exists
}
