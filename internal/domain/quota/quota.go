// Package quota tracks the daily swipe allowance for the session account.
package quota

import (
	"context"
	"sync"
)

// State is a point-in-time snapshot of the swipe allowance.
type State struct {
	Premium    bool `json:"is_premium"`
	Remaining  int  `json:"swipes_remaining"`
	DailyLimit int  `json:"daily_limit"`
}

// Tracker holds the single per-session quota state. It is refreshed
// wholesale from the backend and decremented locally, by exactly one, per
// non-premium submission the backend accepted. The submitter workers are the
// only callers of Consume.
type Tracker struct {
	mu    sync.RWMutex
	state State
	known bool
}

// NewTracker creates an empty tracker. The state is unknown until the first
// Reset from /swipe/stats.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Reset replaces the state wholesale with a fresh backend snapshot.
func (t *Tracker) Reset(_ context.Context, s State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = s
	t.known = true
}

// Consume decrements the remaining allowance for one accepted submission.
// Premium accounts are never decremented, and remaining never goes below
// zero. Returns the snapshot after the decrement.
func (t *Tracker) Consume(_ context.Context) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Premium {
		return t.state
	}
	if t.state.Remaining > 0 {
		t.state.Remaining--
	}
	return t.state
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot(_ context.Context) State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Known reports whether the tracker has been populated from the backend.
func (t *Tracker) Known() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.known
}

// Premium reports the account tier from the last snapshot.
func (t *Tracker) Premium() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.Premium
}
