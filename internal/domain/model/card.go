// Package model contains domain models passed between layers.
package model

import "time"

// ProfileType tags a discoverable profile.
type ProfileType string

// Known profile types surfaced by the discovery endpoint.
const (
	ProfileAthlete ProfileType = "athlete"
	ProfileAgent   ProfileType = "agent"
	ProfileTeam    ProfileType = "team"
)

// Direction is the outcome of a committed gesture.
type Direction string

// Swipe directions accepted by the backend.
const (
	DirectionLike    Direction = "like"
	DirectionDislike Direction = "dislike"
)

// Card is one discoverable candidate profile. It is immutable once fetched
// and owned by the deck until popped.
type Card struct {
	ID          string      `json:"id"`
	ProfileType ProfileType `json:"profile_type"`
	Name        string      `json:"name"`
	LastName    string      `json:"last_name,omitempty"`
	Sport       string      `json:"sport,omitempty"`
	Location    string      `json:"location,omitempty"`
	HeightCM    int         `json:"height_cm,omitempty"`
	Position    string      `json:"position,omitempty"`
	Bio         string      `json:"bio,omitempty"`
	Instagram   string      `json:"instagram,omitempty"`
	Twitter     string      `json:"twitter,omitempty"`
	PhotoURL    string      `json:"photo_url,omitempty"`
}

// SwipeDecision is created by the gesture controller when a drag (or an
// explicit control) commits, and consumed exactly once by a submitter worker.
type SwipeDecision struct {
	DecisionID string    // unique id for tracing and queue idempotency
	CardID     string    // target profile
	Direction  Direction // like or dislike
	CommitTS   time.Time // when the gesture committed
}

// SwipeOutcome is the classified result of one submitted decision. It is
// transient: routed to presentation once, never persisted.
type SwipeOutcome struct {
	CardID  string
	Matched bool
	Message string
}

// ContactInfo holds the revealed direct channels for one matched or
// candidate user. Discarded when the reveal modal closes.
type ContactInfo struct {
	Name        string      `json:"name"`
	LastName    string      `json:"last_name"`
	ProfileType ProfileType `json:"profile_type"`
	Email       string      `json:"email,omitempty"`
	Phone       string      `json:"phone,omitempty"`
	Instagram   string      `json:"instagram,omitempty"`
	Twitter     string      `json:"twitter,omitempty"`
}

// Match is one established mutual like, as listed by the backend. The chat
// collaborator consumes the same shape.
type Match struct {
	MatchID   string `json:"match_id"`
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	LastName  string `json:"last_name,omitempty"`
	Sport     string `json:"sport,omitempty"`
	PhotoURL  string `json:"photo_url,omitempty"`
	MatchedAt string `json:"matched_at,omitempty"`
}
