// Package sim drives a scripted swipe session against a running engine
// instance over its HTTP facade.
package sim

import "time"

// Config holds configuration for the simulated session.
type Config struct {
	BaseURL   string        // Base URL of the engine facade
	NumSwipes int           // Number of swipes to attempt
	LikeRatio float64       // Fraction of swipes that are likes (0..1)
	DragSteps int           // Pointer move events per drag
	Timeout   time.Duration // HTTP request timeout
	LogFile   string        // Log file for session output
	Verbose   bool          // Enable verbose logging
}

// gestureSnapshot mirrors the facade's pointer response.
type gestureSnapshot struct {
	Phase     string  `json:"phase"`
	DeltaX    float64 `json:"delta_x"`
	Direction string  `json:"direction"`
}

// deckState mirrors the facade's deck response.
type deckState struct {
	Cards []struct {
		ID          string `json:"id"`
		ProfileType string `json:"profile_type"`
		Name        string `json:"name"`
	} `json:"cards"`
	Filter    string `json:"filter"`
	Empty     bool   `json:"empty"`
	ModalOpen bool   `json:"modal_open"`
}

// quotaState mirrors the facade's quota response.
type quotaState struct {
	Premium    bool `json:"is_premium"`
	Remaining  int  `json:"swipes_remaining"`
	DailyLimit int  `json:"daily_limit"`
	Stale      bool `json:"stale"`
}

// matchList mirrors the facade's matches response.
type matchList struct {
	Matches []struct {
		MatchID string `json:"match_id"`
		UserID  string `json:"user_id"`
		Name    string `json:"name"`
	} `json:"matches"`
}

// swipeAck mirrors the facade's swipe acceptance response.
type swipeAck struct {
	Status string `json:"status"`
}

// Stats holds session statistics.
type Stats struct {
	SwipesAttempted int
	Likes           int
	Dislikes        int
	Returned        int
	NoHeadCard      int
	Failed          int
	DeckReloads     int
	QuotaRemaining  int
	MatchesListed   int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
