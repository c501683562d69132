// Package api declares HTTP contracts and route registration helpers
// for the UI-facing facade.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	engine "github.com/sportlink/swipedeck/internal/app"
	"github.com/sportlink/swipedeck/internal/domain/gesture"
	"github.com/sportlink/swipedeck/internal/domain/model"
	"github.com/sportlink/swipedeck/internal/domain/quota"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Gesture event stream from the UI shell.
	PointerDown(ctx context.Context, x float64) gesture.Snapshot
	PointerMove(ctx context.Context, x float64) gesture.Snapshot
	PointerUp(ctx context.Context) gesture.Snapshot

	// SwipeHead commits a decision on the head card programmatically.
	SwipeHead(ctx context.Context, dir model.Direction) bool

	// Deck operations.
	DeckState(ctx context.Context) engine.DeckState
	SetFilter(ctx context.Context, f string) string
	Refresh(ctx context.Context)

	// Quota operations.
	Quota(ctx context.Context) quota.State
	RefreshQuota(ctx context.Context) error

	// Gated and passthrough reads.
	RevealContact(ctx context.Context, userID string) (model.ContactInfo, error)
	Matches(ctx context.Context) ([]model.Match, error)

	// DismissModal closes the current match modal.
	DismissModal(ctx context.Context) bool
}

// Server wires HTTP routes for the engine facade.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	deckHandler    *DeckHandler
	pointerHandler *PointerHandler
	swipeHandler   *SwipeHandler
	quotaHandler   *QuotaHandler
	contactHandler *ContactHandler
	matchesHandler *MatchesHandler
	modalHandler   *ModalHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		deckHandler:    NewDeckHandler(deps),
		pointerHandler: NewPointerHandler(deps),
		swipeHandler:   NewSwipeHandler(deps),
		quotaHandler:   NewQuotaHandler(deps),
		contactHandler: NewContactHandler(deps),
		matchesHandler: NewMatchesHandler(deps),
		modalHandler:   NewModalHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/deck", MetricsMiddleware(s.deckHandler.HandleGetDeck, "deck"))
	mux.HandleFunc("/deck/filter", MetricsMiddleware(s.deckHandler.HandleSetFilter, "deck_filter"))
	mux.HandleFunc("/deck/refresh", MetricsMiddleware(s.deckHandler.HandleRefresh, "deck_refresh"))
	mux.HandleFunc("/pointer", MetricsMiddleware(s.pointerHandler.HandlePointer, "pointer"))
	mux.HandleFunc("/swipe", MetricsMiddleware(s.swipeHandler.HandleSwipe, "swipe"))
	mux.HandleFunc("/quota", MetricsMiddleware(s.quotaHandler.HandleGetQuota, "quota"))
	mux.HandleFunc("/contact/", MetricsMiddleware(s.contactHandler.HandleGetContact, "contact"))
	mux.HandleFunc("/matches", MetricsMiddleware(s.matchesHandler.HandleGetMatches, "matches"))
	mux.HandleFunc("/modal/dismiss", MetricsMiddleware(s.modalHandler.HandleDismiss, "modal_dismiss"))
}

type errorResponse struct {
	Code                 string `json:"code"`
	Message              string `json:"message"`
	RequiresSubscription bool   `json:"requires_subscription,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
