// Package api declares HTTP contracts and route registration helpers
// for the UI-facing facade.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/sportlink/swipedeck/internal/adapters/backend"
	"github.com/sportlink/swipedeck/internal/domain/model"
)

// MatchesDependencies defines the interface for match listing.
type MatchesDependencies interface {
	Matches(ctx context.Context) ([]model.Match, error)
}

// MatchesHandler handles match listing requests.
type MatchesHandler struct {
	deps MatchesDependencies
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps MatchesDependencies) *MatchesHandler {
	return &MatchesHandler{deps: deps}
}

type matchesResponse struct {
	Matches []model.Match `json:"matches"`
}

// HandleGetMatches handles GET /matches requests.
func (h *MatchesHandler) HandleGetMatches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	ms, err := h.deps.Matches(r.Context())
	if err != nil {
		if errors.Is(err, backend.ErrNetwork) {
			writeError(w, http.StatusBadGateway, "network_error", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err)
		return
	}
	if ms == nil {
		ms = []model.Match{}
	}
	writeJSON(w, http.StatusOK, matchesResponse{Matches: ms})
}
