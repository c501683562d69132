// Package api declares HTTP contracts and route registration helpers
// for the UI-facing facade.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	engine "github.com/sportlink/swipedeck/internal/app"
)

// DeckDependencies defines the interface for deck operations.
type DeckDependencies interface {
	DeckState(ctx context.Context) engine.DeckState
	SetFilter(ctx context.Context, f string) string
	Refresh(ctx context.Context)
}

// DeckHandler handles deck requests.
type DeckHandler struct {
	deps DeckDependencies
}

// NewDeckHandler creates a new deck handler.
func NewDeckHandler(deps DeckDependencies) *DeckHandler {
	return &DeckHandler{deps: deps}
}

// HandleGetDeck handles GET /deck requests.
func (h *DeckHandler) HandleGetDeck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.DeckState(r.Context()))
}

// filterRequest mirrors the schema for POST /deck/filter.
type filterRequest struct {
	ProfileType string `json:"profile_type"`
}

// filterResponse reports the filter actually applied. A denied premium
// filter comes back as "all"; the paywall prompt travels on the bus.
type filterResponse struct {
	Applied string `json:"applied"`
}

// HandleSetFilter handles POST /deck/filter requests.
func (h *DeckHandler) HandleSetFilter(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_filter"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", WrapKind(op, ErrBadRequest, err))
		return
	}
	applied := h.deps.SetFilter(r.Context(), req.ProfileType)
	writeJSON(w, http.StatusOK, filterResponse{Applied: applied})
}

// HandleRefresh handles POST /deck/refresh requests, the manual reload
// offered by the empty state.
func (h *DeckHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	h.deps.Refresh(r.Context())
	writeJSON(w, http.StatusOK, h.deps.DeckState(r.Context()))
}
