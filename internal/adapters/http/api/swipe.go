// Package api declares HTTP contracts and route registration helpers
// for the UI-facing facade.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sportlink/swipedeck/internal/domain/model"
)

// SwipeDependencies defines the interface for programmatic swipes.
type SwipeDependencies interface {
	SwipeHead(ctx context.Context, dir model.Direction) bool
}

// SwipeHandler handles programmatic swipe requests from the accept and
// reject buttons.
type SwipeHandler struct {
	deps SwipeDependencies
}

// NewSwipeHandler creates a new swipe handler.
func NewSwipeHandler(deps SwipeDependencies) *SwipeHandler {
	return &SwipeHandler{deps: deps}
}

// swipeRequest mirrors the schema for POST /swipe.
type swipeRequest struct {
	Direction string `json:"direction"`
}

func (s swipeRequest) validate() error {
	switch model.Direction(s.Direction) {
	case model.DirectionLike, model.DirectionDislike:
		return nil
	}
	return errors.New("direction must be like or dislike")
}

type swipeAck struct {
	Status string `json:"status"`
}

// HandleSwipe handles POST /swipe requests. The submission itself is
// asynchronous; its outcome travels on the event bus.
func (h *SwipeHandler) HandleSwipe(w http.ResponseWriter, r *http.Request) {
	const op = "api.swipe"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req swipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", WrapKind(op, ErrBadRequest, err))
		return
	}

	if !h.deps.SwipeHead(r.Context(), model.Direction(req.Direction)) {
		writeError(w, http.StatusConflict, "no_head_card", errors.New("no card to swipe"))
		return
	}

	writeJSON(w, http.StatusAccepted, swipeAck{Status: "accepted"})
}
