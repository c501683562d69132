// Package api declares HTTP contracts and route registration helpers
// for the UI-facing facade.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sportlink/swipedeck/internal/domain/gesture"
)

// Pointer actions accepted by POST /pointer.
const (
	pointerDown = "down"
	pointerMove = "move"
	pointerUp   = "up"
)

// PointerDependencies defines the interface for the gesture event stream.
type PointerDependencies interface {
	PointerDown(ctx context.Context, x float64) gesture.Snapshot
	PointerMove(ctx context.Context, x float64) gesture.Snapshot
	PointerUp(ctx context.Context) gesture.Snapshot
}

// PointerHandler handles pointer event requests.
type PointerHandler struct {
	deps PointerDependencies
}

// NewPointerHandler creates a new pointer handler.
func NewPointerHandler(deps PointerDependencies) *PointerHandler {
	return &PointerHandler{deps: deps}
}

// pointerRequest mirrors the schema for POST /pointer. Y is accepted for
// forward compatibility but only horizontal displacement drives the
// gesture.
type pointerRequest struct {
	Action string  `json:"action"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

func (p pointerRequest) validate() error {
	switch p.Action {
	case pointerDown, pointerMove, pointerUp:
		return nil
	}
	return errors.New("action must be one of down, move, up")
}

// HandlePointer handles POST /pointer requests and returns the resulting
// gesture snapshot.
func (h *PointerHandler) HandlePointer(w http.ResponseWriter, r *http.Request) {
	const op = "api.pointer"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req pointerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", WrapKind(op, ErrBadRequest, err))
		return
	}

	var snap gesture.Snapshot
	switch req.Action {
	case pointerDown:
		snap = h.deps.PointerDown(r.Context(), req.X)
	case pointerMove:
		snap = h.deps.PointerMove(r.Context(), req.X)
	case pointerUp:
		snap = h.deps.PointerUp(r.Context())
	}

	writeJSON(w, http.StatusOK, snap)
}
