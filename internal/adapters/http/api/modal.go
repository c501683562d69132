// Package api declares HTTP contracts and route registration helpers
// for the UI-facing facade.
package api

import (
	"context"
	"net/http"
)

// ModalDependencies defines the interface for modal control.
type ModalDependencies interface {
	DismissModal(ctx context.Context) bool
}

// ModalHandler handles match modal control requests.
type ModalHandler struct {
	deps ModalDependencies
}

// NewModalHandler creates a new modal handler.
func NewModalHandler(deps ModalDependencies) *ModalHandler {
	return &ModalHandler{deps: deps}
}

type dismissResponse struct {
	Dismissed bool `json:"dismissed"`
}

// HandleDismiss handles POST /modal/dismiss requests. Dismissing releases
// the next queued match presentation, if any.
func (h *ModalHandler) HandleDismiss(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, dismissResponse{Dismissed: h.deps.DismissModal(r.Context())})
}
