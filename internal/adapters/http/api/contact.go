// Package api declares HTTP contracts and route registration helpers
// for the UI-facing facade.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sportlink/swipedeck/internal/adapters/backend"
	"github.com/sportlink/swipedeck/internal/domain/model"
)

// ContactDependencies defines the interface for contact reveals.
type ContactDependencies interface {
	RevealContact(ctx context.Context, userID string) (model.ContactInfo, error)
}

// ContactHandler handles contact reveal requests.
type ContactHandler struct {
	deps ContactDependencies
}

// NewContactHandler creates a new contact handler.
func NewContactHandler(deps ContactDependencies) *ContactHandler {
	return &ContactHandler{deps: deps}
}

// HandleGetContact handles GET /contact/{user_id} requests.
func (h *ContactHandler) HandleGetContact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	userID := strings.TrimPrefix(r.URL.Path, "/contact/")
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusBadRequest, "validation_error", ErrBadRequest)
		return
	}

	ci, err := h.deps.RevealContact(r.Context(), userID)
	if err != nil {
		writeContactError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ci)
}

// writeContactError translates classified backend failures. Entitlement
// denials carry the subscription marker so the shell can route to the
// paywall prompt already published on the bus.
func writeContactError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, backend.ErrFeatureDenied):
		writeJSON(w, http.StatusForbidden, errorResponse{
			Code:                 "feature_denied",
			Message:              backend.MessageOf(err),
			RequiresSubscription: backend.RequiresSubscription(err),
		})
	case errors.Is(err, backend.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, backend.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_error", err)
	case errors.Is(err, backend.ErrNetwork):
		writeError(w, http.StatusBadGateway, "network_error", err)
	default:
		writeError(w, http.StatusInternalServerError, "server_error", err)
	}
}
