// Package api declares HTTP contracts and route registration helpers
// for the UI-facing facade.
package api

import (
	"context"
	"net/http"

	"github.com/sportlink/swipedeck/internal/domain/quota"
)

// QuotaDependencies defines the interface for quota reads.
type QuotaDependencies interface {
	Quota(ctx context.Context) quota.State
	RefreshQuota(ctx context.Context) error
}

// QuotaHandler handles quota requests.
type QuotaHandler struct {
	deps QuotaDependencies
}

// NewQuotaHandler creates a new quota handler.
func NewQuotaHandler(deps QuotaDependencies) *QuotaHandler {
	return &QuotaHandler{deps: deps}
}

// HandleGetQuota handles GET /quota requests. The backend snapshot is
// refreshed first; when the refresh fails the last known local state is
// served so the UI never loses its counter.
func (h *QuotaHandler) HandleGetQuota(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	refreshErr := h.deps.RefreshQuota(r.Context())
	state := h.deps.Quota(r.Context())

	resp := struct {
		quota.State
		Stale bool `json:"stale,omitempty"`
	}{State: state, Stale: refreshErr != nil}

	writeJSON(w, http.StatusOK, resp)
}
