// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/vigil/internal/adapters/repository"
)

// Alert listing limits.
const (
	defaultAlertLimit = 50
	DefaultMaxLimit   = 1000
)

// AlertDependencies defines the interface for alert history reads.
type AlertDependencies interface {
	Alerts(ctx context.Context, n int) ([]repository.Alert, error)
}

// AlertsHandler handles alert history requests.
type AlertsHandler struct {
	deps     AlertDependencies
	maxLimit int
}

// NewAlertsHandler creates a new alerts handler. maxLimit caps the
// limit query parameter.
func NewAlertsHandler(deps AlertDependencies, maxLimit int) *AlertsHandler {
	if maxLimit < 1 {
		maxLimit = DefaultMaxLimit
	}
	return &AlertsHandler{deps: deps, maxLimit: maxLimit}
}

// HandleGetAlerts handles GET /alerts?limit=N requests.
func (h *AlertsHandler) HandleGetAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	limit := defaultAlertLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > h.maxLimit {
			writeError(w, http.StatusBadRequest, "bad_request", repository.ErrInvalidLimit)
			return
		}
		limit = n
	}
	alerts, err := h.deps.Alerts(r.Context(), limit)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidLimit) {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts, "count": len(alerts)})
}
