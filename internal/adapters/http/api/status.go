// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/vigil/internal/adapters/repository"
)

// StatusDependencies defines the interface for stream status reads.
type StatusDependencies interface {
	Status(ctx context.Context, streamID string) (repository.Observation, error)
	Streams(ctx context.Context) []string
}

// StatusHandler handles stream status requests.
type StatusHandler struct {
	deps StatusDependencies
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(deps StatusDependencies) *StatusHandler {
	return &StatusHandler{deps: deps}
}

// HandleGetStatus handles GET /status/{stream_id} requests.
func (h *StatusHandler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/status/")
	if path == "" || strings.Contains(path, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	obs, err := h.deps.Status(r.Context(), path)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownStream) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, obs)
}

// HandleGetStreams handles GET /streams requests.
func (h *StatusHandler) HandleGetStreams(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"streams": h.deps.Streams(r.Context())})
}
