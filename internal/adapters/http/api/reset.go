// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"
)

// ResetDependencies defines the interface for clearing stream state.
type ResetDependencies interface {
	ResetStream(ctx context.Context, streamID string) bool
}

// ResetHandler handles stream reset requests.
type ResetHandler struct {
	deps ResetDependencies
}

// NewResetHandler creates a new reset handler.
func NewResetHandler(deps ResetDependencies) *ResetHandler {
	return &ResetHandler{deps: deps}
}

// HandlePostReset handles POST /reset/{stream_id} requests.
func (h *ResetHandler) HandlePostReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/reset/")
	if path == "" || strings.Contains(path, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if !h.deps.ResetStream(r.Context(), path) {
		writeError(w, http.StatusNotFound, "not_found", ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
