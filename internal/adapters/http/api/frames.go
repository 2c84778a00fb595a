// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/vigil/internal/domain/model"
	"github.com/okian/vigil/pkg/metrics"
)

// FrameDependencies defines the interface for frame ingest dependencies.
type FrameDependencies interface {
	SeenAndRecord(ctx context.Context, id string) bool
	Unrecord(ctx context.Context, id string)
	Ingest(ctx context.Context, f model.Frame) bool
}

// FramesHandler handles frame ingest requests.
type FramesHandler struct {
	deps FrameDependencies
}

// NewFramesHandler creates a new frames handler.
func NewFramesHandler(deps FrameDependencies) *FramesHandler {
	return &FramesHandler{deps: deps}
}

// HandlePostFrame handles POST /frames requests.
func (h *FramesHandler) HandlePostFrame(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_frame"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req frameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrap(op, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrap(op, err))
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), req.FrameID) {
		metrics.RecordFrameDuplicate()
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	// Try to enqueue for async analysis
	if ok := h.deps.Ingest(r.Context(), req.frame()); !ok {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), req.FrameID)
		writeError(w, http.StatusTooManyRequests, "backpressure", wrap(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}
