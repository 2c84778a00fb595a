// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/okian/vigil/internal/adapters/repository"
	"github.com/okian/vigil/internal/domain/model"
	"github.com/okian/vigil/internal/domain/pose"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// SeenAndRecord atomically checks and records a frame ID.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets a frame ID so it can be retried after backpressure.
	Unrecord(ctx context.Context, id string)

	// Ingest pushes a frame for async analysis. Returns false on backpressure.
	Ingest(ctx context.Context, f model.Frame) bool

	// Read operations expose detection state.
	Status(ctx context.Context, streamID string) (repository.Observation, error)
	Alerts(ctx context.Context, n int) ([]repository.Alert, error)
	Streams(ctx context.Context) []string
	ResetStream(ctx context.Context, streamID string) bool
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	framesHandler *FramesHandler
	statusHandler *StatusHandler
	alertsHandler *AlertsHandler
	resetHandler  *ResetHandler
}

// NewServer creates a new API server with all handlers. maxAlertLimit
// caps GET /alerts?limit.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxAlertLimit int) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		framesHandler: NewFramesHandler(deps),
		statusHandler: NewStatusHandler(deps),
		alertsHandler: NewAlertsHandler(deps, maxAlertLimit),
		resetHandler:  NewResetHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/frames", MetricsMiddleware(s.framesHandler.HandlePostFrame, "frames"))
	mux.HandleFunc("/status/", MetricsMiddleware(s.statusHandler.HandleGetStatus, "status"))
	mux.HandleFunc("/streams", MetricsMiddleware(s.statusHandler.HandleGetStreams, "streams"))
	mux.HandleFunc("/alerts", MetricsMiddleware(s.alertsHandler.HandleGetAlerts, "alerts"))
	mux.HandleFunc("/reset/", MetricsMiddleware(s.resetHandler.HandlePostReset, "reset"))
}

// frameRequest mirrors the wire schema for POST /frames.
type frameRequest struct {
	FrameID       string       `json:"frame_id"`
	StreamID      string       `json:"stream_id"`
	TS            string       `json:"ts"`
	PersonPresent bool         `json:"person_present"`
	Landmarks     *pose.Joints `json:"landmarks"`
}

func (f frameRequest) validate() error {
	switch {
	case strings.TrimSpace(f.FrameID) == "":
		return errors.New("missing frame_id")
	case strings.TrimSpace(f.StreamID) == "":
		return errors.New("missing stream_id")
	case f.PersonPresent && f.Landmarks == nil:
		return errors.New("person_present without landmarks")
	}
	if f.TS != "" {
		if _, err := time.Parse(time.RFC3339, f.TS); err != nil {
			return errors.New("invalid ts; must be RFC3339")
		}
	}
	return nil
}

// frame converts the request into the internal model. validate must have
// passed first.
func (f frameRequest) frame() model.Frame {
	out := model.Frame{
		FrameID:       f.FrameID,
		StreamID:      f.StreamID,
		PersonPresent: f.PersonPresent,
	}
	if f.TS != "" {
		out.TS, _ = time.Parse(time.RFC3339, f.TS)
	}
	if f.PersonPresent && f.Landmarks != nil {
		out.Snapshot = f.Landmarks.Snapshot()
	}
	return out
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
