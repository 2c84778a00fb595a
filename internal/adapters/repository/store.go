// Package repository defines the observation store interface and errors.
package repository

import (
	"context"
	"time"

	"github.com/okian/vigil/internal/domain/engine"
)

// Observation is the latest per-stream detection state.
type Observation struct {
	StreamID string        `json:"stream_id"`
	TS       time.Time     `json:"ts"`
	Result   engine.Result `json:"result"`
	Report   engine.Report `json:"report"`
}

// Alert is one recorded safety event (fall detected, person down, or
// recovery).
type Alert struct {
	ID       string        `json:"id"`
	StreamID string        `json:"stream_id"`
	TS       time.Time     `json:"ts"`
	Result   engine.Result `json:"result"`
	Reason   engine.Reason `json:"reason"`
	Report   engine.Report `json:"report"`
}

// Store provides read/write access to detection state.
type Store interface {
	// RecordObservation upserts the latest state for a stream.
	RecordObservation(ctx context.Context, obs Observation) error

	// AppendAlert records a safety event. An empty ID is assigned one.
	AppendAlert(ctx context.Context, a Alert) (Alert, error)

	// Status returns the latest observation for a stream.
	// Returns ErrUnknownStream if the stream has never been observed.
	Status(ctx context.Context, streamID string) (Observation, error)

	// Alerts returns up to n alerts, most recent first.
	Alerts(ctx context.Context, n int) ([]Alert, error)

	// Streams returns the IDs of all observed streams.
	Streams(ctx context.Context) []string

	// Count returns the number of retained alerts.
	Count(ctx context.Context) int
}
