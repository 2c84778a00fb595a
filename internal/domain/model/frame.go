// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/vigil/internal/domain/pose"
)

// Frame is one ingested tick for a monitored stream: either a landmark
// snapshot or an explicit person-absent signal.
type Frame struct {
	FrameID       string         // unique id for idempotency
	StreamID      string         // camera/stream identifier
	TS            time.Time      // upstream capture timestamp
	PersonPresent bool           // false signals "no person this frame"
	Snapshot      *pose.Snapshot // nil when PersonPresent is false
}
