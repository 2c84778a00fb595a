package engine

import (
	"time"

	"github.com/okian/vigil/internal/timeutil"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithFallenTimeout sets how long a subject may stay down before the
// person_down escalation fires.
func WithFallenTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.fallenTimeout = d
		}
	}
}

// WithSuddenFallWindow sets the standing-to-down debounce window for the
// fall_detected alert.
func WithSuddenFallWindow(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.suddenFallWindow = d
		}
	}
}

// WithCooldown sets the alert-suppression window armed after a
// person_down alert.
func WithCooldown(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.cooldown = d
		}
	}
}

// WithHistoryWindow sizes the rolling history buffers: seconds of history
// at the expected frame rate. FPS is used only for sizing, never for
// timing.
func WithHistoryWindow(seconds float64, fps int) Option {
	return func(e *Engine) {
		if seconds > 0 {
			e.historySeconds = seconds
		}
		if fps > 0 {
			e.fps = fps
		}
	}
}

// WithClock sets the time source. Tests use a mock clock to exercise the
// timing rules without sleeping.
func WithClock(c timeutil.Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}
