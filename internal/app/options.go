package app

import (
	"time"

	"github.com/okian/vigil/internal/domain/engine"
	"github.com/okian/vigil/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithQueueSize sets the ingest queue capacity.
func WithQueueSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// WithMonitorBuffer sets the per-stream monitor inbox size.
func WithMonitorBuffer(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.monitorBuffer = n
		}
	}
}

// WithDedupeSize sets the idempotency window size.
func WithDedupeSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.dedupeSize = n
		}
	}
}

// WithMaxAlerts sets how many alerts are retained.
func WithMaxAlerts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAlerts = n
		}
	}
}

// WithFallenTimeout sets the stay-down escalation timeout for new engines.
func WithFallenTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.engineOpts = append(s.engineOpts, engine.WithFallenTimeout(d))
		}
	}
}

// WithSuddenFallWindow sets the standing-to-down debounce window for new
// engines.
func WithSuddenFallWindow(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.engineOpts = append(s.engineOpts, engine.WithSuddenFallWindow(d))
		}
	}
}

// WithCooldown sets the post-alert suppression window for new engines.
func WithCooldown(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.engineOpts = append(s.engineOpts, engine.WithCooldown(d))
		}
	}
}

// WithHistoryWindow sizes engine history buffers: seconds of history at
// the expected frame rate.
func WithHistoryWindow(seconds float64, fps int) Option {
	return func(s *Service) {
		if seconds > 0 || fps > 0 {
			s.engineOpts = append(s.engineOpts, engine.WithHistoryWindow(seconds, fps))
		}
	}
}

// WithEngineOptions appends raw engine options, applied to every
// per-stream engine the pool creates.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(s *Service) {
		s.engineOpts = append(s.engineOpts, opts...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
