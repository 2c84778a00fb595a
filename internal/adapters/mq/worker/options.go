// Package worker runs per-stream monitors that feed frames to
// fall-detection engines.
package worker

import "github.com/okian/vigil/pkg/logger"

// PoolOption applies a configuration option to the Pool.
type PoolOption func(*Pool)

// WithInboxSize sets the per-monitor frame buffer. When a monitor's
// inbox is full its frames are dropped rather than stalling other
// streams.
func WithInboxSize(size int) PoolOption {
	return func(p *Pool) {
		if size > 0 {
			p.inboxSize = size
		}
	}
}

// WithLogger sets a custom logger for the pool.
func WithLogger(l logger.Logger) PoolOption {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}
