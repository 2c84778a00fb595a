// Package dedupe defines the interface for idempotency tracking.
package dedupe

// Option applies a configuration option to the in-memory deduper.
type Option func(*inMemoryDeduper)

// WithWindowSize sets the number of IDs retained before the oldest is
// forgotten. Sizes below 1 are ignored.
func WithWindowSize(size int) Option {
	return func(d *inMemoryDeduper) {
		if size > 0 {
			d.order = make([]string, size)
		}
	}
}
