// Package dedupe defines the interface for idempotency tracking.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records seen frame IDs so upstream retransmissions are
// processed at most once.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID from the seen list, allowing it to be retried.
	// Used when a frame was marked seen but failed to enqueue
	// (e.g. queue backpressure).
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// inMemoryDeduper implements Deduper with a bounded FIFO window: once the
// window is full the oldest recorded ID is forgotten, which matches the
// retransmission pattern this guards against (duplicates arrive close to
// the original, never hours later).
type inMemoryDeduper struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	order []string // circular buffer of recorded IDs
	head  int
	count int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		order: make([]string, 50000), // default window
	}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]struct{}, len(d.order))
	return d
}

// SeenAndRecord atomically checks if id was seen and records it if not.
func (d *inMemoryDeduper) SeenAndRecord(ctx context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	if d.count == len(d.order) {
		// Window full: forget the oldest ID. It may already have been
		// unrecorded, in which case the map delete is a no-op.
		delete(d.seen, d.order[d.head])
		d.order[d.head] = id
		d.head = (d.head + 1) % len(d.order)
	} else {
		d.order[(d.head+d.count)%len(d.order)] = id
		d.count++
	}
	d.seen[id] = struct{}{}
	return false
}

// Unrecord removes an ID from the seen list, allowing it to be retried.
// The circular buffer slot is left in place and ages out naturally.
func (d *inMemoryDeduper) Unrecord(ctx context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, id)
}

// Size returns the current number of tracked IDs.
func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
