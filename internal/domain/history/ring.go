// Package history provides a fixed-capacity ring buffer for rolling
// per-frame state (snapshots, postures, timestamps).
package history

// Ring is a bounded buffer that evicts its oldest entry on overflow.
// Appends are O(1) and the backing array never grows, so a Ring puts a
// hard ceiling on retained memory. The zero value is not usable; use New.
type Ring[T any] struct {
	buf  []T
	head int // index of the oldest entry
	n    int // number of live entries
}

// New creates a Ring with the given capacity. Capacity must be at least 1.
func New[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Push appends v, evicting the oldest entry if the ring is full.
func (r *Ring[T]) Push(v T) {
	if r.n < len(r.buf) {
		r.buf[(r.head+r.n)%len(r.buf)] = v
		r.n++
		return
	}
	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
}

// Len returns the number of live entries.
func (r *Ring[T]) Len() int { return r.n }

// Cap returns the fixed capacity.
func (r *Ring[T]) Cap() int { return len(r.buf) }

// At returns the i-th entry in insertion order; index 0 is the oldest.
// At panics if i is out of range, mirroring slice indexing.
func (r *Ring[T]) At(i int) T {
	if i < 0 || i >= r.n {
		panic("history: index out of range")
	}
	return r.buf[(r.head+i)%len(r.buf)]
}

// Last returns up to n most recent entries in insertion order.
func (r *Ring[T]) Last(n int) []T {
	if n > r.n {
		n = r.n
	}
	if n <= 0 {
		return nil
	}
	out := make([]T, n)
	for i := 0; i < n; i++ {
		out[i] = r.At(r.n - n + i)
	}
	return out
}

// Values returns all live entries in insertion order.
func (r *Ring[T]) Values() []T { return r.Last(r.n) }

// Clear discards all entries without releasing the backing array.
func (r *Ring[T]) Clear() {
	var zero T
	for i := range r.buf {
		r.buf[i] = zero
	}
	r.head = 0
	r.n = 0
}
