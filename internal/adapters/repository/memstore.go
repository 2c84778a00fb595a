package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/okian/vigil/internal/domain/history"
)

// Default store configuration constants.
const (
	defaultMaxAlerts = 1000
)

// MemStore implements Store in memory: a latest-observation map per
// stream and a bounded ring of alerts. Alert retention has a hard
// ceiling; the oldest alerts age out silently.
type MemStore struct {
	mu     sync.RWMutex
	latest map[string]Observation
	alerts *history.Ring[Alert]
}

// NewMemStore creates an in-memory store with configuration options.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		latest: make(map[string]Observation),
		alerts: history.New[Alert](defaultMaxAlerts),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// RecordObservation upserts the latest state for a stream.
func (s *MemStore) RecordObservation(ctx context.Context, obs Observation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[obs.StreamID] = obs
	return nil
}

// AppendAlert records a safety event, assigning an ID when absent.
func (s *MemStore) AppendAlert(ctx context.Context, a Alert) (Alert, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts.Push(a)
	return a, nil
}

// Status returns the latest observation for a stream.
func (s *MemStore) Status(ctx context.Context, streamID string) (Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obs, ok := s.latest[streamID]
	if !ok {
		return Observation{}, ErrUnknownStream
	}
	return obs, nil
}

// Alerts returns up to n alerts, most recent first.
func (s *MemStore) Alerts(ctx context.Context, n int) ([]Alert, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	recent := s.alerts.Last(n)
	// Ring order is oldest first; callers want newest first.
	out := make([]Alert, len(recent))
	for i, a := range recent {
		out[len(recent)-1-i] = a
	}
	return out, nil
}

// Streams returns the IDs of all observed streams, sorted for stable output.
func (s *MemStore) Streams(ctx context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.latest))
	for id := range s.latest {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Count returns the number of retained alerts.
func (s *MemStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.alerts.Len()
}
