// Package app wires the ingest queue, the per-stream monitor pool, the
// idempotency window, and the observation store into one service with a
// small surface for the HTTP adapter.
package app

import (
	"context"
	"time"

	"github.com/okian/vigil/internal/adapters/mq/queue"
	"github.com/okian/vigil/internal/adapters/mq/worker"
	"github.com/okian/vigil/internal/adapters/repository"
	"github.com/okian/vigil/internal/domain/dedupe"
	"github.com/okian/vigil/internal/domain/engine"
	"github.com/okian/vigil/internal/domain/model"
	"github.com/okian/vigil/pkg/logger"
)

// Stats is a snapshot of service counters for the stats endpoint.
type Stats struct {
	QueueSize     int      `json:"queue_size"`
	MonitorCount  int      `json:"monitor_count"`
	StreamCount   int      `json:"stream_count"`
	AlertCount    int      `json:"alert_count"`
	DedupeTracked int64    `json:"dedupe_tracked"`
	Streams       []string `json:"streams"`
}

// Service is the top-level application service.
type Service struct {
	queue   queue.Queue
	deduper dedupe.Deduper
	store   *repository.MemStore
	pool    *worker.Pool

	queueSize     int
	monitorBuffer int
	dedupeSize    int
	maxAlerts     int
	engineOpts    []engine.Option

	cancel context.CancelFunc
	logger logger.Logger
}

// New creates a service with configuration options. Start must be called
// before frames are ingested.
func New(opts ...Option) *Service {
	s := &Service{
		logger: logger.Get().Named("service"),
	}

	for _, opt := range opts {
		opt(s)
	}

	var queueOpts []queue.Option
	if s.queueSize > 0 {
		queueOpts = append(queueOpts, queue.WithCapacity(s.queueSize))
	}
	s.queue = queue.NewInMemoryQueue(queueOpts...)

	var dedupeOpts []dedupe.Option
	if s.dedupeSize > 0 {
		dedupeOpts = append(dedupeOpts, dedupe.WithWindowSize(s.dedupeSize))
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupeOpts...)

	var storeOpts []repository.Option
	if s.maxAlerts > 0 {
		storeOpts = append(storeOpts, repository.WithMaxAlerts(s.maxAlerts))
	}
	s.store = repository.NewMemStore(storeOpts...)

	engineOpts := s.engineOpts
	factory := func(streamID string) worker.Analyzer {
		return engine.New(engineOpts...)
	}
	var poolOpts []worker.PoolOption
	if s.monitorBuffer > 0 {
		poolOpts = append(poolOpts, worker.WithInboxSize(s.monitorBuffer))
	}
	s.pool = worker.NewPool(s.queue, factory, s.store, poolOpts...)

	return s
}

// Start launches the monitor pool dispatcher.
func (s *Service) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.pool.Start(ctx)
	s.logger.Info(ctx, "service started")
}

// Stop drains and shuts down the pipeline.
func (s *Service) Stop() {
	if err := s.queue.Close(); err != nil {
		s.logger.Error(context.Background(), "failed to close queue", logger.Error(err))
	}
	s.pool.Stop()
	if s.cancel != nil {
		s.cancel()
	}
	s.logger.Info(context.Background(), "service stopped")
}

// Ingest enqueues a frame for analysis. Returns false when the queue is
// full or closed; the caller decides how to surface the backpressure.
func (s *Service) Ingest(ctx context.Context, f model.Frame) bool {
	if f.TS.IsZero() {
		f.TS = time.Now().UTC()
	}
	return s.queue.Enqueue(ctx, f)
}

// SeenAndRecord atomically checks and records a frame ID for idempotency.
func (s *Service) SeenAndRecord(ctx context.Context, frameID string) bool {
	return s.deduper.SeenAndRecord(ctx, frameID)
}

// Unrecord forgets a frame ID so a retransmission can be accepted.
func (s *Service) Unrecord(ctx context.Context, frameID string) {
	s.deduper.Unrecord(ctx, frameID)
}

// Status returns the latest observation for a stream.
func (s *Service) Status(ctx context.Context, streamID string) (repository.Observation, error) {
	return s.store.Status(ctx, streamID)
}

// Alerts returns up to n retained alerts, most recent first.
func (s *Service) Alerts(ctx context.Context, n int) ([]repository.Alert, error) {
	return s.store.Alerts(ctx, n)
}

// Streams returns the IDs of all observed streams.
func (s *Service) Streams(ctx context.Context) []string {
	return s.store.Streams(ctx)
}

// ResetStream clears fall-tracking state for a stream's engine. Returns
// false if the stream has never been observed.
func (s *Service) ResetStream(ctx context.Context, streamID string) bool {
	return s.pool.Reset(streamID)
}

// GetStats returns a snapshot of service counters.
func (s *Service) GetStats(ctx context.Context) Stats {
	return Stats{
		QueueSize:     s.queue.Len(ctx),
		MonitorCount:  s.pool.Count(),
		StreamCount:   len(s.store.Streams(ctx)),
		AlertCount:    s.store.Count(ctx),
		DedupeTracked: s.deduper.Size(),
		Streams:       s.store.Streams(ctx),
	}
}
