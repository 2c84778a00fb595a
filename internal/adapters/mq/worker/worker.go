// Package worker runs per-stream monitors that feed frames to
// fall-detection engines.
//
// The engine for a stream must see its ticks in order, so unlike a flat
// worker pool each stream gets exactly one monitor goroutine owning one
// engine. A single dispatcher drains the shared frame queue and routes
// by stream ID, creating monitors lazily.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/okian/vigil/internal/adapters/repository"
	"github.com/okian/vigil/internal/domain/engine"
	"github.com/okian/vigil/internal/domain/model"
	"github.com/okian/vigil/internal/domain/pose"
	"github.com/okian/vigil/pkg/logger"
	"github.com/okian/vigil/pkg/metrics"
)

// Default pool configuration constants.
const (
	defaultInboxSize       = 64
	monitorShutdownTimeout = 5 * time.Second
)

// Analyzer is one stream's fall-detection engine.
type Analyzer interface {
	Analyze(snap *pose.Snapshot) (engine.Result, engine.Report)
	Reset()
}

// Recorder persists per-tick observations and emitted alerts.
type Recorder interface {
	RecordObservation(ctx context.Context, obs repository.Observation) error
	AppendAlert(ctx context.Context, a repository.Alert) (repository.Alert, error)
}

// Queue defines how the dispatcher receives frames.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Frame
}

// Monitor owns the engine for a single stream and processes its frames
// sequentially. The engine is not safe for concurrent use, so mu guards
// every engine call: ticks on the monitor goroutine and resets arriving
// from HTTP handlers.
type Monitor struct {
	streamID string
	mu       sync.Mutex // guards eng
	eng      Analyzer
	recorder Recorder
	inbox    chan model.Frame
	done     chan struct{}
	logger   logger.Logger
}

func newMonitor(streamID string, eng Analyzer, recorder Recorder, inboxSize int) *Monitor {
	return &Monitor{
		streamID: streamID,
		eng:      eng,
		recorder: recorder,
		inbox:    make(chan model.Frame, inboxSize),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("monitor").Named(streamID),
	}
}

// run consumes the monitor's inbox until it is closed or ctx ends.
func (m *Monitor) run(ctx context.Context) {
	defer close(m.done)

	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-m.inbox:
			if !ok {
				return
			}
			m.process(ctx, f)
		}
	}
}

// process runs one engine tick and records its outcome.
func (m *Monitor) process(ctx context.Context, f model.Frame) {
	start := time.Now()

	var snap *pose.Snapshot
	if f.PersonPresent {
		snap = f.Snapshot
	}
	m.mu.Lock()
	res, rep := m.eng.Analyze(snap)
	m.mu.Unlock()

	metrics.RecordEngineTickLatency(float64(time.Since(start).Milliseconds()))
	metrics.RecordFrameProcessed()
	metrics.RecordDetection(res.String())
	if res == engine.NoPerson {
		metrics.RecordFrameNoPerson()
	} else if rep.Status == engine.StatusOK {
		metrics.RecordPosture(rep.Posture.String())
	}

	obs := repository.Observation{
		StreamID: m.streamID,
		TS:       f.TS,
		Result:   res,
		Report:   rep,
	}
	if err := m.recorder.RecordObservation(ctx, obs); err != nil {
		m.logger.Error(ctx, "failed to record observation", logger.Error(err))
	}

	// Alerts and recoveries go to the alert log; everything else is only
	// visible as the stream's latest status. Cooldown ticks replay the
	// alerting result without a fresh transition, so only fully analyzed
	// ticks may record — otherwise every suppressed tick would re-append
	// the alert the cooldown exists to silence.
	if rep.Status == engine.StatusOK && (res.IsAlert() || rep.Reason == engine.ReasonRecovered) {
		metrics.RecordAlert(string(rep.Reason))
		alert := repository.Alert{
			StreamID: m.streamID,
			TS:       f.TS,
			Result:   res,
			Reason:   rep.Reason,
			Report:   rep,
		}
		if _, err := m.recorder.AppendAlert(ctx, alert); err != nil {
			m.logger.Error(ctx, "failed to append alert", logger.Error(err))
		}
		m.logger.Warn(ctx, "safety event",
			logger.String("result", res.String()),
			logger.String("reason", string(rep.Reason)),
			logger.Float64("time_down", rep.TimeDown),
			logger.Float64("body_angle", rep.BodyAngle),
		)
	}
}

// Pool dispatches frames from the shared queue to per-stream monitors.
type Pool struct {
	queue       Queue
	newAnalyzer func(streamID string) Analyzer
	recorder    Recorder
	inboxSize   int

	mu       sync.RWMutex
	monitors map[string]*Monitor

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewPool creates a pool that builds one Analyzer per stream via the
// factory.
func NewPool(q Queue, factory func(streamID string) Analyzer, recorder Recorder, opts ...PoolOption) *Pool {
	p := &Pool{
		queue:       q,
		newAnalyzer: factory,
		recorder:    recorder,
		inboxSize:   defaultInboxSize,
		monitors:    make(map[string]*Monitor),
		shutdown:    make(chan struct{}),
		done:        make(chan struct{}),
		logger:      logger.Get().Named("monitor-pool"),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Start launches the dispatch loop.
func (p *Pool) Start(ctx context.Context) {
	go p.dispatch(ctx)
}

// dispatch drains the queue and routes frames to monitors by stream ID.
func (p *Pool) dispatch(ctx context.Context) {
	defer close(p.done)

	frames := p.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case f, ok := <-frames:
			if !ok {
				return
			}
			m := p.monitor(ctx, f.StreamID)
			select {
			case m.inbox <- f:
			default:
				// A stalled monitor must not stall every other stream.
				metrics.RecordFrameDropped()
				p.logger.Warn(ctx, "monitor inbox full, dropping frame",
					logger.String("stream", f.StreamID),
					logger.String("frame", f.FrameID),
				)
			}
		}
	}
}

// monitor returns the monitor for a stream, creating and starting it on
// first sight.
func (p *Pool) monitor(ctx context.Context, streamID string) *Monitor {
	p.mu.RLock()
	m, ok := p.monitors[streamID]
	p.mu.RUnlock()
	if ok {
		return m
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if m, ok = p.monitors[streamID]; ok {
		return m
	}
	m = newMonitor(streamID, p.newAnalyzer(streamID), p.recorder, p.inboxSize)
	p.monitors[streamID] = m
	go m.run(ctx)
	metrics.UpdateMonitorCount(len(p.monitors))
	p.logger.Info(ctx, "monitor started", logger.String("stream", streamID))
	return m
}

// Count returns the number of running monitors.
func (p *Pool) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.monitors)
}

// reset clears the monitor's engine state, serialized against in-flight
// ticks.
func (m *Monitor) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eng.Reset()
}

// Reset clears fall-tracking state on the monitor for a stream. Returns
// false if the stream has no monitor.
func (p *Pool) Reset(streamID string) bool {
	p.mu.RLock()
	m, ok := p.monitors[streamID]
	p.mu.RUnlock()
	if !ok {
		return false
	}
	m.reset()
	return true
}

// Stop gracefully stops the dispatcher and all monitors.
func (p *Pool) Stop() {
	close(p.shutdown)

	// Let the dispatcher finish before closing inboxes so it never sends
	// on a closed channel.
	select {
	case <-p.done:
	case <-time.After(monitorShutdownTimeout):
	}

	p.mu.Lock()
	for _, m := range p.monitors {
		close(m.inbox)
	}
	monitors := make([]*Monitor, 0, len(p.monitors))
	for _, m := range p.monitors {
		monitors = append(monitors, m)
	}
	p.mu.Unlock()

	for _, m := range monitors {
		select {
		case <-m.done:
		case <-time.After(monitorShutdownTimeout):
		}
	}
}
