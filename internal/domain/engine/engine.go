// Package engine implements the temporal fall-state machine: it turns a
// sequence of classified postures into debounced, timeout-aware,
// cooldown-protected fall events.
//
// One Engine instance serves one camera stream, consumed sequentially by
// one caller at the incoming frame rate. Analyze never blocks and never
// fails; malformed input degrades to an unknown posture rather than an
// error, because a misclassified frame is preferable to crashing a
// safety-monitoring loop.
package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/okian/vigil/internal/domain/history"
	"github.com/okian/vigil/internal/domain/pose"
	"github.com/okian/vigil/internal/domain/posture"
	"github.com/okian/vigil/internal/timeutil"
)

// Result is the externally observable outcome of one engine tick.
type Result uint8

// Detection results.
const (
	Normal Result = iota
	BendingOver
	FallDetected
	PersonDown
	NoPerson
)

var resultNames = [...]string{
	Normal:       "normal",
	BendingOver:  "bending_over",
	FallDetected: "fall_detected",
	PersonDown:   "person_down",
	NoPerson:     "no_person",
}

func (r Result) String() string {
	if int(r) < len(resultNames) {
		return resultNames[r]
	}
	return "normal"
}

// MarshalText renders the result label for JSON payloads.
func (r Result) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText parses a result label.
func (r *Result) UnmarshalText(b []byte) error {
	s := string(b)
	for i, name := range resultNames {
		if name == s {
			*r = Result(i)
			return nil
		}
	}
	return fmt.Errorf("unknown result %q", s)
}

// IsAlert reports whether the result warrants downstream alerting.
func (r Result) IsAlert() bool {
	return r == FallDetected || r == PersonDown
}

// Status marks how a tick was handled.
type Status string

// Tick statuses.
const (
	StatusOK       Status = "ok"
	StatusCooldown Status = "cooldown"
	StatusNoPerson Status = "no_person"
)

// Reason codes attached to state transitions.
type Reason string

// Transition reasons.
const (
	ReasonSuddenFall Reason = "sudden_fall_from_standing"
	ReasonStayedDown Reason = "person_stayed_down"
	ReasonRecovered  Reason = "person_recovered"
)

// Report carries per-tick analysis detail for the alerting collaborator.
type Report struct {
	Status            Status          `json:"status"`
	Posture           posture.Posture `json:"posture"`
	PostureConfidence float64         `json:"posture_confidence"`
	BodyAngle         float64         `json:"body_angle"`
	HeadY             float64         `json:"head_y"`
	ShoulderY         float64         `json:"shoulder_y"`
	HipY              float64         `json:"hip_y"`
	HandsExtended     bool            `json:"hands_extended"`
	BodyHorizontal    bool            `json:"body_horizontal"`
	HeadAtHipLevel    bool            `json:"head_at_hip_level"`
	TimeDown          float64         `json:"time_down"`
	HipVelocity       float64         `json:"hip_velocity"`
	Reason            Reason          `json:"reason,omitempty"`
}

// Defaults for engine timing configuration.
const (
	DefaultFallenTimeout    = 5 * time.Second
	DefaultSuddenFallWindow = 2 * time.Second
	DefaultCooldown         = 30 * time.Second
	DefaultHistorySeconds   = 3.0
	DefaultFPS              = 30
)

// Engine holds the rolling history and fall-tracking state for one
// monitored stream. It is not safe for concurrent use; callers monitoring
// multiple streams run one Engine each.
type Engine struct {
	fallenTimeout    time.Duration
	suddenFallWindow time.Duration
	cooldown         time.Duration
	historySeconds   float64
	fps              int
	clock            timeutil.Clock

	snapshots *history.Ring[pose.Snapshot]
	postures  *history.Ring[posture.Posture]
	stamps    *history.Ring[time.Time]

	personIsDown   bool
	downSince      time.Time // zero = not down
	fallDetectedAt time.Time // zero = no fall alert this episode
	stayAlerted    bool      // person_down fired for this episode
	lastStandingAt time.Time // zero = never seen standing
	cooldownUntil  time.Time // zero = no cooldown armed

	lastResult  Result
	lastPosture posture.Posture
}

// New constructs an Engine with default timing configuration.
func New(opts ...Option) *Engine {
	e := &Engine{
		fallenTimeout:    DefaultFallenTimeout,
		suddenFallWindow: DefaultSuddenFallWindow,
		cooldown:         DefaultCooldown,
		historySeconds:   DefaultHistorySeconds,
		fps:              DefaultFPS,
		clock:            timeutil.RealClock{},
		lastPosture:      posture.Unknown,
	}

	for _, opt := range opts {
		opt(e)
	}

	size := int(e.historySeconds * float64(e.fps))
	if size < 1 {
		size = 1
	}
	e.snapshots = history.New[pose.Snapshot](size)
	e.postures = history.New[posture.Posture](size)
	e.stamps = history.New[time.Time](size)

	return e
}

// Analyze processes one tick. snap is nil when no person was detected in
// the frame. Time is read once at entry; all windows in a tick are
// evaluated against that instant.
func (e *Engine) Analyze(snap *pose.Snapshot) (Result, Report) {
	now := e.clock.Now()

	// Cooldown gate: after a person_down alert, suppress everything for
	// the cooldown window to prevent alert storms while the subject
	// remains motionless.
	if now.Before(e.cooldownUntil) {
		return e.lastResult, Report{Status: StatusCooldown, Posture: e.lastPosture}
	}

	if snap == nil {
		// Subject left the frame. Counting down-time against an absent
		// subject would produce false "stayed down" alerts, so treat the
		// departure as implicitly safe.
		if e.personIsDown {
			e.clearFallState()
		}
		e.lastResult = NoPerson
		return NoPerson, Report{Status: StatusNoPerson, Posture: e.lastPosture}
	}

	p, conf := posture.Classify(snap, e.postures.Values())

	e.snapshots.Push(*snap)
	e.postures.Push(p)
	e.stamps.Push(now)
	e.lastPosture = p

	if p == posture.Standing {
		e.lastStandingAt = now
	}

	m := posture.ComputeMetrics(snap)
	rep := Report{
		Status:            StatusOK,
		Posture:           p,
		PostureConfidence: conf,
		BodyAngle:         m.BodyAngle,
		HeadY:             m.HeadY,
		ShoulderY:         m.ShoulderY,
		HipY:              m.HipY,
		HandsExtended:     m.HandsExtended,
		BodyHorizontal:    m.BodyHorizontal,
		HeadAtHipLevel:    m.HeadAtHipLevel,
		HipVelocity:       e.hipVelocity(),
	}

	res := e.transition(p, m, now, &rep)
	e.lastResult = res
	return res, rep
}

// transition applies the fall-state rules for one tick and mutates the
// tracking fields.
func (e *Engine) transition(p posture.Posture, m posture.Metrics, now time.Time, rep *Report) Result {
	isDown := p == posture.LyingDown || (m.BodyHorizontal && m.HeadAtHipLevel)

	// Sudden fall: a standing-to-down transition inside the debounce
	// window. Requiring recent standing distinguishes an actual fall
	// from a subject who was already seated or lying when tracking
	// (re)acquired them.
	if p == posture.Falling || (isDown && !e.personIsDown) {
		if !e.lastStandingAt.IsZero() && elapsed(now, e.lastStandingAt) < e.suddenFallWindow {
			e.personIsDown = true
			e.downSince = now
			e.fallDetectedAt = now
			rep.Reason = ReasonSuddenFall
			return FallDetected
		}
	}

	// Down tracking: however they got there, start (or continue) the
	// down episode and escalate once the stay-down timeout passes.
	if isDown {
		if !e.personIsDown {
			e.personIsDown = true
			e.downSince = now
		}
		var timeDown time.Duration
		if !e.downSince.IsZero() {
			timeDown = elapsed(now, e.downSince)
		}
		rep.TimeDown = timeDown.Seconds()

		if timeDown >= e.fallenTimeout && !e.stayAlerted {
			e.stayAlerted = true
			e.fallDetectedAt = now
			e.cooldownUntil = now.Add(e.cooldown)
			rep.Reason = ReasonStayedDown
			return PersonDown
		}
	}

	// Recovery: a standing classification while marked down ends the
	// episode and re-arms fresh fall detection.
	if p == posture.Standing && e.personIsDown {
		e.clearFallState()
		rep.Reason = ReasonRecovered
	}

	if p == posture.Bending {
		return BendingOver
	}
	return Normal
}

// hipVelocity estimates the vertical hip speed in normalized units per
// second as the least-squares slope of hip height over the retained
// window. Positive values move toward the bottom of the frame. The value
// is reported for observability and gates no alert.
func (e *Engine) hipVelocity() float64 {
	n := e.snapshots.Len()
	if n < 2 {
		return 0
	}
	ts := make([]float64, n)
	ys := make([]float64, n)
	base := e.stamps.At(0)
	for i := 0; i < n; i++ {
		ts[i] = e.stamps.At(i).Sub(base).Seconds()
		ys[i] = e.snapshots.At(i).CenterHip.Y
	}
	// Identical timestamps would make the fit degenerate.
	if ts[n-1] <= 0 {
		return 0
	}
	slope := linearSlope(ts, ys)
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return 0
	}
	return slope
}

// clearFallState ends the current down episode. History and the standing
// timestamp survive so a fresh fall remains detectable immediately.
func (e *Engine) clearFallState() {
	e.personIsDown = false
	e.downSince = time.Time{}
	e.fallDetectedAt = time.Time{}
	e.stayAlerted = false
}

// Reset returns the engine to its initial fall-tracking state without
// discarding timing configuration.
func (e *Engine) Reset() {
	e.snapshots.Clear()
	e.postures.Clear()
	e.stamps.Clear()
	e.clearFallState()
	e.lastStandingAt = time.Time{}
	e.cooldownUntil = time.Time{}
	e.lastResult = Normal
	e.lastPosture = posture.Unknown
}

// LastResult returns the most recent tick result.
func (e *Engine) LastResult() Result { return e.lastResult }

// LastPosture returns the most recent posture classification.
func (e *Engine) LastPosture() posture.Posture { return e.lastPosture }

// HistoryLen returns the number of retained history entries.
func (e *Engine) HistoryLen() int { return e.snapshots.Len() }

// elapsed returns now minus t, clamped at zero so a non-monotonic caller
// clock can never produce a negative window.
func elapsed(now, t time.Time) time.Duration {
	d := now.Sub(t)
	if d < 0 {
		return 0
	}
	return d
}
