// Package posture classifies a single landmark snapshot into a body
// posture label using deterministic geometric rules.
//
// The rules are intentionally simple linear threshold tests rather than a
// learned model: a missed fall is safety-critical, so the classifier
// favors explainable, auditable geometry over subtlety.
package posture

import (
	"fmt"
	"math"

	"github.com/okian/vigil/internal/domain/pose"
)

// Posture is an instantaneous classification of body configuration.
type Posture uint8

// Posture labels.
const (
	Unknown Posture = iota
	Standing
	Sitting
	Bending
	LyingDown
	Falling
)

var postureNames = [...]string{
	Unknown:   "unknown",
	Standing:  "standing",
	Sitting:   "sitting",
	Bending:   "bending",
	LyingDown: "lying_down",
	Falling:   "falling",
}

func (p Posture) String() string {
	if int(p) < len(postureNames) {
		return postureNames[p]
	}
	return "unknown"
}

// MarshalText renders the posture label for JSON payloads.
func (p Posture) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a posture label.
func (p *Posture) UnmarshalText(b []byte) error {
	s := string(b)
	for i, name := range postureNames {
		if name == s {
			*p = Posture(i)
			return nil
		}
	}
	return fmt.Errorf("unknown posture %q", s)
}

// Geometric thresholds, in normalized image units and degrees.
const (
	torsoHorizontalMax  = 0.15 // shoulder/hip height spread for a flat torso
	headBelowHipSlack   = 0.1  // nose below hip minus this = head dropped
	headAtHipSlack      = 0.15 // looser variant used by the engine's down test
	lyingMaxHeight      = 0.4
	standingMinHeight   = 0.5
	standingMaxAngle    = 30.0
	shoulderAboveHipMin = 0.1
	sittingMinHipY      = 0.6
	sittingMaxAngle     = 40.0
	bendingMinAngle     = 40.0
	bendingMaxAngle     = 80.0
	bendingMinHeight    = 0.3
	fallingMinAngle     = 50.0
	fallingLookback     = 5 // classifications inspected by the falling rule
)

// Classification confidences per rule.
const (
	confLying    = 0.85
	confStanding = 0.9
	confSitting  = 0.75
	confBending  = 0.8
	confFalling  = 0.8
	confUnknown  = 0.5
)

// Classify returns the posture label and confidence for one snapshot.
// recent is the rolling posture history, oldest first; only the falling
// rule consults it, looking at the oldest of the last five entries.
//
// Rule order is a correctness contract: several rule bodies can hold at
// once (a curled-up lying posture also satisfies the bending geometry)
// and the first match wins.
func Classify(s *pose.Snapshot, recent []Posture) (Posture, float64) {
	if s == nil || s.Degenerate {
		return Unknown, confUnknown
	}

	noseY := s.Nose.Y
	shoulderY := s.CenterShoulder.Y
	hipY := s.CenterHip.Y
	kneeY := s.KneeY()
	ankleY := s.AnkleY()

	bodyAngle := s.BodyAngle
	bodyHeight := ankleY - noseY
	torsoHorizontal := math.Abs(shoulderY-hipY) < torsoHorizontalMax
	headBelowNormal := noseY > hipY-headBelowHipSlack

	// Lying: flat torso, minimal vertical span, head dropped.
	if torsoHorizontal && bodyHeight < lyingMaxHeight && headBelowNormal {
		return LyingDown, confLying
	}

	// Standing: full height, near-vertical trunk, shoulders strictly
	// above hips in image terms.
	if bodyHeight > standingMinHeight && bodyAngle < standingMaxAngle && !headBelowNormal {
		if math.Abs(shoulderY-hipY) > shoulderAboveHipMin {
			return Standing, confStanding
		}
	}

	// Sitting: hips low in frame with knees bent above them.
	if hipY > sittingMinHipY && kneeY > hipY && bodyAngle < sittingMaxAngle {
		return Sitting, confSitting
	}

	// Bending: tilted but controlled, still substantially upright.
	if bodyAngle > bendingMinAngle && bodyAngle < bendingMaxAngle && bodyHeight > bendingMinHeight {
		return Bending, confBending
	}

	// Falling: the subject was standing five classifications ago and the
	// trunk has since tipped past recovery. Only the oldest entry of the
	// lookback window is inspected; the window is a deliberate, if
	// imprecise, transition heuristic.
	if len(recent) >= fallingLookback {
		if recent[len(recent)-fallingLookback] == Standing {
			if bodyAngle > fallingMinAngle || torsoHorizontal {
				return Falling, confFalling
			}
		}
	}

	return Unknown, confUnknown
}

// Metrics are auxiliary body measurements computed alongside
// classification and consumed by the fall-state engine.
type Metrics struct {
	BodyAngle      float64 `json:"body_angle"`
	HeadY          float64 `json:"head_y"`
	ShoulderY      float64 `json:"shoulder_y"`
	HipY           float64 `json:"hip_y"`
	HandsExtended  bool    `json:"hands_extended"`
	BodyHorizontal bool    `json:"body_horizontal"`
	HeadAtHipLevel bool    `json:"head_at_hip_level"`
}

// ComputeMetrics derives the engine-facing body metrics for one snapshot.
// HandsExtended flags wrists below the hips (a person reaching out or
// bracing); HeadAtHipLevel uses a looser slack than the classifier's
// head-dropped test.
func ComputeMetrics(s *pose.Snapshot) Metrics {
	if s == nil {
		return Metrics{}
	}
	return Metrics{
		BodyAngle:      s.BodyAngle,
		HeadY:          s.Nose.Y,
		ShoulderY:      s.CenterShoulder.Y,
		HipY:           s.CenterHip.Y,
		HandsExtended:  s.WristY() > s.CenterHip.Y,
		BodyHorizontal: math.Abs(s.CenterShoulder.Y-s.CenterHip.Y) < torsoHorizontalMax,
		HeadAtHipLevel: s.Nose.Y > s.CenterHip.Y-headAtHipSlack,
	}
}
