// Package pose models one frame's worth of body landmarks as produced by
// an external landmark extractor (MediaPipe-style normalized coordinates).
//
// Coordinates are normalized image space: x and y in [0,1] with y growing
// downward, z an unitless depth estimate. Upstream detections can be
// partial; every accessor here is total, with per-joint neutral fallbacks
// standing in for missing or invalid joints.
package pose

import "math"

// Neutral fallback positions for joints that are missing or invalid.
// They approximate an upright subject centered in frame.
const (
	neutralNoseY     = 0.2
	neutralShoulderY = 0.3
	neutralHipY      = 0.5
	neutralKneeY     = 0.7
	neutralAnkleY    = 0.9
	neutralWristY    = 0.5
	neutralX         = 0.5
)

// Landmark is one tracked joint position.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// valid reports whether the landmark's image-space coordinates are inside
// the normalized range. NaN and infinities fail the comparisons.
func (l Landmark) valid() bool {
	return l.X >= 0 && l.X <= 1 && l.Y >= 0 && l.Y <= 1 &&
		!math.IsNaN(l.Z) && !math.IsInf(l.Z, 0)
}

// neutral returns the fallback landmark for a joint at the given height.
func neutral(y float64) Landmark {
	return Landmark{X: neutralX, Y: y}
}

// Snapshot is a sanitized set of landmarks for one frame plus the derived
// trunk fields the classifier consumes.
type Snapshot struct {
	Nose          Landmark
	LeftShoulder  Landmark
	RightShoulder Landmark
	LeftHip       Landmark
	RightHip      Landmark
	LeftKnee      Landmark
	RightKnee     Landmark
	LeftAnkle     Landmark
	RightAnkle    Landmark
	LeftWrist     Landmark
	RightWrist    Landmark

	// Derived fields. CenterShoulder and CenterHip are midpoints of the
	// paired joints; BodyAngle is trunk tilt from vertical in degrees
	// (0 = upright, 90 = horizontal).
	CenterShoulder Landmark
	CenterHip      Landmark
	BodyAngle      float64

	// Degenerate marks a snapshot whose inbound coordinates failed
	// validation. Geometry still evaluates (fallbacks are substituted)
	// but classification must not be trusted.
	Degenerate bool
}

// Joints is the inbound wire shape for a single detection. Absent joints
// are nil. BodyAngle may be precomputed upstream; when nil it is derived
// from the shoulder and hip centers.
type Joints struct {
	Nose          *Landmark `json:"nose"`
	LeftShoulder  *Landmark `json:"left_shoulder"`
	RightShoulder *Landmark `json:"right_shoulder"`
	LeftHip       *Landmark `json:"left_hip"`
	RightHip      *Landmark `json:"right_hip"`
	LeftKnee      *Landmark `json:"left_knee"`
	RightKnee     *Landmark `json:"right_knee"`
	LeftAnkle     *Landmark `json:"left_ankle"`
	RightAnkle    *Landmark `json:"right_ankle"`
	LeftWrist     *Landmark `json:"left_wrist"`
	RightWrist    *Landmark `json:"right_wrist"`

	BodyAngle *float64 `json:"body_angle"`
}

// Snapshot sanitizes the joint set into a Snapshot. Missing or invalid
// joints take their neutral fallback and mark the snapshot degenerate
// only when a joint was present but impossible (NaN, infinite, or outside
// the normalized range); absent joints are a routine partial detection.
func (j Joints) Snapshot() *Snapshot {
	s := &Snapshot{}
	s.Nose = j.take(j.Nose, neutralNoseY, s)
	s.LeftShoulder = j.take(j.LeftShoulder, neutralShoulderY, s)
	s.RightShoulder = j.take(j.RightShoulder, neutralShoulderY, s)
	s.LeftHip = j.take(j.LeftHip, neutralHipY, s)
	s.RightHip = j.take(j.RightHip, neutralHipY, s)
	s.LeftKnee = j.take(j.LeftKnee, neutralKneeY, s)
	s.RightKnee = j.take(j.RightKnee, neutralKneeY, s)
	s.LeftAnkle = j.take(j.LeftAnkle, neutralAnkleY, s)
	s.RightAnkle = j.take(j.RightAnkle, neutralAnkleY, s)
	s.LeftWrist = j.take(j.LeftWrist, neutralWristY, s)
	s.RightWrist = j.take(j.RightWrist, neutralWristY, s)

	s.Derive()

	if j.BodyAngle != nil {
		if a := *j.BodyAngle; a >= 0 && a <= 180 {
			s.BodyAngle = a
		} else {
			s.Degenerate = true
		}
	}
	return s
}

func (j Joints) take(l *Landmark, fallbackY float64, s *Snapshot) Landmark {
	if l == nil {
		return neutral(fallbackY)
	}
	if !l.valid() {
		s.Degenerate = true
		return neutral(fallbackY)
	}
	return *l
}

// Derive recomputes CenterShoulder, CenterHip, and BodyAngle from the
// individual joints.
func (s *Snapshot) Derive() {
	s.CenterShoulder = Midpoint(s.LeftShoulder, s.RightShoulder)
	s.CenterHip = Midpoint(s.LeftHip, s.RightHip)
	s.BodyAngle = TrunkAngle(s.CenterShoulder, s.CenterHip)
}

// KneeY returns the average knee height.
func (s *Snapshot) KneeY() float64 {
	return (s.LeftKnee.Y + s.RightKnee.Y) / 2
}

// AnkleY returns the average ankle height.
func (s *Snapshot) AnkleY() float64 {
	return (s.LeftAnkle.Y + s.RightAnkle.Y) / 2
}

// WristY returns the average wrist height.
func (s *Snapshot) WristY() float64 {
	return (s.LeftWrist.Y + s.RightWrist.Y) / 2
}

// Midpoint returns the midpoint of two landmarks. Visibility is the
// minimum of the pair, so a midpoint is only as trustworthy as its
// weaker joint.
func Midpoint(a, b Landmark) Landmark {
	return Landmark{
		X:          (a.X + b.X) / 2,
		Y:          (a.Y + b.Y) / 2,
		Z:          (a.Z + b.Z) / 2,
		Visibility: math.Min(a.Visibility, b.Visibility),
	}
}

// TrunkAngle returns the trunk tilt from vertical in degrees.
// 0 = standing upright, 90 = horizontal. The y axis points down in
// image coordinates.
func TrunkAngle(shoulder, hip Landmark) float64 {
	dx := shoulder.X - hip.X
	dy := shoulder.Y - hip.Y
	return math.Atan2(math.Abs(dx), math.Abs(dy)) * 180 / math.Pi
}
