package pose_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/vigil/internal/domain/pose"
)

func lm(x, y float64) *pose.Landmark {
	return &pose.Landmark{X: x, Y: y, Visibility: 1}
}

func TestMidpoint(t *testing.T) {
	a := pose.Landmark{X: 0.2, Y: 0.4, Z: 1, Visibility: 0.9}
	b := pose.Landmark{X: 0.6, Y: 0.8, Z: 3, Visibility: 0.5}

	m := pose.Midpoint(a, b)
	assert.InDelta(t, 0.4, m.X, 1e-9)
	assert.InDelta(t, 0.6, m.Y, 1e-9)
	assert.InDelta(t, 2.0, m.Z, 1e-9)
	// Visibility is the weaker of the pair.
	assert.InDelta(t, 0.5, m.Visibility, 1e-9)
}

func TestTrunkAngle(t *testing.T) {
	// Vertical trunk: shoulders directly above hips.
	vertical := pose.TrunkAngle(pose.Landmark{X: 0.5, Y: 0.3}, pose.Landmark{X: 0.5, Y: 0.5})
	assert.InDelta(t, 0, vertical, 1e-9)

	// Horizontal trunk: shoulders level with hips.
	horizontal := pose.TrunkAngle(pose.Landmark{X: 0.3, Y: 0.5}, pose.Landmark{X: 0.5, Y: 0.5})
	assert.InDelta(t, 90, horizontal, 1e-9)

	// 45 degrees either way.
	tilted := pose.TrunkAngle(pose.Landmark{X: 0.3, Y: 0.3}, pose.Landmark{X: 0.5, Y: 0.5})
	assert.InDelta(t, 45, tilted, 1e-9)
}

func TestJointsSnapshotDerivesCenters(t *testing.T) {
	j := pose.Joints{
		Nose:          lm(0.5, 0.1),
		LeftShoulder:  lm(0.4, 0.3),
		RightShoulder: lm(0.6, 0.3),
		LeftHip:       lm(0.45, 0.5),
		RightHip:      lm(0.55, 0.5),
	}

	s := j.Snapshot()
	require.NotNil(t, s)
	assert.False(t, s.Degenerate)
	assert.InDelta(t, 0.5, s.CenterShoulder.X, 1e-9)
	assert.InDelta(t, 0.3, s.CenterShoulder.Y, 1e-9)
	assert.InDelta(t, 0.5, s.CenterHip.X, 1e-9)
	assert.InDelta(t, 0.5, s.CenterHip.Y, 1e-9)
	assert.InDelta(t, 0, s.BodyAngle, 1e-9)
}

func TestJointsSnapshotMissingJointsAreNeutral(t *testing.T) {
	// An empty detection is a routine partial frame, not degenerate.
	s := pose.Joints{}.Snapshot()
	require.NotNil(t, s)
	assert.False(t, s.Degenerate)

	// Neutral fallbacks approximate an upright subject.
	assert.InDelta(t, 0.2, s.Nose.Y, 1e-9)
	assert.InDelta(t, 0.3, s.CenterShoulder.Y, 1e-9)
	assert.InDelta(t, 0.5, s.CenterHip.Y, 1e-9)
	assert.InDelta(t, 0.9, s.AnkleY(), 1e-9)
}

func TestJointsSnapshotInvalidJointMarksDegenerate(t *testing.T) {
	cases := map[string]*pose.Landmark{
		"nan":          {X: math.NaN(), Y: 0.5},
		"inf":          {X: 0.5, Y: math.Inf(1)},
		"out of range": {X: 1.5, Y: 0.5},
		"negative":     {X: 0.5, Y: -0.1},
	}
	for name, bad := range cases {
		t.Run(name, func(t *testing.T) {
			j := pose.Joints{Nose: bad}
			s := j.Snapshot()
			assert.True(t, s.Degenerate)
			// The bad joint is replaced by its neutral fallback.
			assert.InDelta(t, 0.2, s.Nose.Y, 1e-9)
		})
	}
}

func TestJointsSnapshotPrecomputedBodyAngle(t *testing.T) {
	angle := 72.0
	j := pose.Joints{BodyAngle: &angle}
	s := j.Snapshot()
	assert.InDelta(t, 72.0, s.BodyAngle, 1e-9)
	assert.False(t, s.Degenerate)

	bogus := -5.0
	j = pose.Joints{BodyAngle: &bogus}
	s = j.Snapshot()
	assert.True(t, s.Degenerate)
}

func TestSnapshotAverages(t *testing.T) {
	j := pose.Joints{
		LeftKnee:   lm(0.4, 0.6),
		RightKnee:  lm(0.6, 0.8),
		LeftAnkle:  lm(0.4, 0.85),
		RightAnkle: lm(0.6, 0.95),
		LeftWrist:  lm(0.3, 0.4),
		RightWrist: lm(0.7, 0.6),
	}
	s := j.Snapshot()
	assert.InDelta(t, 0.7, s.KneeY(), 1e-9)
	assert.InDelta(t, 0.9, s.AnkleY(), 1e-9)
	assert.InDelta(t, 0.5, s.WristY(), 1e-9)
}
