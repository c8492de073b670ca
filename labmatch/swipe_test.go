package labmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testViewport = 400

func release(t *testing.T, dx float32) (*Swipe, Outcome) {
	t.Helper()
	s := NewSwipe(testViewport)
	require.True(t, s.Begin())
	s.Drag(dx, 40)
	return s, s.Release()
}

func TestReleaseThresholds(t *testing.T) {
	cases := []struct {
		name string
		dx   float32
		want Outcome
	}{
		{"31% right likes", 0.31 * testViewport, OutcomeLike},
		{"29% right resets", 0.29 * testViewport, OutcomeReset},
		{"exactly 30% resets", 0.30 * testViewport, OutcomeReset},
		{"31% left passes", -0.31 * testViewport, OutcomePass},
		{"exactly -30% resets", -0.30 * testViewport, OutcomeReset},
		{"no movement resets", 0, OutcomeReset},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, got := release(t, tc.dx)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDragFollowsPointer(t *testing.T) {
	s := NewSwipe(testViewport)
	s.Drag(10, 20)
	s.Drag(30, 20)
	assert.Equal(t, PhaseDragging, s.Phase())
	assert.Equal(t, Offset{X: 40, Y: 20}, s.Offset())

	tr := s.Transform()
	assert.InDelta(t, 2.0, tr.Rotation, 1e-6)
	assert.InDelta(t, 40.0/120.0, tr.LikeOpacity, 1e-6)
	assert.Zero(t, tr.PassOpacity)
}

func TestLabelOpacityClamps(t *testing.T) {
	s := NewSwipe(testViewport)
	s.Drag(-500, 0)
	tr := s.Transform()
	assert.Equal(t, float32(1), tr.PassOpacity)
	assert.Zero(t, tr.LikeOpacity)
}

func TestCommitFliesOffAndFinishesOnce(t *testing.T) {
	s, out := release(t, 200)
	require.Equal(t, OutcomeLike, out)
	assert.Equal(t, PhaseCommittingRight, s.Phase())
	assert.Equal(t, float32(testViewport*ExitFactor), s.Target().X)

	s.Step(0.5)
	assert.InDelta(t, 200+(600-200)*0.5, s.Offset().X, 1e-3)

	d, ok := s.Finish()
	require.True(t, ok)
	assert.Equal(t, DecisionLike, d)

	_, ok = s.Finish()
	assert.False(t, ok, "decision fires once")
	assert.False(t, s.Begin(), "a committed card cannot be dragged again")
}

func TestPassCommit(t *testing.T) {
	s, out := release(t, -200)
	require.Equal(t, OutcomePass, out)
	assert.Equal(t, float32(-testViewport*ExitFactor), s.Target().X)
	d, ok := s.Finish()
	require.True(t, ok)
	assert.Equal(t, DecisionPass, d)
}

func TestResetReturnsToIdle(t *testing.T) {
	s, out := release(t, 50)
	require.Equal(t, OutcomeReset, out)
	assert.Equal(t, PhaseResetting, s.Phase())
	assert.False(t, s.Begin(), "no new drag while animating")

	s.Step(SpringCurve(1))
	_, ok := s.Finish()
	assert.False(t, ok)
	assert.Equal(t, PhaseIdle, s.Phase())
	assert.Equal(t, Offset{}, s.Offset())
	assert.True(t, s.Begin())
}

func TestButtonCommit(t *testing.T) {
	s := NewSwipe(testViewport)
	require.True(t, s.Commit(DecisionPass))
	assert.Equal(t, PhaseCommittingLeft, s.Phase())
	assert.False(t, s.Commit(DecisionLike))
	d, ok := s.Finish()
	require.True(t, ok)
	assert.Equal(t, DecisionPass, d)
}

func TestReleaseWithoutDrag(t *testing.T) {
	s := NewSwipe(testViewport)
	assert.Equal(t, OutcomeNone, s.Release())
}

func TestSpringCurveSettles(t *testing.T) {
	assert.Equal(t, float32(0), SpringCurve(0))
	assert.Equal(t, float32(1), SpringCurve(1))
	assert.Equal(t, float32(1), SpringCurve(1.5))
	assert.Greater(t, SpringCurve(0.5), float32(0.9))
}
