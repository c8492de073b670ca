package labmatch

import (
	"math"
	"time"
)

// SwipePhase is the gesture state of the front card.
type SwipePhase int

const (
	PhaseIdle SwipePhase = iota
	PhaseDragging
	PhaseCommittingLeft
	PhaseCommittingRight
	PhaseResetting
)

func (p SwipePhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDragging:
		return "dragging"
	case PhaseCommittingLeft:
		return "committing-left"
	case PhaseCommittingRight:
		return "committing-right"
	case PhaseResetting:
		return "resetting"
	}
	return "unknown"
}

const (
	// SwipeThreshold is the fraction of the viewport width a release must
	// strictly exceed to commit.
	SwipeThreshold = 0.3
	// ExitFactor is how far off-screen, in viewport widths, a committed card flies.
	ExitFactor = 1.5
	// ExitDuration is the fly-out animation length.
	ExitDuration = 300 * time.Millisecond
	// ResetDuration is the spring-back animation length.
	ResetDuration = 450 * time.Millisecond

	rotationDivisor = 20
	verticalDamping = 0.5
)

// Outcome is what a release resolved to.
type Outcome int

const (
	OutcomeNone Outcome = iota
	// OutcomeReset is a release inside the threshold; the card springs back.
	OutcomeReset
	OutcomeLike
	OutcomePass
)

// Offset is a card translation in pixels.
type Offset struct {
	X, Y float32
}

// Transform is the visual state derived from the card offset.
type Transform struct {
	Offset
	// Rotation in degrees, positive clockwise.
	Rotation    float32
	LikeOpacity float32
	PassOpacity float32
}

// Swipe is the gesture state machine of one card. It holds no timers;
// the caller drives animations through Step and Finish.
type Swipe struct {
	viewport float32
	phase    SwipePhase
	drag     Offset
	offset   Offset
	from     Offset
	finished bool
}

// NewSwipe creates an idle machine for a viewport of the given width.
func NewSwipe(viewportWidth float32) *Swipe {
	return &Swipe{viewport: viewportWidth}
}

// SetViewport updates the width used for thresholds and exit targets.
func (s *Swipe) SetViewport(width float32) {
	s.viewport = width
}

// Phase returns the current state.
func (s *Swipe) Phase() SwipePhase { return s.phase }

// Offset returns the current card translation.
func (s *Swipe) Offset() Offset { return s.offset }

// Begin starts a drag. It is only accepted from idle.
func (s *Swipe) Begin() bool {
	if s.phase != PhaseIdle {
		return false
	}
	s.phase = PhaseDragging
	s.drag = Offset{}
	return true
}

// Drag adds a pointer movement. The card follows horizontally 1:1 and
// vertically at half the distance. A drag from idle begins implicitly.
func (s *Swipe) Drag(dx, dy float32) {
	if s.phase == PhaseIdle {
		s.Begin()
	}
	if s.phase != PhaseDragging {
		return
	}
	s.drag.X += dx
	s.drag.Y += dy
	s.offset = Offset{X: s.drag.X, Y: s.drag.Y * verticalDamping}
}

// Release ends the drag and decides between committing and resetting.
func (s *Swipe) Release() Outcome {
	if s.phase != PhaseDragging {
		return OutcomeNone
	}
	s.from = s.offset
	limit := s.viewport * SwipeThreshold
	switch {
	case s.offset.X > limit:
		s.phase = PhaseCommittingRight
		return OutcomeLike
	case s.offset.X < -limit:
		s.phase = PhaseCommittingLeft
		return OutcomePass
	default:
		s.phase = PhaseResetting
		return OutcomeReset
	}
}

// Commit starts a fly-out without a drag, as the like and pass buttons do.
func (s *Swipe) Commit(d Decision) bool {
	if s.phase != PhaseIdle {
		return false
	}
	s.from = s.offset
	if d == DecisionLike {
		s.phase = PhaseCommittingRight
	} else {
		s.phase = PhaseCommittingLeft
	}
	return true
}

// Target is where the current animation ends.
func (s *Swipe) Target() Offset {
	switch s.phase {
	case PhaseCommittingRight:
		return Offset{X: s.viewport * ExitFactor, Y: s.from.Y}
	case PhaseCommittingLeft:
		return Offset{X: -s.viewport * ExitFactor, Y: s.from.Y}
	case PhaseResetting:
		return Offset{}
	}
	return s.offset
}

// Step moves the card along the running animation. p is the curved
// progress in [0,1]; spring curves may overshoot slightly.
func (s *Swipe) Step(p float32) Transform {
	switch s.phase {
	case PhaseCommittingLeft, PhaseCommittingRight, PhaseResetting:
		to := s.Target()
		s.offset = Offset{
			X: s.from.X + (to.X-s.from.X)*p,
			Y: s.from.Y + (to.Y-s.from.Y)*p,
		}
	}
	return s.Transform()
}

// Finish ends the running animation. For a commit it returns the decision
// exactly once; a reset returns the machine to idle.
func (s *Swipe) Finish() (Decision, bool) {
	switch s.phase {
	case PhaseResetting:
		s.offset = Offset{}
		s.phase = PhaseIdle
		return "", false
	case PhaseCommittingLeft, PhaseCommittingRight:
		s.offset = s.Target()
		if s.finished {
			return "", false
		}
		s.finished = true
		if s.phase == PhaseCommittingRight {
			return DecisionLike, true
		}
		return DecisionPass, true
	}
	return "", false
}

// Transform derives rotation and label opacity from the offset.
func (s *Swipe) Transform() Transform {
	t := Transform{Offset: s.offset, Rotation: s.offset.X / rotationDivisor}
	limit := s.viewport * SwipeThreshold
	if limit > 0 {
		t.LikeOpacity = clamp01(s.offset.X / limit)
		t.PassOpacity = clamp01(-s.offset.X / limit)
	}
	return t
}

// SpringCurve is a damped spring easing for the reset animation. It
// overshoots a little and settles exactly on 1.
func SpringCurve(t float32) float32 {
	if t >= 1 {
		return 1
	}
	if t <= 0 {
		return 0
	}
	return 1 - float32(math.Exp(-6*float64(t))*math.Cos(10*float64(t)))
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
