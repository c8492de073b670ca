package app

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yashubustudio/labmatch/labmatch"
)

func newTestStack(t *testing.T) (*cardStack, *[]labmatch.Decision) {
	t.Helper()
	test.NewTempApp(t)
	var got []labmatch.Decision
	s := newCardStack(func(d labmatch.Decision) { got = append(got, d) })
	s.Resize(fyne.NewSize(400, 500))
	front := labmatch.Professor{ID: "p1", Name: "Ada Lovelace"}
	back := labmatch.Professor{ID: "p2", Name: "Alan Turing"}
	s.SetCards(&front, &back)
	return s, &got
}

func drag(s *cardStack, dx float32) {
	s.Dragged(&fyne.DragEvent{Dragged: fyne.Delta{DX: dx}})
	s.DragEnd()
}

func TestCardStackDragPastThresholdLikes(t *testing.T) {
	s, got := newTestStack(t)

	drag(s, 150)

	assert.Equal(t, []labmatch.Decision{labmatch.DecisionLike}, *got)
	assert.Equal(t, labmatch.PhaseCommittingRight, s.Phase())
}

func TestCardStackDragLeftPasses(t *testing.T) {
	s, got := newTestStack(t)

	drag(s, -200)

	assert.Equal(t, []labmatch.Decision{labmatch.DecisionPass}, *got)
}

func TestCardStackShortDragSpringsBack(t *testing.T) {
	s, got := newTestStack(t)

	drag(s, 100)

	assert.Empty(t, *got)
	assert.Equal(t, labmatch.PhaseIdle, s.Phase())
	assert.Equal(t, float32(0), s.front.Position().X)
}

func TestCardStackCommitDecidesOnce(t *testing.T) {
	s, got := newTestStack(t)

	require.True(t, s.Commit(labmatch.DecisionLike))
	assert.False(t, s.Commit(labmatch.DecisionPass))
	drag(s, -200)

	assert.Equal(t, []labmatch.Decision{labmatch.DecisionLike}, *got)
}

func TestCardStackEmptyIgnoresInput(t *testing.T) {
	test.NewTempApp(t)
	called := false
	s := newCardStack(func(labmatch.Decision) { called = true })
	s.Resize(fyne.NewSize(400, 500))

	assert.False(t, s.Commit(labmatch.DecisionLike))
	drag(s, 300)

	assert.False(t, called)
}

func TestCardStackSetCardsResetsGesture(t *testing.T) {
	s, _ := newTestStack(t)
	drag(s, 150)

	next := labmatch.Professor{ID: "p2", Name: "Alan Turing"}
	s.SetCards(&next, nil)

	assert.Equal(t, labmatch.PhaseIdle, s.Phase())
	assert.Nil(t, s.back)
	assert.Equal(t, float32(0), s.front.Position().X)
}
