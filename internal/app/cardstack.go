package app

import (
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"yashubustudio/labmatch/labmatch"
)

const (
	backCardScale = 0.95
	backCardDrop  = 10
	labelInset    = 24
)

var (
	likeColor  = color.NRGBA{R: 0x4a, G: 0xde, B: 0x80}
	passColor  = color.NRGBA{R: 0xf8, G: 0x71, B: 0x71}
	backShadow = color.NRGBA{A: 0x66}
)

// cardStack shows the front card and the one underneath it. Only the front
// card follows drags; the back card is drawn smaller and dimmed.
type cardStack struct {
	widget.BaseWidget

	onDecide func(labmatch.Decision)

	swipe *labmatch.Swipe
	anim  *fyne.Animation

	front     fyne.CanvasObject
	back      fyne.CanvasObject
	shade     *canvas.Rectangle
	likeLabel *canvas.Text
	passLabel *canvas.Text
}

var _ fyne.Draggable = (*cardStack)(nil)

func newCardStack(onDecide func(labmatch.Decision)) *cardStack {
	s := &cardStack{
		onDecide:  onDecide,
		swipe:     labmatch.NewSwipe(0),
		shade:     canvas.NewRectangle(backShadow),
		likeLabel: stampText("LIKE", likeColor),
		passLabel: stampText("PASS", passColor),
	}
	s.shade.CornerRadius = 20
	s.ExtendBaseWidget(s)
	return s
}

func stampText(text string, c color.NRGBA) *canvas.Text {
	t := canvas.NewText(text, color.NRGBA{R: c.R, G: c.G, B: c.B})
	t.TextSize = 32
	t.TextStyle = fyne.TextStyle{Bold: true}
	return t
}

// SetCards replaces the displayed cards. A nil front clears the stack.
func (s *cardStack) SetCards(front, back *labmatch.Professor) {
	if s.anim != nil {
		s.anim.Stop()
		s.anim = nil
	}
	s.swipe = labmatch.NewSwipe(s.Size().Width)
	s.front, s.back = nil, nil
	if front != nil {
		s.front = newCardFace(*front)
	}
	if back != nil {
		s.back = newCardFace(*back)
	}
	s.Refresh()
}

// Phase exposes the gesture state of the front card.
func (s *cardStack) Phase() labmatch.SwipePhase { return s.swipe.Phase() }

// Commit flies the front card out as if it had been swiped.
func (s *cardStack) Commit(d labmatch.Decision) bool {
	if s.front == nil || !s.swipe.Commit(d) {
		return false
	}
	s.animate(labmatch.ExitDuration, fyne.AnimationEaseIn)
	return true
}

func (s *cardStack) Dragged(ev *fyne.DragEvent) {
	if s.front == nil {
		return
	}
	s.swipe.Drag(ev.Dragged.DX, ev.Dragged.DY)
	s.Refresh()
}

func (s *cardStack) DragEnd() {
	switch s.swipe.Release() {
	case labmatch.OutcomeLike, labmatch.OutcomePass:
		s.animate(labmatch.ExitDuration, fyne.AnimationEaseIn)
	case labmatch.OutcomeReset:
		s.animate(labmatch.ResetDuration, labmatch.SpringCurve)
	}
}

// animate runs the swipe towards its target. Progress is checked on the
// linear clock because the spring curve passes 1 before it settles.
func (s *cardStack) animate(d time.Duration, curve fyne.AnimationCurve) {
	sw := s.swipe
	s.anim = fyne.NewAnimation(d, func(t float32) {
		if sw != s.swipe {
			return
		}
		sw.Step(curve(t))
		s.Refresh()
		if t >= 1 {
			s.finish(sw)
		}
	})
	s.anim.Curve = fyne.AnimationLinear
	s.anim.Start()
}

func (s *cardStack) finish(sw *labmatch.Swipe) {
	s.anim = nil
	d, ok := sw.Finish()
	s.Refresh()
	if ok && s.onDecide != nil {
		s.onDecide(d)
	}
}

func (s *cardStack) CreateRenderer() fyne.WidgetRenderer {
	return &cardStackRenderer{stack: s}
}

type cardStackRenderer struct {
	stack *cardStack
}

func (r *cardStackRenderer) Layout(size fyne.Size) {
	s := r.stack
	s.swipe.SetViewport(size.Width)

	if s.back != nil {
		bs := fyne.NewSize(size.Width*backCardScale, size.Height*backCardScale)
		pos := fyne.NewPos((size.Width-bs.Width)/2, (size.Height-bs.Height)/2+backCardDrop)
		s.back.Resize(bs)
		s.back.Move(pos)
		s.shade.Resize(bs)
		s.shade.Move(pos)
	}
	if s.front == nil {
		return
	}
	tr := s.swipe.Transform()
	s.front.Resize(size)
	s.front.Move(fyne.NewPos(tr.X, tr.Y))

	s.likeLabel.Color = withAlpha(likeColor, tr.LikeOpacity)
	s.passLabel.Color = withAlpha(passColor, tr.PassOpacity)
	likeSize := s.likeLabel.MinSize()
	passSize := s.passLabel.MinSize()
	s.likeLabel.Resize(likeSize)
	s.passLabel.Resize(passSize)
	s.likeLabel.Move(fyne.NewPos(tr.X+labelInset, tr.Y+labelInset))
	s.passLabel.Move(fyne.NewPos(tr.X+size.Width-passSize.Width-labelInset, tr.Y+labelInset))
}

func (r *cardStackRenderer) MinSize() fyne.Size {
	return fyne.NewSize(300, 440)
}

func (r *cardStackRenderer) Refresh() {
	r.Layout(r.stack.Size())
	for _, o := range r.Objects() {
		o.Refresh()
	}
}

func (r *cardStackRenderer) Objects() []fyne.CanvasObject {
	s := r.stack
	objs := make([]fyne.CanvasObject, 0, 5)
	if s.back != nil {
		objs = append(objs, s.back, s.shade)
	}
	if s.front != nil {
		objs = append(objs, s.front, s.likeLabel, s.passLabel)
	}
	return objs
}

func (r *cardStackRenderer) Destroy() {}

func withAlpha(c color.NRGBA, a float32) color.NRGBA {
	c.A = uint8(255 * a)
	return c
}
