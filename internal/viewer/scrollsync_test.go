package viewer

import "testing"

// fakePane is an in-memory Pane. Like a real DOM pane, replacing its
// content resets the scroll position.
type fakePane struct {
	x, y           int
	rangeX, rangeY int
	content        string

	// onSet, when non-nil, is invoked after SetScrollOffset to emulate
	// the DOM firing a scroll event in response to a programmatic write.
	onSet func()
}

func (p *fakePane) ScrollOffset() (int, int) { return p.x, p.y }

func (p *fakePane) SetScrollOffset(x, y int) {
	p.x, p.y = x, y
	if p.onSet != nil {
		p.onSet()
	}
}

func (p *fakePane) ScrollRange() (int, int) { return p.rangeX, p.rangeY }

func (p *fakePane) SetContent(markup string) {
	p.content = markup
	p.x, p.y = 0, 0
}

func TestMirrorImageToText(t *testing.T) {
	image := &fakePane{x: 40, y: 80}
	text := &fakePane{}
	s := NewScrollSync(image, text, NewState())

	s.OnImageScroll()
	if text.x != 40 || text.y != 80 {
		t.Errorf("text pane not mirrored: (%d,%d)", text.x, text.y)
	}
}

func TestMirrorTextToImage(t *testing.T) {
	image := &fakePane{}
	text := &fakePane{x: 15, y: 25, rangeX: 100, rangeY: 100}
	s := NewScrollSync(image, text, NewState())

	s.OnTextScroll()
	if image.x != 15 || image.y != 25 {
		t.Errorf("image pane not mirrored: (%d,%d)", image.x, image.y)
	}
}

func TestGuardSuppressesFeedbackLoop(t *testing.T) {
	image := &fakePane{}
	text := &fakePane{x: 10, y: 10, rangeX: 100, rangeY: 100}
	s := NewScrollSync(image, text, NewState())

	// Each programmatic write triggers the other pane's handler, as the
	// DOM does. Without the guard this recurses forever.
	image.onSet = s.OnImageScroll
	text.onSet = s.OnTextScroll

	s.OnTextScroll()
	if image.x != 10 || image.y != 10 {
		t.Errorf("image pane not mirrored: (%d,%d)", image.x, image.y)
	}

	image.x, image.y = 60, 70
	s.OnImageScroll()
	if text.x != 60 || text.y != 70 {
		t.Errorf("text pane not mirrored: (%d,%d)", text.x, text.y)
	}
}

func TestCaptureFractions(t *testing.T) {
	state := NewState()
	text := &fakePane{x: 100, y: 100, rangeX: 200, rangeY: 400}
	s := NewScrollSync(&fakePane{}, text, state)

	s.OnTextScroll()
	if got := state.LastScrollPercent; got.X != 0.5 || got.Y != 0.25 {
		t.Errorf("fractions: got %+v, want {0.5 0.25}", got)
	}
}

func TestCaptureZeroRange(t *testing.T) {
	state := NewState()
	state.LastScrollPercent = Fractions{X: 0.9, Y: 0.9}
	text := &fakePane{x: 5, y: 5} // content fits the viewport
	s := NewScrollSync(&fakePane{}, text, state)

	s.OnTextScroll()
	if got := state.LastScrollPercent; got.X != 0 || got.Y != 0 {
		t.Errorf("fractions with no scroll range: got %+v, want zero", got)
	}
}

func TestCaptureRestoreIdempotent(t *testing.T) {
	state := NewState()
	image := &fakePane{}
	text := &fakePane{x: 73, y: 219, rangeX: 311, rangeY: 997}
	s := NewScrollSync(image, text, state)

	s.OnTextScroll()
	s.Restore(state.LastScrollPercent)

	if text.x != 73 || text.y != 219 {
		t.Errorf("restore against the same range must reproduce the offset, got (%d,%d)", text.x, text.y)
	}
	if image.x != 73 || image.y != 219 {
		t.Errorf("image pane must receive the restored offset, got (%d,%d)", image.x, image.y)
	}
}

func TestRestoreAgainstNewRange(t *testing.T) {
	state := NewState()
	image := &fakePane{}
	text := &fakePane{rangeX: 300, rangeY: 500}
	s := NewScrollSync(image, text, state)

	s.Restore(Fractions{X: 0.5, Y: 0.5})
	if text.x != 150 || text.y != 250 {
		t.Errorf("text pane: got (%d,%d), want (150,250)", text.x, text.y)
	}
	if image.x != 150 || image.y != 250 {
		t.Errorf("image pane: got (%d,%d), want (150,250)", image.x, image.y)
	}
}

func TestMirrorToImage(t *testing.T) {
	image := &fakePane{x: 1, y: 1}
	text := &fakePane{x: 33, y: 44}
	s := NewScrollSync(image, text, NewState())

	s.MirrorToImage()
	if image.x != 33 || image.y != 44 {
		t.Errorf("image pane: got (%d,%d), want (33,44)", image.x, image.y)
	}
}

func TestReapply(t *testing.T) {
	image := &fakePane{}
	text := &fakePane{}
	s := NewScrollSync(image, text, NewState())
	image.onSet = s.OnImageScroll
	text.onSet = s.OnTextScroll

	s.Reapply(10, 20, 10, 20)
	if image.x != 10 || image.y != 20 || text.x != 10 || text.y != 20 {
		t.Errorf("offsets not reapplied: image (%d,%d) text (%d,%d)", image.x, image.y, text.x, text.y)
	}
}
