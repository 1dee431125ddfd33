package viewer

import "math"

// ScrollSync keeps the two panes' scroll offsets equal while the user
// scrolls either one. Each mirror write is wrapped in a reentrancy
// guard: the handler for the written pane observes the guard and does
// nothing, which breaks the mutual-trigger cycle.
//
// Independently of mirroring, every text-pane scroll event is converted
// to fractions of the scrollable range and captured into the state, so
// the position can be restored after a zoom change invalidates absolute
// offsets. The text pane is the capture source because its content is
// laid out before the image finishes decoding.
type ScrollSync struct {
	image Pane
	text  Pane
	state *State

	syncing bool
}

// NewScrollSync wires the two panes to shared state.
func NewScrollSync(image, text Pane, state *State) *ScrollSync {
	return &ScrollSync{image: image, text: text, state: state}
}

// OnImageScroll handles a scroll event from the image pane.
func (s *ScrollSync) OnImageScroll() {
	if s.syncing {
		return
	}
	s.syncing = true
	x, y := s.image.ScrollOffset()
	s.text.SetScrollOffset(x, y)
	s.syncing = false
}

// OnTextScroll handles a scroll event from the text pane. The fraction
// capture runs on every event, suppressed or not, so the stored
// position always reflects the pane.
func (s *ScrollSync) OnTextScroll() {
	if !s.syncing {
		s.syncing = true
		x, y := s.text.ScrollOffset()
		s.image.SetScrollOffset(x, y)
		s.syncing = false
	}
	s.capture()
}

func (s *ScrollSync) capture() {
	rangeX, rangeY := s.text.ScrollRange()
	x, y := s.text.ScrollOffset()

	var f Fractions
	if rangeX > 0 {
		f.X = float64(x) / float64(rangeX)
	}
	if rangeY > 0 {
		f.Y = float64(y) / float64(rangeY)
	}
	s.state.LastScrollPercent = f
}

// Restore converts fractions back to absolute offsets using the text
// pane's current scroll range and applies them to both panes.
func (s *ScrollSync) Restore(f Fractions) {
	rangeX, rangeY := s.text.ScrollRange()
	x := int(math.Round(f.X * float64(max(rangeX, 0))))
	y := int(math.Round(f.Y * float64(max(rangeY, 0))))

	s.syncing = true
	s.text.SetScrollOffset(x, y)
	s.image.SetScrollOffset(x, y)
	s.syncing = false
}

// MirrorToImage copies the text pane's current offsets onto the image
// pane. Used when the image finishes loading after the text pane has
// already settled: the text pane is authoritative by then.
func (s *ScrollSync) MirrorToImage() {
	x, y := s.text.ScrollOffset()
	s.syncing = true
	s.image.SetScrollOffset(x, y)
	s.syncing = false
}

// Reapply writes previously captured offsets back to both panes after a
// filter-only re-render, so toggling filters never moves the viewport.
func (s *ScrollSync) Reapply(imageX, imageY, textX, textY int) {
	s.syncing = true
	s.image.SetScrollOffset(imageX, imageY)
	s.text.SetScrollOffset(textX, textY)
	s.syncing = false
}
