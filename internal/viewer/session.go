package viewer

import (
	"context"
	"fmt"
	"html"
	"sync"

	"github.com/google/uuid"
)

// Phase is the session's load state for the current page.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseFailed
)

const (
	loadingMarkup       = `<div class="loading">Loading...</div>`
	emptyArchiveMessage = "No OCR files found. Run altoview unpack first."
)

// Session orchestrates one viewer instance: it fetches page data,
// drives the overlay builder and scroll synchronizer, and manages
// loading/error display and page-boundary navigation state.
//
// All state mutation happens through the session's event goroutine: the
// caller invokes the On*/Navigate/AdjustZoom methods from a single
// goroutine and drains Completions on that same goroutine. Fetches run
// concurrently but re-enter the session only via Completions.
type Session struct {
	svc      PageService
	image    Pane
	text     Pane
	shell    Shell
	controls Controls

	state *State
	sync  *ScrollSync
	zoom  *ZoomController

	phase          Phase
	loadTag        string
	pendingRestore *Fractions

	completions chan func()
	done        chan struct{}
	closeOnce   sync.Once
}

// NewSession creates a session over the given surfaces and service.
func NewSession(svc PageService, image, text Pane, shell Shell, controls Controls) *Session {
	s := &Session{
		svc:         svc,
		image:       image,
		text:        text,
		shell:       shell,
		controls:    controls,
		state:       NewState(),
		completions: make(chan func(), 16),
		done:        make(chan struct{}),
	}
	s.sync = NewScrollSync(image, text, s.state)
	s.zoom = NewZoomController(s.state, shell, s.load)
	return s
}

// State exposes the session's viewer state.
func (s *Session) State() *State { return s.state }

// Phase reports the current load phase.
func (s *Session) Phase() Phase { return s.phase }

// Completions delivers deferred work (fetch results) that must run on
// the session's event goroutine. The owner of the session drains it in
// the same loop that dispatches UI events.
func (s *Session) Completions() <-chan func() { return s.completions }

// Close releases the session; pending fetch completions are dropped.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *Session) post(fn func()) {
	select {
	case s.completions <- fn:
	case <-s.done:
	}
}

// Start fetches the archive info and either loads page 0 or shows the
// empty-archive message.
func (s *Session) Start() {
	s.shell.SetZoomLabel(fmt.Sprintf("%d%%", s.state.ZoomLevel))
	go func() {
		info, err := s.svc.Info(context.Background())
		s.post(func() { s.finishStart(info, err) })
	}()
}

func (s *Session) finishStart(info *InfoResult, err error) {
	if err != nil {
		s.showMessage("Error: " + err.Error())
		s.phase = PhaseFailed
		return
	}
	s.state.TotalPages = info.TotalPages
	if info.TotalPages == 0 {
		s.shell.SetPageInfo("No OCR files found")
		s.showMessage(emptyArchiveMessage)
		return
	}
	s.load(0, nil)
}

// Navigate moves delta pages. Out-of-bounds targets are a no-op; a page
// change intentionally resets scroll to the top-left.
func (s *Session) Navigate(delta int) {
	next := s.state.CurrentIndex + delta
	if next < 0 || next >= s.state.TotalPages {
		return
	}
	s.load(next, nil)
}

// AdjustZoom changes the zoom level by whole steps.
func (s *Session) AdjustZoom(deltaSteps int) {
	s.zoom.Adjust(deltaSteps)
}

// HandleKey maps keyboard navigation onto Navigate.
func (s *Session) HandleKey(key string) {
	switch key {
	case "ArrowLeft":
		s.Navigate(-1)
	case "ArrowRight":
		s.Navigate(1)
	}
}

// OnImageScroll forwards an image-pane scroll event.
func (s *Session) OnImageScroll() { s.sync.OnImageScroll() }

// OnTextScroll forwards a text-pane scroll event.
func (s *Session) OnTextScroll() { s.sync.OnTextScroll() }

// OnFiltersChanged re-renders both panes from the cached page without a
// refetch, keeping the viewport in place.
func (s *Session) OnFiltersChanged() {
	if s.state.CachedPage == nil {
		return
	}
	imageX, imageY := s.image.ScrollOffset()
	textX, textY := s.text.ScrollOffset()

	s.renderPanes(s.state.CachedPage)
	s.sync.Reapply(imageX, imageY, textX, textY)
}

// OnTextLayout runs after the text pane's new content has been laid
// out; scroll ranges are only valid from this point.
func (s *Session) OnTextLayout() {
	if s.pendingRestore == nil {
		return
	}
	f := *s.pendingRestore
	s.pendingRestore = nil
	s.sync.Restore(f)
}

// OnImageLoaded runs when the image pane's image finished decoding: the
// image is revealed and aligned to the text pane, which is
// authoritative because it settled first.
func (s *Session) OnImageLoaded() {
	s.shell.RevealImage()
	s.sync.MirrorToImage()
}

func (s *Session) load(index int, restore *Fractions) {
	s.state.CurrentIndex = index
	s.shell.SetNavEnabled(index > 0, index < s.state.TotalPages-1)
	s.image.SetContent(loadingMarkup)
	s.text.SetContent(loadingMarkup)
	s.phase = PhaseLoading
	s.pendingRestore = restore

	// Tag the request so a response that arrives after a newer load has
	// started can be discarded instead of repainting stale content.
	tag := uuid.NewString()
	s.loadTag = tag
	zoom := s.state.ZoomLevel

	go func() {
		res, err := s.svc.Page(context.Background(), index, zoom)
		s.post(func() { s.finishLoad(tag, res, err) })
	}()
}

func (s *Session) finishLoad(tag string, res *PageResult, err error) {
	if tag != s.loadTag {
		return // superseded by a newer load
	}
	if err != nil {
		s.showMessage("Error: " + err.Error())
		s.phase = PhaseFailed
		return
	}
	if res.Err != "" {
		s.showMessage(res.Err)
		s.phase = PhaseFailed
		return
	}

	geo := res.Geometry
	s.state.CachedPage = &geo
	s.state.TotalPages = res.TotalPages
	s.shell.SetPageInfo(fmt.Sprintf("Page %d of %d: %s",
		s.state.CurrentIndex+1, res.TotalPages, res.Filename))

	s.renderPanes(&geo)
	s.phase = PhaseLoaded
}

func (s *Session) renderPanes(g *Geometry) {
	imageURL := s.svc.ImageURL(s.state.CurrentIndex, s.state.ZoomLevel)
	imageMarkup, textMarkup := Overlays(g, s.controls.Filter(), imageURL)
	s.image.SetContent(imageMarkup)
	s.text.SetContent(textMarkup)
}

// showMessage displays a message in both panes, escaped so error text
// is never interpreted as markup.
func (s *Session) showMessage(msg string) {
	markup := fmt.Sprintf(`<div class="loading">%s</div>`, html.EscapeString(msg))
	s.image.SetContent(markup)
	s.text.SetContent(markup)
}
