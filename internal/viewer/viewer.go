// Package viewer implements the synchronized two-pane viewing engine:
// zoom state, bidirectional scroll mirroring, zoom-invariant scroll
// restoration, layered overlay construction from page geometry, and
// selective re-render when only visibility filters change.
//
// The engine is headless. It talks to the actual display surfaces
// through the Pane, Shell and Controls interfaces and to the page-data
// backend through PageService; the live package binds these to a
// browser over a websocket.
package viewer

import "context"

// Zoom level bounds, in percent.
const (
	ZoomMin     = 25
	ZoomMax     = 400
	ZoomStep    = 25
	ZoomDefault = 100
)

// Region is one annotated box in display pixel space.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int

	// Content is the recognized text; set for strings only.
	Content string
}

// Geometry is the structured region data for one loaded page: display
// dimensions plus the four category sequences, coarsest to finest, all
// in the same zoom-scaled pixel space. It is immutable once fetched and
// replaced wholesale on navigation or zoom.
type Geometry struct {
	DisplayWidth  int
	DisplayHeight int

	ComposedBlocks []Region
	Illustrations  []Region
	Lines          []Region
	Strings        []Region
}

// Fractions is a scroll position expressed as a ratio of the scrollable
// range on each axis. Unlike absolute offsets it survives the relayout
// caused by a zoom change.
type Fractions struct {
	X float64
	Y float64
}

// State is the viewer's mutable state. It is owned by the Session and
// written only by the Session itself, the ZoomController, and the
// scroll-fraction capture path.
type State struct {
	CurrentIndex      int
	TotalPages        int
	ZoomLevel         int
	LastScrollPercent Fractions
	CachedPage        *Geometry
}

// NewState returns a State at the default zoom level.
func NewState() *State {
	return &State{ZoomLevel: ZoomDefault}
}

// Pane is one scrollable content surface.
type Pane interface {
	ScrollOffset() (x, y int)
	SetScrollOffset(x, y int)
	// ScrollRange returns the scrollable range per axis: content size
	// minus viewport size. A pane that fits its viewport reports zero
	// or negative range.
	ScrollRange() (x, y int)
	SetContent(markup string)
}

// Shell is the chrome around the panes: labels, navigation buttons and
// the image visibility toggle.
type Shell interface {
	SetZoomLabel(text string)
	SetPageInfo(text string)
	SetNavEnabled(prev, next bool)
	// RevealImage swaps the rendering placeholder for the image element
	// once the image has finished loading.
	RevealImage()
}

// Controls reports the live state of the category checkboxes. Read once
// at the start of every render pass.
type Controls interface {
	Filter() Filter
}

// InfoResult is the archive summary fetched once at startup.
type InfoResult struct {
	TotalPages int
}

// PageResult carries a fetched page. A non-empty Err is a
// server-reported error to be displayed verbatim; the rest of the
// fields are then meaningless.
type PageResult struct {
	Err        string
	Filename   string
	TotalPages int
	Geometry   Geometry
}

// PageService provides page data and image URLs. Implementations may be
// local or remote; calls can block and are always made off the session
// goroutine.
type PageService interface {
	Info(ctx context.Context) (*InfoResult, error)
	Page(ctx context.Context, index, zoom int) (*PageResult, error)
	ImageURL(index, zoom int) string
}
