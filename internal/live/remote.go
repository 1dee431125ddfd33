package live

import "github.com/hallvardm/altoview/internal/viewer"

// command is an outgoing WebSocket message applied by the browser shell.
type command struct {
	Type string `json:"type"` // "content", "scroll", "label", "nav" or "reveal-image"
	Pane string `json:"pane,omitempty"`
	HTML string `json:"html,omitempty"`
	X    int    `json:"x,omitempty"`
	Y    int    `json:"y,omitempty"`
	// label commands
	Target string `json:"target,omitempty"` // "zoom" or "page"
	Text   string `json:"text,omitempty"`
	// nav commands
	Prev bool `json:"prev,omitempty"`
	Next bool `json:"next,omitempty"`
}

// sender delivers commands to the browser. Implemented by the
// connection loop; all sends happen on the session goroutine.
type sender interface {
	send(cmd command)
}

// remotePane is the server-side image of one scrollable panel in the
// browser. Offsets and ranges are kept current by incoming scroll and
// layout events, so engine reads never round-trip to the client.
type remotePane struct {
	out  sender
	name string

	x, y           int
	rangeX, rangeY int
}

func newRemotePane(out sender, name string) *remotePane {
	return &remotePane{out: out, name: name}
}

func (p *remotePane) ScrollOffset() (int, int) { return p.x, p.y }

func (p *remotePane) SetScrollOffset(x, y int) {
	if x == p.x && y == p.y {
		return
	}
	p.x, p.y = x, y
	p.out.send(command{Type: "scroll", Pane: p.name, X: x, Y: y})
}

func (p *remotePane) ScrollRange() (int, int) { return p.rangeX, p.rangeY }

func (p *remotePane) SetContent(markup string) {
	// Replacing the panel's content puts its scroll position back at the
	// origin; ranges stay stale until the next layout or scroll event.
	p.x, p.y = 0, 0
	p.out.send(command{Type: "content", Pane: p.name, HTML: markup})
}

// observe records offsets and ranges reported by a browser event.
func (p *remotePane) observe(x, y, rangeX, rangeY int) {
	p.x, p.y = x, y
	p.rangeX, p.rangeY = rangeX, rangeY
}

// remoteShell drives the browser's chrome: labels, nav buttons and the
// image reveal.
type remoteShell struct {
	out sender
}

func (sh *remoteShell) SetZoomLabel(label string) {
	sh.out.send(command{Type: "label", Target: "zoom", Text: label})
}

func (sh *remoteShell) SetPageInfo(info string) {
	sh.out.send(command{Type: "label", Target: "page", Text: info})
}

func (sh *remoteShell) SetNavEnabled(prev, next bool) {
	sh.out.send(command{Type: "nav", Prev: prev, Next: next})
}

func (sh *remoteShell) RevealImage() {
	sh.out.send(command{Type: "reveal-image"})
}

// remoteControls mirrors the browser's legend checkboxes.
type remoteControls struct {
	filter viewer.Filter
}

func (c *remoteControls) Filter() viewer.Filter { return c.filter }
