// Package live serves the browser viewer: an embedded HTML shell plus a
// WebSocket through which the shell forwards DOM events and receives
// pane updates. The viewing logic itself lives in internal/viewer; the
// browser only paints what it is told.
package live

import (
	_ "embed"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/hallvardm/altoview/internal/viewer"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

//go:embed index.html
var indexHTML []byte

// shellEvent is the incoming WebSocket message format.
type shellEvent struct {
	Type   string       `json:"type"` // "ready", "scroll", "layout", "img-loaded", "key", "nav", "zoom" or "filters"
	Pane   string       `json:"pane,omitempty"`
	X      int          `json:"x,omitempty"`
	Y      int          `json:"y,omitempty"`
	RangeX int          `json:"range_x,omitempty"`
	RangeY int          `json:"range_y,omitempty"`
	Key    string       `json:"key,omitempty"`
	Delta  int          `json:"delta,omitempty"`
	Filter *filterEvent `json:"filter,omitempty"`
}

type filterEvent struct {
	ComposedBlock bool `json:"composedBlock"`
	Illustration  bool `json:"illustration"`
	TextLine      bool `json:"textLine"`
	String        bool `json:"string"`
}

// Viewer provides the two-pane OCR viewer interface.
type Viewer struct {
	svc viewer.PageService
}

// New creates a new Viewer over the given page service.
func New(svc viewer.PageService) *Viewer {
	return &Viewer{svc: svc}
}

// RegisterRoutes mounts the viewer routes onto the given router.
func (v *Viewer) RegisterRoutes(r chi.Router) {
	r.Get("/", v.ServeIndex)
	r.Get("/ws/viewer", v.handleWebSocket)
}

// ServeIndex serves the embedded HTML shell.
func (v *Viewer) ServeIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// conn wraps a WebSocket connection as a command sender. Writes happen
// only on the connection's event goroutine, so no locking is needed.
type conn struct {
	ws *websocket.Conn
}

func (c *conn) send(cmd command) {
	if err := c.ws.WriteJSON(cmd); err != nil {
		log.Printf("live: websocket write: %v", err)
	}
}

func (v *Viewer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("live: websocket upgrade: %v", err)
		return
	}
	defer ws.Close()

	out := &conn{ws: ws}
	image := newRemotePane(out, "image")
	text := newRemotePane(out, "text")
	controls := &remoteControls{filter: viewer.AllVisible}
	sess := viewer.NewSession(v.svc, image, text, &remoteShell{out: out}, controls)
	defer sess.Close()

	events := make(chan shellEvent, 16)
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			_, msg, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("live: websocket read: %v", err)
				}
				return
			}
			var ev shellEvent
			if err := json.Unmarshal(msg, &ev); err != nil {
				log.Printf("live: invalid event: %v", err)
				continue
			}
			events <- ev
		}
	}()

	// All session state is touched on this goroutine only: shell events,
	// fetch completions and writes are serialized here.
	for {
		select {
		case ev := <-events:
			dispatch(sess, image, text, controls, ev)
		case fn := <-sess.Completions():
			fn()
		case <-closed:
			return
		}
	}
}

func dispatch(sess *viewer.Session, image, text *remotePane, controls *remoteControls, ev shellEvent) {
	switch ev.Type {
	case "ready":
		sess.Start()
	case "scroll":
		switch ev.Pane {
		case "image":
			image.observe(ev.X, ev.Y, ev.RangeX, ev.RangeY)
			sess.OnImageScroll()
		case "text":
			text.observe(ev.X, ev.Y, ev.RangeX, ev.RangeY)
			sess.OnTextScroll()
		}
	case "layout":
		text.observe(ev.X, ev.Y, ev.RangeX, ev.RangeY)
		sess.OnTextLayout()
	case "img-loaded":
		sess.OnImageLoaded()
	case "key":
		sess.HandleKey(ev.Key)
	case "nav":
		sess.Navigate(ev.Delta)
	case "zoom":
		sess.AdjustZoom(ev.Delta)
	case "filters":
		if ev.Filter != nil {
			controls.filter = viewer.Filter{
				ComposedBlock: ev.Filter.ComposedBlock,
				Illustration:  ev.Filter.Illustration,
				TextLine:      ev.Filter.TextLine,
				String:        ev.Filter.String,
			}
			sess.OnFiltersChanged()
		}
	default:
		log.Printf("live: unknown event type %q", ev.Type)
	}
}
