package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hallvardm/altoview/internal/pagedata"
	"github.com/hallvardm/altoview/internal/render"
	"github.com/hallvardm/altoview/internal/viewer"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: encoding response: %v", err)
	}
}

// errorResponse is the body of an in-band API error. Page-data errors
// travel as payloads, not status codes, so the viewer can display them.
type errorResponse struct {
	Error string `json:"error"`
}

type infoResponse struct {
	TotalPages int    `json:"total_pages"`
	BaseDir    string `json:"base_dir"`
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, infoResponse{
		TotalPages: s.provider.TotalPages(),
		BaseDir:    s.provider.Newspaper().Dir,
	})
}

func pageIndex(r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	return index, err == nil
}

// zoomParam reads the zoom query parameter, defaulting to 100%,
// snapping to the viewer's 25% step grid and clamping to its range.
// Hand-crafted URLs can therefore neither request an absurdly large
// rendering nor populate the image cache with off-grid entries.
func zoomParam(r *http.Request) int {
	zoom := 100
	if raw := r.URL.Query().Get("zoom"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			zoom = n
		}
	}
	zoom = (zoom + viewer.ZoomStep/2) / viewer.ZoomStep * viewer.ZoomStep
	if zoom < viewer.ZoomMin {
		return viewer.ZoomMin
	}
	if zoom > viewer.ZoomMax {
		return viewer.ZoomMax
	}
	return zoom
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	index, ok := pageIndex(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	resp, err := s.provider.Page(index, zoomParam(r))
	if err != nil {
		writeJSON(w, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, resp)
}

// marksParam reads the category flags for the image endpoint. Absent
// flags default to off: the viewer draws its boxes as overlays, so the
// rendered scan stays clean unless outlines are explicitly requested.
func marksParam(r *http.Request) render.Marks {
	q := r.URL.Query()
	return render.Marks{
		ComposedBlock: q.Get("composedBlock") == "true",
		Illustration:  q.Get("illustration") == "true",
		TextLine:      q.Get("textLine") == "true",
		String:        q.Get("string") == "true",
	}
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	index, ok := pageIndex(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	zoom := zoomParam(r)
	marks := marksParam(r)
	paper := s.provider.Newspaper().Name

	if s.cache != nil {
		data, hit, err := s.cache.GetImage(paper, index, zoom, marks.Key())
		if err != nil {
			log.Printf("server: image cache lookup: %v", err)
		} else if hit {
			w.Header().Set("Content-Type", "image/jpeg")
			w.Write(data)
			return
		}
	}

	doc, err := s.provider.Document(index)
	if err != nil {
		if errors.Is(err, pagedata.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	scale, err := s.provider.ScaleFor(index, zoom)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	scanPath, err := s.provider.ImagePath(index)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data, err := render.Page(scanPath, doc, scale, marks)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if s.cache != nil {
		if err := s.cache.PutImage(paper, index, zoom, marks.Key(), data); err != nil {
			log.Printf("server: image cache insert: %v", err)
		}
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Write(data)
}
