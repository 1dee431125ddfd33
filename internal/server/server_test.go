package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hallvardm/altoview/internal/archive"
	"github.com/hallvardm/altoview/internal/pagedata"
	"github.com/hallvardm/altoview/internal/store"
)

const testALTO = `<?xml version="1.0" encoding="UTF-8"?>
<alto xmlns="http://www.loc.gov/standards/alto/ns-v2#">
  <Layout>
    <Page WIDTH="200" HEIGHT="200">
      <PrintSpace>
        <ComposedBlock ID="CB1" HPOS="10" VPOS="10" WIDTH="100" HEIGHT="80">
          <TextBlock>
            <TextLine HPOS="12" VPOS="12" WIDTH="90" HEIGHT="10">
              <String CONTENT="Bergen" HPOS="12" VPOS="12" WIDTH="40" HEIGHT="10"/>
            </TextLine>
          </TextBlock>
        </ComposedBlock>
      </PrintSpace>
    </Page>
  </Layout>
</alto>`

// testServer builds a server over a one-page newspaper with a 100x100
// scan, so the display is 400x400 at zoom 100 (base scale capped at 4).
func testServer(t *testing.T) *Server {
	return testServerWith(t, Config{Port: 0})
}

func testServerWith(t *testing.T, cfg Config) *Server {
	t.Helper()
	dir := t.TempDir()
	xmlPath := filepath.Join(dir, "page_001_null.xml")
	imgPath := filepath.Join(dir, "page_001_null.png")

	if err := os.WriteFile(xmlPath, []byte(testALTO), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(imgPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewGray(image.Rect(0, 0, 100, 100))); err != nil {
		t.Fatal(err)
	}

	paper := archive.Newspaper{
		Name:  "test",
		Dir:   dir,
		Pages: []archive.PagePair{{XML: xmlPath, Image: imgPath}},
	}

	cache, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("opening cache: %v", err)
	}
	t.Cleanup(func() { cache.Close() })

	return New(cfg, pagedata.New(paper, 3200), cache)
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	w := get(t, testServer(t), "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestInfoEndpoint(t *testing.T) {
	w := get(t, testServer(t), "/api/info")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var info infoResponse
	if err := json.NewDecoder(w.Body).Decode(&info); err != nil {
		t.Fatalf("decoding info: %v", err)
	}
	if info.TotalPages != 1 {
		t.Errorf("total pages = %d, want 1", info.TotalPages)
	}
	if info.BaseDir == "" {
		t.Error("base dir should be set")
	}
}

func TestPageEndpoint(t *testing.T) {
	w := get(t, testServer(t), "/api/page/0?zoom=200")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp pagedata.PageResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding page: %v", err)
	}
	if resp.DisplayWidth != 800 || resp.DisplayHeight != 800 {
		t.Errorf("display dims at zoom 200: %dx%d, want 800x800", resp.DisplayWidth, resp.DisplayHeight)
	}
	if len(resp.Boxes) != 1 || resp.Boxes[0].Content != "Bergen" {
		t.Errorf("boxes: %+v", resp.Boxes)
	}
}

func TestPageEndpointClampsZoom(t *testing.T) {
	w := get(t, testServer(t), "/api/page/0?zoom=9999")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp pagedata.PageResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding page: %v", err)
	}
	// Clamped to 400%: base scale 4 doubled twice over zoom 100.
	if resp.DisplayWidth != 1600 || resp.DisplayHeight != 1600 {
		t.Errorf("display dims = %dx%d, want 1600x1600", resp.DisplayWidth, resp.DisplayHeight)
	}
}

func TestPageEndpointSnapsZoomToStepGrid(t *testing.T) {
	w := get(t, testServer(t), "/api/page/0?zoom=133")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp pagedata.PageResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding page: %v", err)
	}
	// 133 snaps to 125: base scale 4 at 1.25 over the 100x100 scan.
	if resp.DisplayWidth != 500 || resp.DisplayHeight != 500 {
		t.Errorf("display dims = %dx%d, want 500x500", resp.DisplayWidth, resp.DisplayHeight)
	}
}

func TestImageEndpointSnapsZoomCacheKey(t *testing.T) {
	s := testServer(t)
	get(t, s, "/api/image/0?zoom=133")

	if _, hit, _ := s.cache.GetImage("test", 0, 125, ""); !hit {
		t.Error("off-grid zoom should be cached under the snapped level")
	}
	if _, hit, _ := s.cache.GetImage("test", 0, 133, ""); hit {
		t.Error("no cache entry may exist under an off-grid zoom level")
	}
}

func TestPageEndpointNotFound(t *testing.T) {
	w := get(t, testServer(t), "/api/page/99")
	if w.Code != http.StatusOK {
		t.Fatalf("page errors travel in-band, got status %d", w.Code)
	}

	var resp errorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding error: %v", err)
	}
	if resp.Error != "Page not found" {
		t.Errorf("error = %q, want %q", resp.Error, "Page not found")
	}
}

func TestPageEndpointBadIndex(t *testing.T) {
	w := get(t, testServer(t), "/api/page/abc")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for a non-numeric index, got %d", w.Code)
	}
}

func TestImageEndpoint(t *testing.T) {
	s := testServer(t)

	w := get(t, s, "/api/image/0?zoom=100")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("content type = %q", ct)
	}

	img, err := jpeg.Decode(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("decoding jpeg: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 400 {
		t.Errorf("image dims = %dx%d, want 400x400", b.Dx(), b.Dy())
	}

	// The rendering is now cached; a second request serves identical
	// bytes from the cache.
	data, hit, err := s.cache.GetImage("test", 0, 100, "")
	if err != nil || !hit {
		t.Fatalf("expected a cache entry, hit=%v err=%v", hit, err)
	}
	w2 := get(t, s, "/api/image/0?zoom=100")
	if !bytes.Equal(w2.Body.Bytes(), data) {
		t.Error("second request should serve the cached bytes")
	}
}

func TestImageEndpointMarksKeyedSeparately(t *testing.T) {
	s := testServer(t)

	get(t, s, "/api/image/0?zoom=100")
	get(t, s, "/api/image/0?zoom=100&composedBlock=true&string=true")

	if _, hit, _ := s.cache.GetImage("test", 0, 100, ""); !hit {
		t.Error("plain rendering should be cached under the empty marks key")
	}
	if _, hit, _ := s.cache.GetImage("test", 0, 100, "cs"); !hit {
		t.Error("marked rendering should be cached under its marks key")
	}
}

func TestImageEndpointNotFound(t *testing.T) {
	w := get(t, testServer(t), "/api/image/99")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestLocalServicePage(t *testing.T) {
	s := testServer(t)
	svc := NewLocalService(s.provider)

	res, err := svc.Page(t.Context(), 0, 100)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if res.Err != "" {
		t.Fatalf("unexpected in-band error %q", res.Err)
	}
	if res.Filename != "page_001_null" || res.TotalPages != 1 {
		t.Errorf("result: %+v", res)
	}
	if res.Geometry.DisplayWidth != 400 {
		t.Errorf("display width = %d, want 400", res.Geometry.DisplayWidth)
	}
	if len(res.Geometry.Strings) != 1 || res.Geometry.Strings[0].Content != "Bergen" {
		t.Errorf("strings: %+v", res.Geometry.Strings)
	}

	missing, err := svc.Page(t.Context(), 5, 100)
	if err != nil {
		t.Fatalf("Page out of range: %v", err)
	}
	if missing.Err != "Page not found" {
		t.Errorf("error = %q, want %q", missing.Err, "Page not found")
	}
}

func TestVerboseEnablesRequestLogging(t *testing.T) {
	quiet := testServer(t)
	loud := testServerWith(t, Config{Port: 0, Verbose: true})

	if got, want := len(loud.Router().Middlewares()), len(quiet.Router().Middlewares())+1; got != want {
		t.Errorf("middleware count with verbose = %d, want %d", got, want)
	}
	if w := get(t, loud, "/healthz"); w.Code != http.StatusOK {
		t.Errorf("healthz with verbose logging = %d", w.Code)
	}
}

func TestViewerIndexServed(t *testing.T) {
	w := get(t, testServer(t), "/")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Newspaper OCR Viewer") {
		t.Error("expected the viewer shell at /")
	}
}
