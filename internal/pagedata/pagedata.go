// Package pagedata serves page geometry for the viewer: parsed ALTO
// elements scaled into display pixel space for a requested zoom level.
package pagedata

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"

	"github.com/hallvardm/altoview/internal/alto"
	"github.com/hallvardm/altoview/internal/archive"
)

// ErrNotFound is returned for page indexes outside the archive's range.
var ErrNotFound = errors.New("Page not found")

// Region is one box in display pixels. Content is set for strings only.
type Region struct {
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Content string `json:"content,omitempty"`
	Type    string `json:"type,omitempty"`
	ID      string `json:"id,omitempty"`
}

// PageResponse is the geometry payload for one page at one zoom level.
type PageResponse struct {
	Filename       string   `json:"filename"`
	TotalPages     int      `json:"total_pages"`
	DisplayWidth   int      `json:"display_width"`
	DisplayHeight  int      `json:"display_height"`
	ComposedBlocks []Region `json:"composed_blocks"`
	Illustrations  []Region `json:"illustrations"`
	Lines          []Region `json:"lines"`
	Boxes          []Region `json:"boxes"`
}

// Provider computes display geometry for one newspaper. Parsed documents
// and scan dimensions are memoized; both are immutable once read.
type Provider struct {
	paper  archive.Newspaper
	maxDim float64

	mu   sync.Mutex
	docs map[int]*alto.Document
	dims map[int]image.Point
}

// New creates a Provider for the given newspaper. maxDim bounds the
// longest display edge at 100% zoom (the original pipeline used 3200).
func New(paper archive.Newspaper, maxDim int) *Provider {
	return &Provider{
		paper:  paper,
		maxDim: float64(maxDim),
		docs:   make(map[int]*alto.Document),
		dims:   make(map[int]image.Point),
	}
}

// TotalPages returns the number of pages in the newspaper.
func (p *Provider) TotalPages() int { return len(p.paper.Pages) }

// Newspaper returns the newspaper this provider serves.
func (p *Provider) Newspaper() archive.Newspaper { return p.paper }

// Document returns the parsed ALTO document for a page, memoized.
func (p *Provider) Document(index int) (*alto.Document, error) {
	if index < 0 || index >= len(p.paper.Pages) {
		return nil, ErrNotFound
	}

	p.mu.Lock()
	doc, ok := p.docs[index]
	p.mu.Unlock()
	if ok {
		return doc, nil
	}

	doc, err := alto.ParseFile(p.paper.Pages[index].XML)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.docs[index] = doc
	p.mu.Unlock()
	return doc, nil
}

// ImagePath returns the scan path for a page.
func (p *Provider) ImagePath(index int) (string, error) {
	if index < 0 || index >= len(p.paper.Pages) {
		return "", ErrNotFound
	}
	return p.paper.Pages[index].Image, nil
}

// ScanDims returns the scan's pixel dimensions, memoized. Only the
// image header is decoded.
func (p *Provider) ScanDims(index int) (int, int, error) {
	if index < 0 || index >= len(p.paper.Pages) {
		return 0, 0, ErrNotFound
	}

	p.mu.Lock()
	pt, ok := p.dims[index]
	p.mu.Unlock()
	if ok {
		return pt.X, pt.Y, nil
	}

	f, err := os.Open(p.paper.Pages[index].Image)
	if err != nil {
		return 0, 0, fmt.Errorf("pagedata: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("pagedata: reading dimensions of %s: %w", p.paper.Pages[index].Image, err)
	}

	p.mu.Lock()
	p.dims[index] = image.Point{X: cfg.Width, Y: cfg.Height}
	p.mu.Unlock()
	return cfg.Width, cfg.Height, nil
}

// Scale describes the mapping from ALTO page coordinates to display
// pixels at a given zoom level.
type Scale struct {
	BoxX          float64 // ALTO x -> scan x
	BoxY          float64 // ALTO y -> scan y
	Img           float64 // scan -> display
	DisplayWidth  int
	DisplayHeight int
}

// ScaleFor computes the display scale for a page at a zoom percentage.
func (p *Provider) ScaleFor(index, zoom int) (*Scale, error) {
	doc, err := p.Document(index)
	if err != nil {
		return nil, err
	}
	scanW, scanH, err := p.ScanDims(index)
	if err != nil {
		return nil, err
	}
	if doc.PageWidth == 0 || doc.PageHeight == 0 {
		return nil, fmt.Errorf("pagedata: page %d has zero ALTO dimensions", index)
	}

	baseScale := min(p.maxDim/float64(scanW), p.maxDim/float64(scanH), 4.0)
	imgScale := baseScale * float64(zoom) / 100.0

	return &Scale{
		BoxX:          float64(scanW) / float64(doc.PageWidth),
		BoxY:          float64(scanH) / float64(doc.PageHeight),
		Img:           imgScale,
		DisplayWidth:  int(float64(scanW) * imgScale),
		DisplayHeight: int(float64(scanH) * imgScale),
	}, nil
}

// Region maps an ALTO box into display pixel space.
func (s *Scale) Region(b alto.Box) Region {
	return Region{
		X:      int(float64(b.X) * s.BoxX * s.Img),
		Y:      int(float64(b.Y) * s.BoxY * s.Img),
		Width:  int(float64(b.Width) * s.BoxX * s.Img),
		Height: int(float64(b.Height) * s.BoxY * s.Img),
	}
}

// Page returns the full geometry payload for a page at a zoom level.
func (p *Provider) Page(index, zoom int) (*PageResponse, error) {
	doc, err := p.Document(index)
	if err != nil {
		return nil, err
	}
	scale, err := p.ScaleFor(index, zoom)
	if err != nil {
		return nil, err
	}

	resp := &PageResponse{
		Filename:       pageStem(p.paper.Pages[index].XML),
		TotalPages:     len(p.paper.Pages),
		DisplayWidth:   scale.DisplayWidth,
		DisplayHeight:  scale.DisplayHeight,
		ComposedBlocks: make([]Region, 0, len(doc.ComposedBlocks)),
		Illustrations:  make([]Region, 0, len(doc.Illustrations)),
		Lines:          make([]Region, 0, len(doc.Lines)),
		Boxes:          make([]Region, 0, len(doc.Strings)),
	}

	for _, cb := range doc.ComposedBlocks {
		r := scale.Region(cb.Box)
		r.ID = cb.ID
		resp.ComposedBlocks = append(resp.ComposedBlocks, r)
	}
	for _, ill := range doc.Illustrations {
		r := scale.Region(ill.Box)
		r.Type = ill.Type
		resp.Illustrations = append(resp.Illustrations, r)
	}
	for _, line := range doc.Lines {
		resp.Lines = append(resp.Lines, scale.Region(line.Box))
	}
	for _, s := range doc.Strings {
		r := scale.Region(s.Box)
		r.Content = s.Content
		resp.Boxes = append(resp.Boxes, r)
	}
	return resp, nil
}

// pageStem strips the directory and extension from an XML path.
func pageStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
