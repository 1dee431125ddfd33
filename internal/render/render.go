// Package render produces the raster surfaces of the viewer: the page
// scan scaled for display (optionally with category outlines burned in)
// and a positioned reconstruction of the recognized text.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"strings"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"

	_ "image/png"

	_ "golang.org/x/image/tiff"

	"github.com/hallvardm/altoview/internal/alto"
	"github.com/hallvardm/altoview/internal/pagedata"
)

// Marks selects which region categories get outlines drawn.
type Marks struct {
	ComposedBlock bool
	Illustration  bool
	TextLine      bool
	String        bool
}

// AllMarks enables every category.
var AllMarks = Marks{ComposedBlock: true, Illustration: true, TextLine: true, String: true}

// Key returns a compact cache key for the mark set.
func (m Marks) Key() string {
	var b strings.Builder
	if m.ComposedBlock {
		b.WriteByte('c')
	}
	if m.Illustration {
		b.WriteByte('i')
	}
	if m.TextLine {
		b.WriteByte('l')
	}
	if m.String {
		b.WriteByte('s')
	}
	return b.String()
}

var (
	colorComposedBlock = color.RGBA{R: 255, G: 165, B: 0, A: 255} // orange
	colorIllustration  = color.RGBA{R: 255, G: 0, B: 255, A: 255} // magenta
	colorTextLine      = color.RGBA{R: 0, G: 128, B: 0, A: 255}   // green
	colorString        = color.RGBA{R: 0, G: 0, B: 255, A: 255}   // blue
)

// Page decodes the scan at scanPath, draws the selected category
// outlines in scan resolution, scales the result to the display size
// and encodes it as JPEG.
func Page(scanPath string, doc *alto.Document, scale *pagedata.Scale, marks Marks) ([]byte, error) {
	f, err := os.Open(scanPath)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("render: decoding %s: %w", scanPath, err)
	}

	dc := gg.NewContextForImage(img)

	stroke := func(b alto.Box, c color.Color, width float64) {
		x := float64(b.X) * scale.BoxX
		y := float64(b.Y) * scale.BoxY
		w := float64(b.Width) * scale.BoxX
		h := float64(b.Height) * scale.BoxY
		dc.SetColor(c)
		dc.SetLineWidth(width)
		dc.DrawRectangle(x, y, w, h)
		dc.Stroke()
	}

	// Outline order matches the overlay layering: coarsest first.
	if marks.ComposedBlock {
		for _, cb := range doc.ComposedBlocks {
			stroke(cb.Box, colorComposedBlock, 2)
		}
	}
	if marks.Illustration {
		for _, ill := range doc.Illustrations {
			stroke(ill.Box, colorIllustration, 3)
		}
	}
	if marks.TextLine {
		for _, line := range doc.Lines {
			stroke(line.Box, colorTextLine, 2)
		}
	}
	if marks.String {
		for _, s := range doc.Strings {
			stroke(s.Box, colorString, 2)
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, scale.DisplayWidth, scale.DisplayHeight))
	src := dc.Image()
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("render: encoding jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
