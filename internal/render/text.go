package render

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/hallvardm/altoview/internal/alto"
	"github.com/hallvardm/altoview/internal/pagedata"
	"github.com/hallvardm/altoview/internal/viewer"
)

// TextReconstruction renders the recognized text at its display
// positions onto a white canvas, with the selected category outlines on
// top, and returns it as PNG. Strings are always drawn; the String mark
// only adds their borders, mirroring the viewer's text pane.
func TextReconstruction(doc *alto.Document, scale *pagedata.Scale, marks Marks) ([]byte, error) {
	ttf, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("render: parsing font: %w", err)
	}

	dc := gg.NewContext(scale.DisplayWidth, scale.DisplayHeight)
	dc.SetColor(color.White)
	dc.Clear()

	faces := map[int]font.Face{}
	faceFor := func(size int) font.Face {
		if f, ok := faces[size]; ok {
			return f
		}
		f := truetype.NewFace(ttf, &truetype.Options{Size: float64(size), DPI: 72, Hinting: font.HintingFull})
		faces[size] = f
		return f
	}

	outline := func(r pagedata.Region, c color.Color, width float64) {
		dc.SetColor(c)
		dc.SetLineWidth(width)
		dc.DrawRectangle(float64(r.X), float64(r.Y), float64(r.Width), float64(r.Height))
		dc.Stroke()
	}

	if marks.ComposedBlock {
		for _, cb := range doc.ComposedBlocks {
			outline(scale.Region(cb.Box), colorComposedBlock, 2)
		}
	}
	if marks.Illustration {
		for _, ill := range doc.Illustrations {
			outline(scale.Region(ill.Box), colorIllustration, 3)
		}
	}
	if marks.TextLine {
		for _, line := range doc.Lines {
			outline(scale.Region(line.Box), colorTextLine, 2)
		}
	}

	for _, s := range doc.Strings {
		r := scale.Region(s.Box)
		size := viewer.FontSize(r.Height)
		dc.SetFontFace(faceFor(size))
		dc.SetColor(color.Black)
		dc.DrawStringAnchored(s.Content, float64(r.X)+float64(r.Width)/2, float64(r.Y)+float64(r.Height)/2, 0.5, 0.35)
		if marks.String {
			outline(r, colorString, 1)
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("render: encoding png: %w", err)
	}
	return buf.Bytes(), nil
}
