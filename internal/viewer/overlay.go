package viewer

import (
	"fmt"
	"html"
	"strings"
)

// Overlays builds the markup for both panes from page geometry and a
// visibility snapshot. It is a pure function of its inputs.
//
// Layering is fixed and identical across panes: composed blocks, then
// illustrations, then text lines, then strings. The image pane honors
// every filter flag. The text pane exists to show the recognized text,
// so it always renders string content; the String flag only toggles the
// border around each string box there.
func Overlays(g *Geometry, f Filter, imageURL string) (imagePane, textPane string) {
	return imageOverlay(g, f, imageURL), textOverlay(g, f)
}

func imageOverlay(g *Geometry, f Filter, imageURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="canvas-container" style="width:%dpx;height:%dpx">`, g.DisplayWidth, g.DisplayHeight)
	b.WriteString(`<div class="loading image-loading">Image is rendering...</div>`)
	fmt.Fprintf(&b, `<img src="%s" alt="Page image" style="display:none">`, html.EscapeString(imageURL))

	if f.ComposedBlock {
		writeBoxes(&b, "composed-block", g.ComposedBlocks)
	}
	if f.Illustration {
		writeBoxes(&b, "illustration", g.Illustrations)
	}
	if f.TextLine {
		writeBoxes(&b, "text-line", g.Lines)
	}
	if f.String {
		writeBoxes(&b, "string-box", g.Strings)
	}

	b.WriteString(`</div>`)
	return b.String()
}

func textOverlay(g *Geometry, f Filter) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="text-overlay" style="width:%dpx;height:%dpx">`, g.DisplayWidth, g.DisplayHeight)

	if f.ComposedBlock {
		writeBoxes(&b, "composed-block", g.ComposedBlocks)
	}
	if f.Illustration {
		writeBoxes(&b, "illustration", g.Illustrations)
	}
	if f.TextLine {
		writeBoxes(&b, "text-line", g.Lines)
	}

	// Strings are always rendered; the filter only controls the border.
	border := "none"
	if f.String {
		border = "1px dashed blue"
	}
	for _, r := range g.Strings {
		fmt.Fprintf(&b,
			`<div class="text-box" style="left:%dpx;top:%dpx;width:%dpx;height:%dpx;font-size:%dpx;border:%s">%s</div>`,
			r.X, r.Y, r.Width, r.Height, FontSize(r.Height), border, html.EscapeString(r.Content))
	}

	b.WriteString(`</div>`)
	return b.String()
}

func writeBoxes(b *strings.Builder, class string, regions []Region) {
	for _, r := range regions {
		fmt.Fprintf(b, `<div class="%s" style="left:%dpx;top:%dpx;width:%dpx;height:%dpx"></div>`,
			class, r.X, r.Y, r.Width, r.Height)
	}
}

// FontSize derives the text size from a string box height: 70% of the
// box rounded down, with a floor of 8 so tiny boxes stay legible.
func FontSize(boxHeight int) int {
	size := boxHeight * 7 / 10
	if size < 8 {
		return 8
	}
	return size
}
