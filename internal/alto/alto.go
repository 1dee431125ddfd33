// Package alto parses ALTO v2 XML layout files as produced by newspaper
// digitization pipelines. It exposes both the flattened element sequences
// the viewer consumes (composed blocks, illustrations, lines, strings)
// and the nested block structure used for text reconstruction.
package alto

import "strings"

// Box is an element bounding box in ALTO page coordinates.
type Box struct {
	X      int
	Y      int
	Width  int
	Height int
}

// String is a recognized word with its bounding box.
type String struct {
	Box
	Content string
}

// TextLine is one line of text with its strings.
type TextLine struct {
	Box
	Strings []String
}

// TextBlock groups the lines of one paragraph or column fragment.
type TextBlock struct {
	Box
	ID    string
	Lines []TextLine
}

// ComposedBlock is a top-level grouping, typically one article.
type ComposedBlock struct {
	Box
	ID string
}

// Illustration is a non-text region such as a photo or ornament.
type Illustration struct {
	Box
	Type string
}

// Document holds the parsed layout of a single ALTO file.
//
// ComposedBlocks, Illustrations, Lines and Strings are gathered
// document-wide in document order; Blocks preserves the nested
// block/line/string hierarchy.
type Document struct {
	PageWidth  int
	PageHeight int

	ComposedBlocks []ComposedBlock
	Illustrations  []Illustration
	Blocks         []TextBlock
	Lines          []TextLine
	Strings        []String
}

// Text returns the block's recognized text, one line per text line,
// words joined by single spaces.
func (b TextBlock) Text() string {
	lines := make([]string, 0, len(b.Lines))
	for _, line := range b.Lines {
		words := make([]string, 0, len(line.Strings))
		for _, s := range line.Strings {
			words = append(words, s.Content)
		}
		lines = append(lines, strings.Join(words, " "))
	}
	return strings.Join(lines, "\n")
}
