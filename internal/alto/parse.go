package alto

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

// XML decoding targets. Coordinates are decoded as floats because some
// ALTO producers emit fractional positions; public types round down to
// whole pixels like every consumer of this data does.
type xmlBox struct {
	HPos   float64 `xml:"HPOS,attr"`
	VPos   float64 `xml:"VPOS,attr"`
	Width  float64 `xml:"WIDTH,attr"`
	Height float64 `xml:"HEIGHT,attr"`
}

func (b xmlBox) box() Box {
	return Box{X: int(b.HPos), Y: int(b.VPos), Width: int(b.Width), Height: int(b.Height)}
}

type xmlString struct {
	xmlBox
	Content string `xml:"CONTENT,attr"`
}

type xmlTextLine struct {
	xmlBox
	Strings []xmlString `xml:"String"`
}

type xmlTextBlock struct {
	xmlBox
	ID    string        `xml:"ID,attr"`
	Lines []xmlTextLine `xml:"TextLine"`
}

type xmlIllustration struct {
	xmlBox
	Type string `xml:"TYPE,attr"`
}

type xmlComposedBlock struct {
	xmlBox
	ID            string            `xml:"ID,attr"`
	TextBlocks    []xmlTextBlock    `xml:"TextBlock"`
	Illustrations []xmlIllustration `xml:"Illustration"`
}

type xmlPrintSpace struct {
	ComposedBlocks []xmlComposedBlock `xml:"ComposedBlock"`
	TextBlocks     []xmlTextBlock     `xml:"TextBlock"`
	Illustrations  []xmlIllustration  `xml:"Illustration"`
}

type xmlPage struct {
	Width      float64       `xml:"WIDTH,attr"`
	Height     float64       `xml:"HEIGHT,attr"`
	PrintSpace xmlPrintSpace `xml:"PrintSpace"`
}

type xmlAlto struct {
	XMLName xml.Name `xml:"alto"`
	Layout  struct {
		Pages []xmlPage `xml:"Page"`
	} `xml:"Layout"`
}

// Parse reads an ALTO v2 document from r. Multi-page files are merged
// into a single Document; newspaper ALTO carries one page per file.
func Parse(r io.Reader) (*Document, error) {
	var raw xmlAlto
	if err := xml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("alto: decoding xml: %w", err)
	}

	if len(raw.Layout.Pages) == 0 {
		return nil, fmt.Errorf("alto: document has no Page element")
	}

	doc := &Document{}
	for i, page := range raw.Layout.Pages {
		if i == 0 {
			doc.PageWidth = int(page.Width)
			doc.PageHeight = int(page.Height)
		}
		mergePage(doc, page)
	}
	return doc, nil
}

// ParseFile parses the ALTO file at path.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("alto: %w", err)
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("alto: parsing %s: %w", path, err)
	}
	return doc, nil
}

func mergePage(doc *Document, page xmlPage) {
	ps := page.PrintSpace

	for _, cb := range ps.ComposedBlocks {
		doc.ComposedBlocks = append(doc.ComposedBlocks, ComposedBlock{Box: cb.box(), ID: cb.ID})
		for _, ill := range cb.Illustrations {
			doc.Illustrations = append(doc.Illustrations, Illustration{Box: ill.box(), Type: ill.Type})
		}
		for _, tb := range cb.TextBlocks {
			addTextBlock(doc, tb)
		}
	}

	// Blocks and illustrations placed directly under PrintSpace.
	for _, ill := range ps.Illustrations {
		doc.Illustrations = append(doc.Illustrations, Illustration{Box: ill.box(), Type: ill.Type})
	}
	for _, tb := range ps.TextBlocks {
		addTextBlock(doc, tb)
	}
}

func addTextBlock(doc *Document, raw xmlTextBlock) {
	block := TextBlock{Box: raw.box(), ID: raw.ID}
	for _, rawLine := range raw.Lines {
		line := TextLine{Box: rawLine.box()}
		for _, rawStr := range rawLine.Strings {
			line.Strings = append(line.Strings, String{Box: rawStr.box(), Content: rawStr.Content})
		}
		block.Lines = append(block.Lines, line)
		doc.Lines = append(doc.Lines, line)
		doc.Strings = append(doc.Strings, line.Strings...)
	}
	doc.Blocks = append(doc.Blocks, block)
}
