package render

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/hallvardm/altoview/internal/alto"
	"github.com/hallvardm/altoview/internal/pagedata"
)

func testDoc() *alto.Document {
	return &alto.Document{
		PageWidth:  100,
		PageHeight: 100,
		ComposedBlocks: []alto.ComposedBlock{
			{Box: alto.Box{X: 5, Y: 5, Width: 60, Height: 60}, ID: "CB1"},
		},
		Lines: []alto.TextLine{
			{Box: alto.Box{X: 10, Y: 10, Width: 50, Height: 30}},
		},
		Strings: []alto.String{
			{Box: alto.Box{X: 10, Y: 10, Width: 50, Height: 30}, Content: "Oslo"},
		},
	}
}

func identityScale(w, h int) *pagedata.Scale {
	return &pagedata.Scale{BoxX: 1, BoxY: 1, Img: 1, DisplayWidth: w, DisplayHeight: h}
}

func TestMarksKey(t *testing.T) {
	tests := []struct {
		marks Marks
		want  string
	}{
		{Marks{}, ""},
		{AllMarks, "cils"},
		{Marks{ComposedBlock: true, String: true}, "cs"},
		{Marks{TextLine: true}, "l"},
	}
	for _, tt := range tests {
		if got := tt.marks.Key(); got != tt.want {
			t.Errorf("Key(%+v) = %q, want %q", tt.marks, got, tt.want)
		}
	}
}

func TestPage(t *testing.T) {
	scanPath := filepath.Join(t.TempDir(), "scan.png")
	f, err := os.Create(scanPath)
	if err != nil {
		t.Fatal(err)
	}
	src := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for i := range src.Pix {
		src.Pix[i] = 0xff
	}
	if err := png.Encode(f, src); err != nil {
		t.Fatal(err)
	}
	f.Close()

	data, err := Page(scanPath, testDoc(), identityScale(50, 50), AllMarks)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 50 || b.Dy() != 50 {
		t.Errorf("output dims: got %dx%d, want 50x50", b.Dx(), b.Dy())
	}
}

func TestPageMissingScan(t *testing.T) {
	_, err := Page(filepath.Join(t.TempDir(), "absent.jp2"), testDoc(), identityScale(10, 10), Marks{})
	if err == nil {
		t.Fatal("expected error for missing scan")
	}
}

func TestTextReconstruction(t *testing.T) {
	data, err := TextReconstruction(testDoc(), identityScale(100, 100), AllMarks)
	if err != nil {
		t.Fatalf("TextReconstruction: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 100 {
		t.Errorf("output dims: got %dx%d, want 100x100", b.Dx(), b.Dy())
	}

	// The canvas must not be blank: text and outlines are drawn on white.
	blank := true
	for y := 0; y < 100 && blank; y++ {
		for x := 0; x < 100; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if r != 0xffff || g != 0xffff || b != 0xffff {
				blank = false
				break
			}
		}
	}
	if blank {
		t.Error("expected drawn content, canvas is entirely white")
	}
}
