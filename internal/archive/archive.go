// Package archive discovers unpacked newspaper archives on disk and
// extracts the .tar bundles they are distributed as.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// imageExtensions lists recognized scan formats, in pairing priority order.
// Archives ship JPEG2000 masters; converted rasters sit alongside them.
var imageExtensions = []string{".jp2", ".png", ".jpg", ".jpeg", ".tif", ".tiff"}

// PagePair is one page of a newspaper: the ALTO XML file and its scan.
type PagePair struct {
	XML   string
	Image string
}

// Newspaper is a discovered newspaper directory with its ordered pages.
type Newspaper struct {
	Name  string
	Dir   string
	Pages []PagePair
}

// Discover scans unpackedDir for newspaper directories. A newspaper is
// any immediate subdirectory containing an ocr/ folder; its pages are
// the sorted *_null.xml files that have a sibling scan image. XML files
// without any matching image are skipped.
func Discover(unpackedDir string) ([]Newspaper, error) {
	entries, err := os.ReadDir(unpackedDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("archive: reading %s: %w", unpackedDir, err)
	}

	var papers []Newspaper
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(unpackedDir, entry.Name())
		pages, err := findPages(dir)
		if err != nil {
			return nil, err
		}
		if pages == nil {
			continue
		}
		papers = append(papers, Newspaper{Name: entry.Name(), Dir: dir, Pages: pages})
	}
	return papers, nil
}

// findPages returns the page pairs under dir/ocr, or nil if there is no
// ocr directory.
func findPages(dir string) ([]PagePair, error) {
	ocrDir := filepath.Join(dir, "ocr")
	if info, err := os.Stat(ocrDir); err != nil || !info.IsDir() {
		return nil, nil
	}

	xmlFiles, err := doublestar.FilepathGlob(filepath.Join(ocrDir, "*_null.xml"))
	if err != nil {
		return nil, fmt.Errorf("archive: globbing %s: %w", ocrDir, err)
	}
	sort.Strings(xmlFiles)

	pages := make([]PagePair, 0, len(xmlFiles))
	for _, xmlFile := range xmlFiles {
		if img := findScan(xmlFile); img != "" {
			pages = append(pages, PagePair{XML: xmlFile, Image: img})
		}
	}
	return pages, nil
}

// findScan looks for a scan image next to the XML file, trying each
// recognized extension in priority order.
func findScan(xmlFile string) string {
	base := strings.TrimSuffix(xmlFile, filepath.Ext(xmlFile))
	for _, ext := range imageExtensions {
		candidate := base + ext
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
