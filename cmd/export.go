package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hallvardm/altoview/internal/archive"
	"github.com/hallvardm/altoview/internal/config"
	"github.com/hallvardm/altoview/internal/pagedata"
	"github.com/hallvardm/altoview/internal/render"
)

var (
	exportPaper string
	exportPage  int
	exportZoom  int
	exportMarks = render.AllMarks
)

var exportCmd = &cobra.Command{
	Use:   "export <output-dir>",
	Short: "Render a page to image files",
	Long: `Renders one page offline: the scan with category outlines as JPEG and
the positioned text reconstruction as PNG, the same surfaces the viewer
shows side by side.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		zoom := exportZoom
		if zoom == 0 {
			zoom = cfg.DefaultZoom
		}

		papers, err := archive.Discover(cfg.UnpackedDir)
		if err != nil {
			return fmt.Errorf("discovering archives: %w", err)
		}
		paper, err := pickPaper(papers, exportPaper)
		if err != nil {
			return err
		}
		if len(paper.Pages) == 0 {
			return fmt.Errorf("no OCR pages found under %s", cfg.UnpackedDir)
		}

		provider := pagedata.New(paper, cfg.MaxRenderDim)
		doc, err := provider.Document(exportPage)
		if err != nil {
			return fmt.Errorf("reading page %d: %w", exportPage, err)
		}
		scale, err := provider.ScaleFor(exportPage, zoom)
		if err != nil {
			return err
		}
		scanPath, err := provider.ImagePath(exportPage)
		if err != nil {
			return err
		}

		outDir := args[0]
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", outDir, err)
		}
		stem := fmt.Sprintf("%s_p%03d_z%d", paper.Name, exportPage+1, zoom)

		pageJPEG, err := render.Page(scanPath, doc, scale, exportMarks)
		if err != nil {
			return err
		}
		pagePath := filepath.Join(outDir, stem+"_scan.jpg")
		if err := os.WriteFile(pagePath, pageJPEG, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", pagePath, err)
		}

		textPNG, err := render.TextReconstruction(doc, scale, exportMarks)
		if err != nil {
			return err
		}
		textPath := filepath.Join(outDir, stem+"_text.png")
		if err := os.WriteFile(textPath, textPNG, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", textPath, err)
		}

		fmt.Printf("Wrote %s and %s\n", pagePath, textPath)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportPaper, "paper", "", "Newspaper directory name (default: first found)")
	exportCmd.Flags().IntVar(&exportPage, "page", 0, "Page index to render")
	exportCmd.Flags().IntVar(&exportZoom, "zoom", 0, "Zoom percentage (default: default_zoom from config)")
	exportCmd.Flags().BoolVar(&exportMarks.ComposedBlock, "composed-blocks", true, "Outline composed blocks")
	exportCmd.Flags().BoolVar(&exportMarks.Illustration, "illustrations", true, "Outline illustrations")
	exportCmd.Flags().BoolVar(&exportMarks.TextLine, "text-lines", true, "Outline text lines")
	exportCmd.Flags().BoolVar(&exportMarks.String, "strings", true, "Outline strings")
	rootCmd.AddCommand(exportCmd)
}
