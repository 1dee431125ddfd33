package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "altoview",
	Short: "Side-by-side viewer for newspaper OCR archives",
	Long: `Altoview serves unpacked newspaper OCR archives (ALTO XML plus page
scans) as a synchronized two-pane web viewer: the scanned page with
bounding-box overlays next to a positioned reconstruction of the
recognized text.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".altoview.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every HTTP request")
}
