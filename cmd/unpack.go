package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hallvardm/altoview/internal/archive"
	"github.com/hallvardm/altoview/internal/config"
	"github.com/hallvardm/altoview/internal/progress"
)

var unpackDest string

var unpackCmd = &cobra.Command{
	Use:   "unpack <source-dir>",
	Short: "Extract newspaper .tar archives for viewing",
	Long: `Finds every .tar file under the source directory and extracts it into
the unpacked directory, preserving the source layout so the serve
command can discover the OCR files and scans inside.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dest := unpackDest
		if dest == "" {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			dest = cfg.UnpackedDir
		}

		reporter := progress.New()
		if err := archive.Unpack(args[0], dest, reporter.Report); err != nil {
			return err
		}
		reporter.Finish()

		fmt.Printf("Extracted archives into %s\n", dest)
		return nil
	},
}

func init() {
	unpackCmd.Flags().StringVar(&unpackDest, "dest", "", "Destination directory (default: unpacked_dir from config)")
	rootCmd.AddCommand(unpackCmd)
}
