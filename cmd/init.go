package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hallvardm/altoview/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize altoview configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure altoview and generates a .altoview.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
