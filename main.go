package main

import (
	"os"

	"github.com/hallvardm/altoview/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
