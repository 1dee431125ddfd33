package config

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .altoview.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to altoview! Let's configure your viewer.")
	fmt.Println()

	cfg := DefaultConfig()

	dirPrompt := promptui.Prompt{
		Label:   "Directory containing unpacked newspaper archives",
		Default: cfg.UnpackedDir,
	}
	dir, err := dirPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("unpacked dir prompt: %w", err)
	}
	cfg.UnpackedDir = dir

	portPrompt := promptui.Prompt{
		Label:   "Port to listen on",
		Default: strconv.Itoa(cfg.ListenPort),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > 65535 {
				return fmt.Errorf("enter a port number between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port prompt: %w", err)
	}
	cfg.ListenPort, _ = strconv.Atoi(portStr)

	corsPrompt := promptui.Select{
		Label: "Allow cross-origin requests from any host (dev mode)",
		Items: []string{"no", "yes"},
	}
	corsIdx, _, err := corsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("cors prompt: %w", err)
	}
	cfg.AllowAllOrigins = corsIdx == 1

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Save(".altoview.yml"); err != nil {
		return nil, err
	}

	fmt.Println()
	fmt.Println("Configuration written to .altoview.yml")
	return cfg, nil
}
