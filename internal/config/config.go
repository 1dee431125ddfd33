package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Config is the top-level altoview configuration, corresponding to .altoview.yml.
type Config struct {
	ListenPort      int    `yaml:"listen_port" koanf:"listen_port"`
	UnpackedDir     string `yaml:"unpacked_dir" koanf:"unpacked_dir"`
	CachePath       string `yaml:"cache_path" koanf:"cache_path"`
	AllowAllOrigins bool   `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	DefaultZoom     int    `yaml:"default_zoom" koanf:"default_zoom"`
	MaxRenderDim    int    `yaml:"max_render_dimension" koanf:"max_render_dimension"`
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (ALTOVIEW_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: ALTOVIEW_LISTEN_PORT -> listen_port, etc.
	if err := k.Load(env.Provider("ALTOVIEW_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "ALTOVIEW_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.ListenPort < 1 || c.ListenPort > 65535 {
		return fmt.Errorf("listen_port must be in 1..65535, got %d", c.ListenPort)
	}

	if c.UnpackedDir == "" {
		return fmt.Errorf("unpacked_dir is required")
	}

	if c.DefaultZoom < 25 || c.DefaultZoom > 400 || c.DefaultZoom%25 != 0 {
		return fmt.Errorf("default_zoom must be a multiple of 25 in 25..400, got %d", c.DefaultZoom)
	}

	if c.MaxRenderDim <= 0 {
		return fmt.Errorf("max_render_dimension must be positive")
	}

	return nil
}
