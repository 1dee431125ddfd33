package config

// DefaultConfig returns the built-in defaults used when no config file
// or overrides are present.
func DefaultConfig() *Config {
	return &Config{
		ListenPort:   5001,
		UnpackedDir:  "unpacked",
		CachePath:    ".altoview/cache.db",
		DefaultZoom:  100,
		MaxRenderDim: 3200,
	}
}
