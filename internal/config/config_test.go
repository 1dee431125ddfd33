package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.ListenPort != 5001 {
		t.Errorf("expected default port 5001, got %d", cfg.ListenPort)
	}
	if cfg.DefaultZoom != 100 {
		t.Errorf("expected default zoom 100, got %d", cfg.DefaultZoom)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.UnpackedDir != "unpacked" {
		t.Errorf("expected default unpacked_dir, got %q", cfg.UnpackedDir)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".altoview.yml")
	data := "listen_port: 8080\nunpacked_dir: /data/papers\nallow_all_origins: true\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenPort != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.ListenPort)
	}
	if cfg.UnpackedDir != "/data/papers" {
		t.Errorf("expected unpacked_dir /data/papers, got %q", cfg.UnpackedDir)
	}
	if !cfg.AllowAllOrigins {
		t.Error("expected allow_all_origins true")
	}
	// Untouched fields keep their defaults.
	if cfg.MaxRenderDim != 3200 {
		t.Errorf("expected default max_render_dimension, got %d", cfg.MaxRenderDim)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("ALTOVIEW_LISTEN_PORT", "9000")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenPort != 9000 {
		t.Errorf("expected env override port 9000, got %d", cfg.ListenPort)
	}
}

func TestValidateRejectsBadZoom(t *testing.T) {
	for _, zoom := range []int{0, 10, 33, 425, -25} {
		cfg := DefaultConfig()
		cfg.DefaultZoom = zoom
		if err := cfg.Validate(); err == nil {
			t.Errorf("zoom %d should not validate", zoom)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yml")
	cfg := DefaultConfig()
	cfg.ListenPort = 7777
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.ListenPort != 7777 {
		t.Errorf("expected saved port 7777, got %d", loaded.ListenPort)
	}
}
