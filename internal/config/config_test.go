package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.API.Timeout != 30*time.Second || cfg.API.PageSize != 20 || cfg.API.SearchLimit != 20 {
		t.Fatalf("unexpected API defaults: %+v", cfg.API)
	}
	if filepath.Base(cfg.Store.Path) != "reel.db" {
		t.Fatalf("unexpected store path: %q", cfg.Store.Path)
	}
}

func TestLoadConfigReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
store:
  path: /tmp/custom.db
api:
  timeout: 5s
  page_size: 50
player:
  command: vlc
  args: ["--fullscreen"]
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Store.Path != "/tmp/custom.db" {
		t.Fatalf("unexpected store path: %q", cfg.Store.Path)
	}
	if cfg.API.Timeout != 5*time.Second || cfg.API.PageSize != 50 {
		t.Fatalf("unexpected API config: %+v", cfg.API)
	}
	if cfg.API.SearchLimit != 20 {
		t.Fatalf("unset keys should keep defaults, got %d", cfg.API.SearchLimit)
	}
	if cfg.Player.Command != "vlc" || len(cfg.Player.Args) != 1 || cfg.Player.Args[0] != "--fullscreen" {
		t.Fatalf("unexpected player config: %+v", cfg.Player)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging level: %q", cfg.Logging.Level)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("REEL_API_PAGE_SIZE", "7")
	t.Setenv("REEL_LOGGING_LEVEL", "WARN")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.API.PageSize != 7 || cfg.Logging.Level != "WARN" {
		t.Fatalf("expected env overrides, got page_size=%d level=%q", cfg.API.PageSize, cfg.Logging.Level)
	}
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api:\n  page_size: 0\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected validation error for page_size 0")
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.API.Timeout = 12 * time.Second
	cfg.Player.Command = "mpv"
	cfg.UI.Theme = "mono"

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.API.Timeout != 12*time.Second || loaded.Player.Command != "mpv" || loaded.UI.Theme != "mono" {
		t.Fatalf("round trip lost values: %+v", loaded)
	}
}
