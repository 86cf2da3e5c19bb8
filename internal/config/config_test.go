package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bannerforge/bannerforge/pkg/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Render.Workers != 4 || cfg.Render.Format != "png" {
		t.Errorf("render defaults: %+v", cfg.Render)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("store backend = %q", cfg.Store.Backend)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bannerforge.toml")
	content := `
[render]
workers = 8
asset_timeout = "5s"
format = "jpeg"

[store]
backend = "redis"
redis_addr = "redis:6379"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Render.Workers != 8 {
		t.Errorf("workers = %d", cfg.Render.Workers)
	}
	if cfg.Render.AssetTimeout.Duration != 5*time.Second {
		t.Errorf("asset_timeout = %s", cfg.Render.AssetTimeout)
	}
	if cfg.Store.Backend != "redis" || cfg.Store.RedisAddr != "redis:6379" {
		t.Errorf("store: %+v", cfg.Store)
	}
	// Untouched sections keep their defaults.
	if cfg.Render.PreviewRows != 3 {
		t.Errorf("preview_rows = %d", cfg.Render.PreviewRows)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/does/not/exist.toml"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("got %v, want INVALID_INPUT", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		code   errors.Code
	}{
		{"zero workers", func(c *Config) { c.Render.Workers = 0 }, errors.ErrCodeInvalidInput},
		{"bad format", func(c *Config) { c.Render.Format = "bmp" }, errors.ErrCodeInvalidFormat},
		{"bad backend", func(c *Config) { c.Store.Backend = "postgres" }, errors.ErrCodeInvalidInput},
		{"zero preview rows", func(c *Config) { c.Render.PreviewRows = 0 }, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.code) {
				t.Errorf("got %v, want %s", err, tt.code)
			}
		})
	}
}
