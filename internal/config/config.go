// Package config loads server and renderer configuration from TOML files.
//
// Every field has a working default, so a missing config file is not an
// error: the zero-config path runs a single-instance server with an
// in-memory job store and an on-disk render cache.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/bannerforge/bannerforge/pkg/errors"
)

// Config is the full application configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Render RenderConfig `toml:"render"`
	Store  StoreConfig  `toml:"store"`
	Cache  CacheConfig  `toml:"cache"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `toml:"addr"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout duration `toml:"shutdown_timeout"`
}

// RenderConfig configures batch rendering.
type RenderConfig struct {
	// Workers bounds the render worker pool.
	Workers int `toml:"workers"`

	// AssetTimeout caps a single asset task.
	AssetTimeout duration `toml:"asset_timeout"`

	// PreviewRows is how many leading rows a preview renders.
	PreviewRows int `toml:"preview_rows"`

	// OutputDir is the root directory for job outputs.
	OutputDir string `toml:"output_dir"`

	// Format is the default output format, "png" or "jpeg".
	Format string `toml:"format"`

	// Archive controls whether finished jobs get a zip of their assets.
	Archive bool `toml:"archive"`
}

// StoreConfig selects the job store backend.
type StoreConfig struct {
	// Backend is "memory" or "redis".
	Backend string `toml:"backend"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// CacheConfig configures the rendered-asset cache.
type CacheConfig struct {
	// Enabled toggles caching of rendered assets.
	Enabled bool `toml:"enabled"`

	// Dir is the cache directory.
	Dir string `toml:"dir"`
}

// duration wraps time.Duration for TOML string values like "30s".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: duration{10 * time.Second},
		},
		Render: RenderConfig{
			Workers:      4,
			AssetTimeout: duration{30 * time.Second},
			PreviewRows:  3,
			OutputDir:    "output",
			Format:       "png",
			Archive:      true,
		},
		Store: StoreConfig{
			Backend:   "memory",
			RedisAddr: "localhost:6379",
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".bannerforge-cache",
		},
	}
}

// Load reads a TOML config from path, layered over the defaults. An empty
// path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field ranges and enum values.
func (c *Config) Validate() error {
	if c.Render.Workers <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "render.workers must be positive, got %d", c.Render.Workers)
	}
	if c.Render.PreviewRows <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "render.preview_rows must be positive, got %d", c.Render.PreviewRows)
	}
	if c.Render.Format != "png" && c.Render.Format != "jpeg" && c.Render.Format != "jpg" {
		return errors.New(errors.ErrCodeInvalidFormat, "render.format must be png or jpeg, got %q", c.Render.Format)
	}
	switch c.Store.Backend {
	case "memory", "redis":
	default:
		return errors.New(errors.ErrCodeInvalidInput, "store.backend must be memory or redis, got %q", c.Store.Backend)
	}
	return nil
}
