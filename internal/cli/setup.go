package cli

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/bannerforge/bannerforge/internal/config"
	"github.com/bannerforge/bannerforge/pkg/batch"
	"github.com/bannerforge/bannerforge/pkg/cache"
	"github.com/bannerforge/bannerforge/pkg/job"
	"github.com/bannerforge/bannerforge/pkg/pipeline"
	"github.com/bannerforge/bannerforge/pkg/raster"
)

// buildStore creates the job store selected by the config.
func buildStore(ctx context.Context, cfg *config.Config) (job.Store, error) {
	if cfg.Store.Backend == "redis" {
		return job.NewRedisStore(ctx, job.RedisConfig{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		})
	}
	return job.NewMemoryStore(), nil
}

// buildCache creates the render cache. Cache failures are not fatal;
// rendering works uncached.
func buildCache(cfg *config.Config, logger *log.Logger) cache.Cache {
	if !cfg.Cache.Enabled {
		return cache.NewNullCache()
	}
	c, err := cache.NewFileCache(cfg.Cache.Dir)
	if err != nil {
		logger.Warn("render cache disabled", "dir", cfg.Cache.Dir, "err", err)
		return cache.NewNullCache()
	}
	return c
}

// buildOrchestrator assembles the full rendering stack from the config.
func buildOrchestrator(ctx context.Context, cfg *config.Config, logger *log.Logger) (*batch.Orchestrator, job.Store, error) {
	format, err := raster.ParseFormat(cfg.Render.Format)
	if err != nil {
		return nil, nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	runner := pipeline.NewRunner(raster.NewGGBackend(), buildCache(cfg, logger), logger)
	orch := batch.New(runner, store, logger, batch.Options{
		Workers:      cfg.Render.Workers,
		AssetTimeout: cfg.Render.AssetTimeout.Duration,
		PreviewRows:  cfg.Render.PreviewRows,
		OutputDir:    cfg.Render.OutputDir,
		Format:       format,
		Archive:      cfg.Render.Archive,
	})
	return orch, store, nil
}
