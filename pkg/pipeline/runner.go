// Package pipeline provides the per-row rendering pipeline.
//
// This package implements the resolve → layout → rasterize → encode chain
// that turns one data row into one encoded image. Both the preview path
// and the batch worker pool run rows through the same Runner, so the two
// paths cannot diverge in measurement, wrapping, or output bytes.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Resolve: merge the row with template defaults via the column mapping
//  2. Layout: compute the draw-op sequence for the resolved record
//  3. Rasterize: execute the ops against the raster backend and encode
//
// Rendering is deterministic, so encoded outputs are cached by a content
// hash of the resolved record; identical rows across preview and batch
// runs hit the cache.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bannerforge/bannerforge/pkg/cache"
	"github.com/bannerforge/bannerforge/pkg/errors"
	"github.com/bannerforge/bannerforge/pkg/layout"
	"github.com/bannerforge/bannerforge/pkg/mapping"
	"github.com/bannerforge/bannerforge/pkg/raster"
	"github.com/bannerforge/bannerforge/pkg/resolve"
	"github.com/bannerforge/bannerforge/pkg/rows"
	"github.com/bannerforge/bannerforge/pkg/template"
)

// Result is the output of rendering one row.
type Result struct {
	// Data is the encoded image.
	Data []byte

	// CacheHit reports whether Data came from cache.
	CacheHit bool

	// RenderTime is how long layout plus rasterization took. Zero on
	// cache hits.
	RenderTime time.Duration
}

// Runner renders individual rows. It is stateless except for the cache,
// backend and logger; multiple goroutines can share one Runner.
type Runner struct {
	Backend raster.Backend
	Engine  *layout.Engine
	Cache   cache.Cache
	Logger  *log.Logger
}

// NewRunner creates a runner whose layout engine measures text with the
// backend's own measurer. If c is nil, caching is disabled. If logger is
// nil, the default logger is used.
func NewRunner(backend raster.Backend, c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Backend: backend,
		Engine:  layout.NewEngine(backend.Measurer()),
		Cache:   c,
		Logger:  logger,
	}
}

// RenderRow runs one row through resolve → layout → rasterize → encode.
func (r *Runner) RenderRow(ctx context.Context, tpl *template.Template, m mapping.ColumnMapping, row rows.Row, format raster.Format) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec := resolve.Resolve(tpl, m, row)

	key := recordKey(rec, format)
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		r.Logger.Debug("render cache hit", "template", tpl.ID)
		return &Result{Data: data, CacheHit: true}, nil
	}

	start := time.Now()
	ops := r.Engine.Compute(rec)

	img, err := r.Backend.Render(ops, rec.Dimensions.Width, rec.Dimensions.Height)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := raster.Encode(&buf, img, format); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "encode %s", format)
	}

	res := &Result{Data: buf.Bytes(), RenderTime: time.Since(start)}
	_ = r.Cache.Set(ctx, key, res.Data, cache.TTLAsset)
	return res, nil
}

// recordKey derives the cache key for a resolved record and format. The
// record fully determines the output, so its JSON form is a sound content
// hash input.
func recordKey(rec resolve.Record, format raster.Format) string {
	data, _ := json.Marshal(rec)
	return cache.AssetKey(cache.Hash(data), string(format))
}
