package pipeline

import (
	"context"
	"image"
	"sync"
	"testing"

	"github.com/bannerforge/bannerforge/pkg/cache"
	"github.com/bannerforge/bannerforge/pkg/errors"
	"github.com/bannerforge/bannerforge/pkg/layout"
	"github.com/bannerforge/bannerforge/pkg/mapping"
	"github.com/bannerforge/bannerforge/pkg/raster"
	"github.com/bannerforge/bannerforge/pkg/rows"
	"github.com/bannerforge/bannerforge/pkg/template"
)

// stubBackend renders solid images without touching any font files.
type stubBackend struct {
	mu      sync.Mutex
	renders int
	err     error
}

func (b *stubBackend) Render(ops []layout.Op, width, height int) (image.Image, error) {
	b.mu.Lock()
	b.renders++
	b.mu.Unlock()
	if b.err != nil {
		return nil, b.err
	}
	return image.NewRGBA(image.Rect(0, 0, width, height)), nil
}

func (b *stubBackend) Measurer() layout.Measurer { return layout.RatioMeasurer{} }

func (b *stubBackend) renderCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.renders
}

func testTemplate() *template.Template {
	return &template.Template{
		ID:         "tpl-1",
		Name:       "Launch",
		Variant:    template.VariantHeroText,
		Dimensions: template.Dimensions{Width: 120, Height: 80},
		Content:    template.Content{Headline: "Default headline"},
		Style:      template.DefaultStyle(),
	}
}

func TestRenderRowProducesEncodedImage(t *testing.T) {
	backend := &stubBackend{}
	r := NewRunner(backend, nil, nil)

	res, err := r.RenderRow(context.Background(), testTemplate(), nil, rows.Row{}, raster.FormatPNG)
	if err != nil {
		t.Fatalf("RenderRow: %v", err)
	}
	if len(res.Data) == 0 {
		t.Error("expected encoded bytes")
	}
	if res.CacheHit {
		t.Error("first render should not be a cache hit")
	}
}

func TestRenderRowCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	backend := &stubBackend{}
	r := NewRunner(backend, c, nil)

	tpl := testTemplate()
	m := mapping.ColumnMapping{template.FieldHeadline: "title"}
	row := rows.Row{"title": "Cached banner"}

	first, err := r.RenderRow(context.Background(), tpl, m, row, raster.FormatPNG)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.RenderRow(context.Background(), tpl, m, row, raster.FormatPNG)
	if err != nil {
		t.Fatal(err)
	}

	if !second.CacheHit {
		t.Error("identical row should hit the cache")
	}
	if string(first.Data) != string(second.Data) {
		t.Error("cached bytes must match the original render")
	}
	if got := backend.renderCount(); got != 1 {
		t.Errorf("backend rendered %d times, want 1", got)
	}

	// A different row value misses.
	third, err := r.RenderRow(context.Background(), tpl, m, rows.Row{"title": "Other"}, raster.FormatPNG)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheHit {
		t.Error("different content must not hit the cache")
	}
}

func TestRenderRowFormatChangesCacheKey(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(&stubBackend{}, c, nil)
	tpl := testTemplate()

	if _, err := r.RenderRow(context.Background(), tpl, nil, rows.Row{}, raster.FormatPNG); err != nil {
		t.Fatal(err)
	}
	res, err := r.RenderRow(context.Background(), tpl, nil, rows.Row{}, raster.FormatJPEG)
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheHit {
		t.Error("png entry must not serve a jpeg request")
	}
}

func TestRenderRowBackendError(t *testing.T) {
	backend := &stubBackend{err: errors.New(errors.ErrCodeRenderFailed, "no usable font")}
	r := NewRunner(backend, nil, nil)

	_, err := r.RenderRow(context.Background(), testTemplate(), nil, rows.Row{}, raster.FormatPNG)
	if !errors.Is(err, errors.ErrCodeRenderFailed) {
		t.Errorf("got %v, want RENDER_FAILED", err)
	}
}

func TestRenderRowCancelledContext(t *testing.T) {
	r := NewRunner(&stubBackend{}, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.RenderRow(ctx, testTemplate(), nil, rows.Row{}, raster.FormatPNG); err == nil {
		t.Error("cancelled context should abort the render")
	}
}
