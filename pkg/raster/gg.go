package raster

import (
	"fmt"
	"image"
	"sync"

	"github.com/fogleman/gg"

	"github.com/bannerforge/bannerforge/pkg/errors"
	"github.com/bannerforge/bannerforge/pkg/layout"
	"github.com/bannerforge/bannerforge/pkg/template"
)

// GGBackend renders draw ops with fogleman/gg. Its MeasureString is the
// canonical text measurement for the whole system: the layout engine wraps
// with the same faces the rasterizer draws with, keeping preview and full
// render identical.
type GGBackend struct {
	fonts *FontLibrary

	// measuring context, guarded separately from rendering contexts
	// (each Render call creates its own context and is self-contained).
	mu      sync.Mutex
	measure *gg.Context
}

// NewGGBackend creates a gg-based raster backend with its own font cache.
func NewGGBackend() *GGBackend {
	return &GGBackend{
		fonts:   NewFontLibrary(),
		measure: gg.NewContext(1, 1),
	}
}

// Render executes ops against a new width×height surface.
func (b *GGBackend) Render(ops []layout.Op, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New(errors.ErrCodeRenderFailed, "invalid surface size %dx%d", width, height)
	}

	dc := gg.NewContext(width, height)

	for i, op := range ops {
		var err error
		switch o := op.(type) {
		case layout.FillBackground:
			err = b.fillBackground(dc, o, width, height)
		case layout.FillText:
			err = b.fillText(dc, o)
		case layout.FillRoundedRect:
			err = b.fillRoundedRect(dc, o)
		default:
			err = fmt.Errorf("unsupported op %T", op)
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "op %d", i)
		}
	}

	return dc.Image(), nil
}

func (b *GGBackend) fillBackground(dc *gg.Context, op layout.FillBackground, width, height int) error {
	if op.Gradient != nil {
		from, err := template.ParseColor(op.Gradient.From)
		if err != nil {
			return err
		}
		to, err := template.ParseColor(op.Gradient.To)
		if err != nil {
			return err
		}
		grad := gg.NewLinearGradient(0, 0, float64(width), float64(height))
		grad.AddColorStop(0, from)
		grad.AddColorStop(1, to)
		dc.SetFillStyle(grad)
		dc.DrawRectangle(0, 0, float64(width), float64(height))
		dc.Fill()
		return nil
	}

	c, err := template.ParseColor(op.Color)
	if err != nil {
		return err
	}
	dc.SetColor(c)
	dc.Clear()
	return nil
}

func (b *GGBackend) fillText(dc *gg.Context, op layout.FillText) error {
	face, err := b.fonts.Face(op.Font, op.Size, op.Weight)
	if err != nil {
		return err
	}
	c, err := template.ParseColor(op.Color)
	if err != nil {
		return err
	}

	dc.SetFontFace(face)
	dc.SetColor(c)

	advance := op.Size * op.LineHeight
	for i, line := range op.Lines {
		// Anchor each line at its own center: x is the block's horizontal
		// center, y steps down from the block top by full line advances.
		cy := op.Y + (float64(i)+0.5)*advance
		dc.DrawStringAnchored(line, op.X, cy, 0.5, 0.5)
	}
	return nil
}

func (b *GGBackend) fillRoundedRect(dc *gg.Context, op layout.FillRoundedRect) error {
	c, err := template.ParseColor(op.Color)
	if err != nil {
		return err
	}
	dc.SetColor(c)
	if op.Radius > 0 {
		dc.DrawRoundedRectangle(op.X, op.Y, op.W, op.H, op.Radius)
	} else {
		dc.DrawRectangle(op.X, op.Y, op.W, op.H)
	}
	dc.Fill()
	return nil
}

// Measurer returns the backend's text measurer.
func (b *GGBackend) Measurer() layout.Measurer {
	return ggMeasurer{backend: b}
}

// ggMeasurer measures text with the backend's font cache.
type ggMeasurer struct {
	backend *GGBackend
}

// MeasureString returns the rendered width of s in pixels. Falls back to a
// ratio estimate when no usable font exists so layout still proceeds (the
// subsequent render reports the font error on the asset).
func (m ggMeasurer) MeasureString(s string, fontFamily string, size float64, weight template.Weight) float64 {
	face, err := m.backend.fonts.Face(fontFamily, size, weight)
	if err != nil {
		return layout.RatioMeasurer{}.MeasureString(s, fontFamily, size, weight)
	}

	m.backend.mu.Lock()
	defer m.backend.mu.Unlock()
	m.backend.measure.SetFontFace(face)
	w, _ := m.backend.measure.MeasureString(s)
	return w
}

// Ensure GGBackend implements Backend.
var _ Backend = (*GGBackend)(nil)
