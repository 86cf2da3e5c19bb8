// Package layout turns a resolved record into an ordered list of draw
// primitives sized to the template's pixel dimensions.
//
// The engine is a pure function of its inputs: identical (record,
// dimensions, style, variant) always yield an identical op sequence. This
// makes batch output reproducible and lets tests run against the op list
// without a real raster backend.
//
// # Algorithm
//
// Every variant shares the same skeleton:
//
//  1. Background: gradient if present, else background color, else the
//     resolved primary color.
//  2. A stack of blocks (headline, subheadline, CTA, author lines) is laid
//     out symmetrically around the canvas's vertical center. Block heights
//     derive from wrapped line counts and a per-role line-height factor.
//  3. Text wraps greedily against the measured pixel width, bounded by
//     canvasWidth - 2×padding.
//
// Variants differ only in which blocks they stack and where the stack
// anchors. Unrecognized variants behave as hero-text.
package layout

import (
	"github.com/bannerforge/bannerforge/pkg/resolve"
	"github.com/bannerforge/bannerforge/pkg/template"
)

// Line-height factors by role. Headlines sit tighter than body copy.
const (
	headlineLineHeight = 1.2
	bodyLineHeight     = 1.3
	authorLineHeight   = 1.4
)

// CTA buttons are a fixed size regardless of canvas dimensions. This is a
// deliberate policy: pill buttons keep a consistent tap target across
// placements instead of scaling with the canvas.
const (
	CTAWidth  = 200.0
	CTAHeight = 50.0
)

// quoteGlyphScale enlarges the opening-quote glyph relative to the
// headline size in the quote variant.
const quoteGlyphScale = 2.0

// quoteTextScale reduces the quoted headline relative to the headline size.
const quoteTextScale = 0.8

// Measurer reports the rendered pixel width of a single line of text.
// The same measurer must back preview and full render, or wrapping would
// diverge between the two paths.
type Measurer interface {
	MeasureString(s string, font string, size float64, weight template.Weight) float64
}

// Op is one draw primitive consumed by a raster backend.
type Op interface {
	op()
}

// FillBackground fills the whole canvas. When Gradient is non-nil the fill
// is a linear two-stop gradient from the top-left to the bottom-right
// corner; otherwise Color is a flat fill.
type FillBackground struct {
	Color    string
	Gradient *template.Gradient
}

// FillText draws pre-wrapped lines centered horizontally at X, starting at
// Y (top of the block). Lines advance by Size×LineHeight.
type FillText struct {
	Lines      []string
	X, Y       float64
	Font       string
	Size       float64
	Weight     template.Weight
	Color      string
	LineHeight float64
}

// FillRoundedRect fills a rounded rectangle.
type FillRoundedRect struct {
	X, Y, W, H float64
	Radius     float64
	Color      string
}

func (FillBackground) op()  {}
func (FillText) op()        {}
func (FillRoundedRect) op() {}

// Engine computes draw ops for resolved records.
type Engine struct {
	measurer Measurer
}

// NewEngine creates a layout engine backed by the given measurer.
func NewEngine(m Measurer) *Engine {
	return &Engine{measurer: m}
}

// Compute returns the ordered draw ops for one resolved record.
func (e *Engine) Compute(rec resolve.Record) []Op {
	ops := []Op{e.background(rec)}

	w := float64(rec.Dimensions.Width)
	h := float64(rec.Dimensions.Height)

	switch rec.Variant.Normalize() {
	case template.VariantMinimal:
		ops = e.stackCenteredIn(ops, e.minimalBlocks(rec), rec.Style, h, w/2, 0)
	case template.VariantQuote:
		ops = e.quoteOps(ops, rec, w, h)
	case template.VariantSplitHorizontal:
		// Text occupies the left half; the right half is reserved for
		// imagery handled outside the op model.
		ops = e.stackCenteredIn(ops, e.heroBlocks(rec, w/2), rec.Style, h, w/4, 0)
	case template.VariantSplitVertical:
		// Text occupies the top half.
		ops = e.stackCenteredIn(ops, e.heroBlocks(rec, w), rec.Style, h/2, w/2, 0)
	case template.VariantProductShowcase:
		// Headline and CTA sit in the lower third, leaving room above
		// for the product image.
		ops = e.stackCenteredIn(ops, e.showcaseBlocks(rec), rec.Style, h/3, w/2, 2*h/3)
	default: // hero-text, text-only and unknown variants
		ops = e.stackCenteredIn(ops, e.heroBlocks(rec, w), rec.Style, h, w/2, 0)
	}

	return ops
}

// background picks the canvas fill: gradient, then background color, then
// the resolved primary color.
func (e *Engine) background(rec resolve.Record) Op {
	if g := rec.Content.Gradient; g != nil {
		return FillBackground{Gradient: g}
	}
	if c := rec.Content.BackgroundColor; c != "" {
		if hex, err := template.NormalizeColor(c); err == nil {
			return FillBackground{Color: hex}
		}
	}
	return FillBackground{Color: rec.Style.PrimaryColor}
}
