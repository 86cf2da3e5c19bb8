package layout

import (
	"github.com/bannerforge/bannerforge/pkg/resolve"
	"github.com/bannerforge/bannerforge/pkg/template"
)

// blockKind distinguishes plain text blocks from the CTA pill.
type blockKind int

const (
	blockText blockKind = iota
	blockCTA
)

// block is one element of a vertical stack prior to positioning.
type block struct {
	kind       blockKind
	lines      []string
	font       string
	size       float64
	weight     template.Weight
	color      string
	lineHeight float64
	label      string // CTA label
}

// height returns the vertical extent of the block.
func (b block) height() float64 {
	if b.kind == blockCTA {
		return CTAHeight
	}
	return float64(len(b.lines)) * b.size * b.lineHeight
}

// textBlock wraps text into a block, or returns ok=false for empty text.
func (e *Engine) textBlock(text, font string, size float64, weight template.Weight, color string, lineHeight, wrapWidth float64) (block, bool) {
	lines := Wrap(text, wrapWidth, func(s string) float64 {
		return e.measurer.MeasureString(s, font, size, weight)
	})
	if len(lines) == 0 {
		return block{}, false
	}
	return block{
		kind:       blockText,
		lines:      lines,
		font:       font,
		size:       size,
		weight:     weight,
		color:      color,
		lineHeight: lineHeight,
	}, true
}

// heroBlocks builds the hero-text stack: headline, optional subheadline,
// optional CTA pill. availWidth is the horizontal space the stack may use.
func (e *Engine) heroBlocks(rec resolve.Record, availWidth float64) []block {
	s := rec.Style
	wrapWidth := availWidth - 2*float64(s.Padding)

	var blocks []block
	if b, ok := e.textBlock(rec.Content.Headline, s.HeadlineFont, float64(s.HeadlineSize),
		s.HeadlineWeight, s.TextColor, headlineLineHeight, wrapWidth); ok {
		blocks = append(blocks, b)
	}
	if b, ok := e.textBlock(rec.Content.Subheadline, s.BodyFont, float64(s.BodySize),
		s.BodyWeight, s.TextColor, bodyLineHeight, wrapWidth); ok {
		blocks = append(blocks, b)
	}
	if rec.Content.CTA != "" {
		blocks = append(blocks, block{
			kind:   blockCTA,
			label:  rec.Content.CTA,
			font:   s.BodyFont,
			size:   float64(s.BodySize),
			weight: s.BodyWeight,
		})
	}
	return blocks
}

// showcaseBlocks builds the product-showcase stack: headline plus CTA.
func (e *Engine) showcaseBlocks(rec resolve.Record) []block {
	s := rec.Style
	wrapWidth := float64(rec.Dimensions.Width) - 2*float64(s.Padding)

	var blocks []block
	if b, ok := e.textBlock(rec.Content.Headline, s.HeadlineFont, float64(s.HeadlineSize),
		s.HeadlineWeight, s.TextColor, headlineLineHeight, wrapWidth); ok {
		blocks = append(blocks, b)
	}
	if rec.Content.CTA != "" {
		blocks = append(blocks, block{
			kind:   blockCTA,
			label:  rec.Content.CTA,
			font:   s.BodyFont,
			size:   float64(s.BodySize),
			weight: s.BodyWeight,
		})
	}
	return blocks
}

// minimalBlocks builds the minimal stack: a single centered headline.
func (e *Engine) minimalBlocks(rec resolve.Record) []block {
	s := rec.Style
	wrapWidth := float64(rec.Dimensions.Width) - 2*float64(s.Padding)

	var blocks []block
	if b, ok := e.textBlock(rec.Content.Headline, s.HeadlineFont, float64(s.HeadlineSize),
		s.HeadlineWeight, s.TextColor, headlineLineHeight, wrapWidth); ok {
		blocks = append(blocks, b)
	}
	return blocks
}

// lighterWeight steps one weight down the enumerated set, clamping at the
// lightest value. Used for the author title line in the quote variant.
func lighterWeight(w template.Weight) template.Weight {
	if lighter := w - 100; lighter.Valid() {
		return lighter
	}
	return w
}

// quoteOps lays out the quote variant: an oversized opening-quote glyph
// offset to the upper-left of center, the headline as quoted text at a
// reduced size, then author name and title with decreasing weight and size.
func (e *Engine) quoteOps(ops []Op, rec resolve.Record, w, h float64) []Op {
	s := rec.Style
	wrapWidth := w - 2*float64(s.Padding)
	quoteSize := float64(s.HeadlineSize) * quoteTextScale

	var blocks []block
	if b, ok := e.textBlock(rec.Content.Headline, s.HeadlineFont, quoteSize,
		s.HeadlineWeight, s.TextColor, headlineLineHeight, wrapWidth); ok {
		blocks = append(blocks, b)
	}
	if b, ok := e.textBlock(rec.Content.AuthorName, s.BodyFont, float64(s.BodySize),
		s.BodyWeight, s.TextColor, authorLineHeight, wrapWidth); ok {
		blocks = append(blocks, b)
	}
	if b, ok := e.textBlock(rec.Content.AuthorTitle, s.BodyFont, float64(s.BodySize)*0.85,
		lighterWeight(s.BodyWeight), s.TextColor, authorLineHeight, wrapWidth); ok {
		blocks = append(blocks, b)
	}

	startY := stackStart(blocks, float64(s.Gap), h, 0)

	// The glyph hangs above and to the left of the quoted text. It is not
	// part of the stack so it never shifts the vertical centering.
	glyphSize := float64(s.HeadlineSize) * quoteGlyphScale
	ops = append(ops, FillText{
		Lines:      []string{"“"},
		X:          w/2 - glyphSize,
		Y:          startY - glyphSize*0.6,
		Font:       s.HeadlineFont,
		Size:       glyphSize,
		Weight:     s.HeadlineWeight,
		Color:      s.TextColor,
		LineHeight: 1.0,
	})

	return e.emitStack(ops, blocks, rec.Style, w/2, startY)
}

// stackStart computes the y coordinate where a stack begins so that it is
// centered within a region of height regionH starting at offsetY.
func stackStart(blocks []block, gap, regionH, offsetY float64) float64 {
	var total float64
	for i, b := range blocks {
		if i > 0 {
			total += gap
		}
		total += b.height()
	}
	return offsetY + (regionH-total)/2
}

// stackCenteredIn centers blocks vertically inside the region
// [offsetY, offsetY+regionH), emitting ops top to bottom with the style's
// inter-element gap.
func (e *Engine) stackCenteredIn(ops []Op, blocks []block, s template.Style, regionH, centerX, offsetY float64) []Op {
	if len(blocks) == 0 {
		return ops
	}
	startY := stackStart(blocks, float64(s.Gap), regionH, offsetY)
	return e.emitStack(ops, blocks, s, centerX, startY)
}

// emitStack converts positioned blocks into ops, advancing y by each
// block's height plus the gap. CTA pills get a rounded rect plus a
// vertically-centered label; the radius clamps to half the pill height so
// large corner radii degrade to a capsule instead of self-intersecting.
func (e *Engine) emitStack(ops []Op, blocks []block, s template.Style, centerX, startY float64) []Op {
	gap := float64(s.Gap)
	y := startY
	for i, b := range blocks {
		if i > 0 {
			y += gap
		}
		switch b.kind {
		case blockCTA:
			radius := float64(s.CornerRadius)
			if radius > CTAHeight/2 {
				radius = CTAHeight / 2
			}
			ops = append(ops, FillRoundedRect{
				X:      centerX - CTAWidth/2,
				Y:      y,
				W:      CTAWidth,
				H:      CTAHeight,
				Radius: radius,
				Color:  s.CTAColor,
			})
			ops = append(ops, FillText{
				Lines:      []string{b.label},
				X:          centerX,
				Y:          y + (CTAHeight-b.size)/2,
				Font:       b.font,
				Size:       b.size,
				Weight:     b.weight,
				Color:      s.CTATextColor,
				LineHeight: 1.0,
			})
		default:
			ops = append(ops, FillText{
				Lines:      b.lines,
				X:          centerX,
				Y:          y,
				Font:       b.font,
				Size:       b.size,
				Weight:     b.weight,
				Color:      b.color,
				LineHeight: b.lineHeight,
			})
		}
		y += b.height()
	}
	return ops
}
