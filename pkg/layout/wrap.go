package layout

import (
	"strings"

	"github.com/bannerforge/bannerforge/pkg/template"
)

// Wrap greedily breaks text into lines whose measured width stays within
// maxWidth. Words accumulate onto the current line while the candidate
// still fits; a word that would overflow flushes the line and starts a new
// one. A single word wider than maxWidth forms its own unbroken line: the
// wrapper never splits inside a word.
//
// Non-empty text always yields at least one line. Empty or all-whitespace
// text yields nil.
func Wrap(text string, maxWidth float64, measure func(string) float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if measure(candidate) <= maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}

// charWidthRatio approximates the average glyph advance as a fraction of
// the font size. Used only by RatioMeasurer.
const charWidthRatio = 0.55

// RatioMeasurer estimates text width as size × 0.55 × rune count. It needs
// no font files, which makes it useful for tests and for environments
// without any usable system font. Production paths should prefer the
// raster backend's measurer so wrapping matches actual glyph metrics.
type RatioMeasurer struct{}

// MeasureString returns the estimated pixel width of s.
func (RatioMeasurer) MeasureString(s string, font string, size float64, weight template.Weight) float64 {
	return float64(len([]rune(s))) * size * charWidthRatio
}

// Ensure RatioMeasurer implements Measurer.
var _ Measurer = RatioMeasurer{}
