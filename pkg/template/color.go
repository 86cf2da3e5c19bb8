package template

import (
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/bannerforge/bannerforge/pkg/errors"
)

// namedColors resolves a small set of CSS color names to hex. Template
// documents may use either form; everything normalizes to hex before
// rendering.
var namedColors = map[string]string{
	"black":   "#000000",
	"white":   "#ffffff",
	"red":     "#ff0000",
	"green":   "#008000",
	"blue":    "#0000ff",
	"yellow":  "#ffff00",
	"orange":  "#ffa500",
	"purple":  "#800080",
	"pink":    "#ffc0cb",
	"gray":    "#808080",
	"grey":    "#808080",
	"teal":    "#008080",
	"navy":    "#000080",
	"maroon":  "#800000",
	"olive":   "#808000",
	"silver":  "#c0c0c0",
	"gold":    "#ffd700",
	"indigo":  "#4b0082",
	"violet":  "#ee82ee",
	"coral":   "#ff7f50",
	"salmon":  "#fa8072",
	"crimson": "#dc143c",
}

// ParseColor parses a hex color ("#rgb" or "#rrggbb") or a recognized
// color name into a colorful.Color.
func ParseColor(s string) (colorful.Color, error) {
	raw := strings.TrimSpace(strings.ToLower(s))
	if raw == "" {
		return colorful.Color{}, errors.New(errors.ErrCodeInvalidColor, "empty color value")
	}

	if hex, ok := namedColors[raw]; ok {
		raw = hex
	}

	// colorful.Hex only accepts the 6-digit form; expand shorthand first.
	if len(raw) == 4 && raw[0] == '#' {
		raw = "#" + strings.Repeat(string(raw[1]), 2) +
			strings.Repeat(string(raw[2]), 2) +
			strings.Repeat(string(raw[3]), 2)
	}

	c, err := colorful.Hex(raw)
	if err != nil {
		return colorful.Color{}, errors.Wrap(errors.ErrCodeInvalidColor, err, "parse color %q", s)
	}
	return c, nil
}

// ValidateColor reports whether s is a valid hex or named color.
func ValidateColor(s string) error {
	_, err := ParseColor(s)
	return err
}

// NormalizeColor returns the canonical "#rrggbb" form of s.
func NormalizeColor(s string) (string, error) {
	c, err := ParseColor(s)
	if err != nil {
		return "", err
	}
	return c.Hex(), nil
}
