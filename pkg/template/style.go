package template

import (
	"github.com/bannerforge/bannerforge/pkg/errors"
)

// Weight is a font weight from the enumerated 300-900 set.
type Weight int

// The allowed font weights.
const (
	WeightLight     Weight = 300
	WeightRegular   Weight = 400
	WeightMedium    Weight = 500
	WeightSemiBold  Weight = 600
	WeightBold      Weight = 700
	WeightExtraBold Weight = 800
	WeightBlack     Weight = 900
)

// validWeights is the closed set of accepted weights.
var validWeights = map[Weight]bool{
	WeightLight:     true,
	WeightRegular:   true,
	WeightMedium:    true,
	WeightSemiBold:  true,
	WeightBold:      true,
	WeightExtraBold: true,
	WeightBlack:     true,
}

// Valid reports whether w is one of the enumerated weights.
func (w Weight) Valid() bool { return validWeights[w] }

// Style holds the visual parameters for rendering a creative. Every field
// has a system default; a fully-populated Style is produced by overlaying
// user-specified fields onto DefaultStyle, so no field is ever undefined
// at resolution time.
type Style struct {
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	TextColor      string `json:"textColor"`
	CTAColor       string `json:"ctaColor"`
	CTATextColor   string `json:"ctaTextColor"`

	HeadlineFont string `json:"headlineFont"`
	BodyFont     string `json:"bodyFont"`

	HeadlineSize   int    `json:"headlineSize"`
	BodySize       int    `json:"bodySize"`
	HeadlineWeight Weight `json:"headlineWeight"`
	BodyWeight     Weight `json:"bodyWeight"`

	Padding      int `json:"padding"`
	Gap          int `json:"gap"`
	CornerRadius int `json:"cornerRadius"`

	ShadowEnabled bool   `json:"shadowEnabled"`
	ShadowColor   string `json:"shadowColor"`
	ShadowBlur    int    `json:"shadowBlur"`
}

// DefaultStyle returns the system default style. These values back every
// template: user documents only override the fields they set.
func DefaultStyle() Style {
	return Style{
		PrimaryColor:   "#4f46e5",
		SecondaryColor: "#818cf8",
		TextColor:      "#ffffff",
		CTAColor:       "#f59e0b",
		CTATextColor:   "#1f2937",

		HeadlineFont: "DejaVuSans-Bold",
		BodyFont:     "DejaVuSans",

		HeadlineSize:   48,
		BodySize:       24,
		HeadlineWeight: WeightBold,
		BodyWeight:     WeightRegular,

		Padding:      40,
		Gap:          24,
		CornerRadius: 12,

		ShadowEnabled: false,
		ShadowColor:   "#000000",
		ShadowBlur:    8,
	}
}

// Validate checks colors, sizes and weights. Padding, gap, corner radius
// and shadow blur must be non-negative; point sizes must be positive.
func (s Style) Validate() error {
	for name, c := range map[string]string{
		"primaryColor":   s.PrimaryColor,
		"secondaryColor": s.SecondaryColor,
		"textColor":      s.TextColor,
		"ctaColor":       s.CTAColor,
		"ctaTextColor":   s.CTATextColor,
		"shadowColor":    s.ShadowColor,
	} {
		if err := ValidateColor(c); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidColor, err, "style field %s", name)
		}
	}

	if s.HeadlineSize <= 0 || s.BodySize <= 0 {
		return errors.New(errors.ErrCodeInvalidTemplate,
			"font sizes must be positive: headline=%d body=%d", s.HeadlineSize, s.BodySize)
	}
	if !s.HeadlineWeight.Valid() {
		return errors.New(errors.ErrCodeInvalidTemplate, "invalid headline weight: %d", s.HeadlineWeight)
	}
	if !s.BodyWeight.Valid() {
		return errors.New(errors.ErrCodeInvalidTemplate, "invalid body weight: %d", s.BodyWeight)
	}
	if s.Padding < 0 || s.Gap < 0 || s.CornerRadius < 0 || s.ShadowBlur < 0 {
		return errors.New(errors.ErrCodeInvalidTemplate,
			"padding, gap, corner radius and shadow blur must be non-negative")
	}
	return nil
}

// StyleOverrides carries the style fields a template document actually
// set. Pointer fields distinguish "absent" from zero values so that an
// explicit padding of 0 survives the overlay.
type StyleOverrides struct {
	PrimaryColor   *string `json:"primaryColor,omitempty"`
	SecondaryColor *string `json:"secondaryColor,omitempty"`
	TextColor      *string `json:"textColor,omitempty"`
	CTAColor       *string `json:"ctaColor,omitempty"`
	CTATextColor   *string `json:"ctaTextColor,omitempty"`

	HeadlineFont *string `json:"headlineFont,omitempty"`
	BodyFont     *string `json:"bodyFont,omitempty"`

	HeadlineSize   *int    `json:"headlineSize,omitempty"`
	BodySize       *int    `json:"bodySize,omitempty"`
	HeadlineWeight *Weight `json:"headlineWeight,omitempty"`
	BodyWeight     *Weight `json:"bodyWeight,omitempty"`

	Padding      *int `json:"padding,omitempty"`
	Gap          *int `json:"gap,omitempty"`
	CornerRadius *int `json:"cornerRadius,omitempty"`

	ShadowEnabled *bool   `json:"shadowEnabled,omitempty"`
	ShadowColor   *string `json:"shadowColor,omitempty"`
	ShadowBlur    *int    `json:"shadowBlur,omitempty"`
}

// Overlay applies the set fields of o onto base and returns the result.
func (o StyleOverrides) Overlay(base Style) Style {
	s := base
	if o.PrimaryColor != nil {
		s.PrimaryColor = *o.PrimaryColor
	}
	if o.SecondaryColor != nil {
		s.SecondaryColor = *o.SecondaryColor
	}
	if o.TextColor != nil {
		s.TextColor = *o.TextColor
	}
	if o.CTAColor != nil {
		s.CTAColor = *o.CTAColor
	}
	if o.CTATextColor != nil {
		s.CTATextColor = *o.CTATextColor
	}
	if o.HeadlineFont != nil {
		s.HeadlineFont = *o.HeadlineFont
	}
	if o.BodyFont != nil {
		s.BodyFont = *o.BodyFont
	}
	if o.HeadlineSize != nil {
		s.HeadlineSize = *o.HeadlineSize
	}
	if o.BodySize != nil {
		s.BodySize = *o.BodySize
	}
	if o.HeadlineWeight != nil {
		s.HeadlineWeight = *o.HeadlineWeight
	}
	if o.BodyWeight != nil {
		s.BodyWeight = *o.BodyWeight
	}
	if o.Padding != nil {
		s.Padding = *o.Padding
	}
	if o.Gap != nil {
		s.Gap = *o.Gap
	}
	if o.CornerRadius != nil {
		s.CornerRadius = *o.CornerRadius
	}
	if o.ShadowEnabled != nil {
		s.ShadowEnabled = *o.ShadowEnabled
	}
	if o.ShadowColor != nil {
		s.ShadowColor = *o.ShadowColor
	}
	if o.ShadowBlur != nil {
		s.ShadowBlur = *o.ShadowBlur
	}
	return s
}
