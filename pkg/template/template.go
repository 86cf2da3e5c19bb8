// Package template defines the data model for creative templates.
//
// A Template is the reusable visual definition for one creative: pixel
// dimensions, default content values, a style with layered defaults, and a
// layout variant selecting one of the built-in arrangements. Templates are
// loaded from JSON documents and validated up front so that downstream
// components (resolver, layout engine) never see a partially-defined value.
//
// # Layout Variants
//
// The variant set is closed. Unknown variants are not an error: they fall
// back to hero-text, which is the documented default arrangement.
//
// # Style Layering
//
// Every style field has a system default. A template document carries only
// the fields its author set; loading overlays those onto DefaultStyle so
// that at resolution time no style field is ever undefined.
package template

import (
	"encoding/json"
	"io"
	"os"

	"github.com/bannerforge/bannerforge/pkg/errors"
)

// Variant identifies one of the built-in layout arrangements.
type Variant string

// The closed set of layout variants.
const (
	VariantHeroText        Variant = "hero-text"
	VariantSplitHorizontal Variant = "split-horizontal"
	VariantSplitVertical   Variant = "split-vertical"
	VariantTextOnly        Variant = "text-only"
	VariantProductShowcase Variant = "product-showcase"
	VariantQuote           Variant = "quote"
	VariantMinimal         Variant = "minimal"
)

// knownVariants is the set of recognized layout variants.
var knownVariants = map[Variant]bool{
	VariantHeroText:        true,
	VariantSplitHorizontal: true,
	VariantSplitVertical:   true,
	VariantTextOnly:        true,
	VariantProductShowcase: true,
	VariantQuote:           true,
	VariantMinimal:         true,
}

// Known reports whether v is one of the recognized variants.
func (v Variant) Known() bool { return knownVariants[v] }

// Normalize returns v if recognized, otherwise VariantHeroText.
// Unknown variants are an intentional fallback, not an error.
func (v Variant) Normalize() Variant {
	if v.Known() {
		return v
	}
	return VariantHeroText
}

// Dimensions describes the pixel size of a creative.
// Immutable once chosen for a template instance.
type Dimensions struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Name     string `json:"name,omitempty"`
	Platform string `json:"platform,omitempty"`
}

// Validate checks that both dimensions are positive.
func (d Dimensions) Validate() error {
	if d.Width <= 0 || d.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidTemplate,
			"dimensions must be positive: %dx%d", d.Width, d.Height)
	}
	return nil
}

// Metadata carries descriptive information about a template.
type Metadata struct {
	Category string   `json:"category,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Version  string   `json:"version,omitempty"`
}

// Template is the reusable visual definition for one creative.
type Template struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Variant    Variant    `json:"variant"`
	Dimensions Dimensions `json:"dimensions"`
	Content    Content    `json:"content"`
	Style      Style      `json:"style"`
	Metadata   Metadata   `json:"metadata,omitempty"`
}

// Validate checks dimensions and style. An unknown variant is accepted
// (it normalizes to hero-text at layout time).
func (t *Template) Validate() error {
	if t.ID == "" {
		return errors.New(errors.ErrCodeInvalidTemplate, "template id is required")
	}
	if err := t.Dimensions.Validate(); err != nil {
		return err
	}
	return t.Style.Validate()
}

// document is the on-disk template format. Style fields are carried as an
// overlay so that absent fields keep their system defaults.
type document struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Variant    Variant        `json:"variant"`
	Dimensions Dimensions     `json:"dimensions"`
	Content    Content        `json:"content"`
	Style      StyleOverrides `json:"style"`
	Metadata   Metadata       `json:"metadata,omitempty"`
}

// Read decodes a template document from r, overlays its style onto the
// system defaults, and validates the result.
func Read(r io.Reader) (*Template, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTemplate, err, "decode template")
	}

	t := &Template{
		ID:         doc.ID,
		Name:       doc.Name,
		Variant:    doc.Variant,
		Dimensions: doc.Dimensions,
		Content:    doc.Content,
		Style:      doc.Style.Overlay(DefaultStyle()),
		Metadata:   doc.Metadata,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Load reads a template document from the file at path.
func Load(path string) (*Template, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTemplate, err, "open %s", path)
	}
	defer f.Close()
	return Read(f)
}
