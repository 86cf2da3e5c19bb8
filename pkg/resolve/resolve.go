// Package resolve merges a data row with template defaults into the
// fully-defaulted record used to render one asset.
//
// Resolution is a pure function: given identical template, mapping and row
// it always produces an identical record, with no side effects. Missing
// columns and empty cells are never errors; they mean "use the template
// default" for that field.
package resolve

import (
	"github.com/bannerforge/bannerforge/pkg/mapping"
	"github.com/bannerforge/bannerforge/pkg/rows"
	"github.com/bannerforge/bannerforge/pkg/template"
)

// Record is the fully-resolved content and style for one asset. Every
// style field is defined; content fields may be empty, in which case the
// layout engine omits the corresponding block.
type Record struct {
	Content    template.Content
	Style      template.Style
	Dimensions template.Dimensions
	Variant    template.Variant
}

// Resolve produces the Record for one row. For each content field the row
// value wins when the mapping assigns a column and the cell is non-empty;
// otherwise the template's content default applies. The primaryColor
// content field, when set, overrides the style's primary color so that
// per-row brand colors flow into backgrounds and CTA fallbacks.
func Resolve(tpl *template.Template, m mapping.ColumnMapping, row rows.Row) Record {
	rec := Record{
		Content:    tpl.Content,
		Style:      tpl.Style,
		Dimensions: tpl.Dimensions,
		Variant:    tpl.Variant.Normalize(),
	}

	for _, f := range template.Fields() {
		col, ok := m.Column(f)
		if !ok {
			continue
		}
		if v := row.Value(col); v != "" {
			rec.Content.Set(f, v)
		}
	}

	// Style overrides carried as content fields.
	if c := rec.Content.PrimaryColor; c != "" {
		if hex, err := template.NormalizeColor(c); err == nil {
			rec.Style.PrimaryColor = hex
		}
	}

	return rec
}
