// Package mapping connects template content fields to columns of an
// uploaded tabular data source.
//
// A ColumnMapping assigns at most one source column to each template
// field. Fields without an assignment keep their template defaults during
// resolution. AutoDetect builds an initial mapping from column headers by
// normalized name matching, which the user can then adjust before running
// a batch.
package mapping

import (
	"strings"

	"github.com/bannerforge/bannerforge/pkg/errors"
	"github.com/bannerforge/bannerforge/pkg/template"
)

// ColumnMapping maps template field keys to source column names. A missing
// entry means the field is unmapped and resolves to its template default.
type ColumnMapping map[template.Field]string

// Column returns the column assigned to f and whether one is assigned.
func (m ColumnMapping) Column(f template.Field) (string, bool) {
	col, ok := m[f]
	return col, ok && col != ""
}

// normalize lowercases s and strips underscores, hyphens and whitespace so
// that "Head Line", "head_line" and "HeadLine" all compare equal.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch r {
		case '_', '-', ' ', '\t':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Parse converts a user-supplied field→column map into a ColumnMapping,
// rejecting unknown field names. Empty column values are dropped.
func Parse(raw map[string]string) (ColumnMapping, error) {
	known := make(map[template.Field]bool)
	for _, f := range template.Fields() {
		known[f] = true
	}

	m := make(ColumnMapping)
	for field, col := range raw {
		f := template.Field(field)
		if !known[f] {
			return nil, errors.New(errors.ErrCodeInvalidMapping, "unknown template field %q", field)
		}
		if col == "" {
			continue
		}
		m[f] = col
	}
	return m, nil
}

// AutoDetect builds a mapping from column headers to template fields.
//
// Matching runs per field, in the stable field order, against the headers
// in their original order. An exact normalized match wins; otherwise the
// first header where either normalized name contains the other is used.
// Each column may back multiple fields, but in practice headers are
// distinct enough that this does not occur.
func AutoDetect(headers []string) ColumnMapping {
	m := make(ColumnMapping)

	norm := make([]string, len(headers))
	for i, h := range headers {
		norm[i] = normalize(h)
	}

	for _, f := range template.Fields() {
		key := normalize(string(f))

		found := ""
		for i, n := range norm {
			if n == key {
				found = headers[i]
				break
			}
		}
		if found == "" {
			for i, n := range norm {
				if n == "" {
					continue
				}
				if strings.Contains(n, key) || strings.Contains(key, n) {
					found = headers[i]
					break
				}
			}
		}
		if found != "" {
			m[f] = found
		}
	}

	return m
}
