package template

// Field names one semantic content slot of a template. The set is closed:
// resolver and layout engine only ever touch these enumerated fields, which
// rules out undefined-field lookups by construction.
type Field string

// The recognized content fields.
const (
	FieldHeadline        Field = "headline"
	FieldSubheadline     Field = "subheadline"
	FieldBody            Field = "body"
	FieldCTA             Field = "cta"
	FieldBackgroundImage Field = "backgroundImage"
	FieldProductImage    Field = "productImage"
	FieldLogo            Field = "logo"
	FieldBackgroundColor Field = "backgroundColor"
	FieldPrimaryColor    Field = "primaryColor"
	FieldAuthorName      Field = "authorName"
	FieldAuthorTitle     Field = "authorTitle"
	FieldUniqueID        Field = "uniqueId"
)

// fieldOrder lists all recognized fields in a stable order. Iteration over
// a map would not be deterministic; mapping auto-detection and resolution
// both depend on this ordering.
var fieldOrder = []Field{
	FieldHeadline,
	FieldSubheadline,
	FieldBody,
	FieldCTA,
	FieldBackgroundImage,
	FieldProductImage,
	FieldLogo,
	FieldBackgroundColor,
	FieldPrimaryColor,
	FieldAuthorName,
	FieldAuthorTitle,
	FieldUniqueID,
}

// Fields returns the recognized content fields in stable order.
func Fields() []Field {
	out := make([]Field, len(fieldOrder))
	copy(out, fieldOrder)
	return out
}

// Gradient is an optional two-stop linear gradient for the background.
type Gradient struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Content maps semantic fields to default values. Unset fields resolve to
// the empty string and are omitted from layout.
type Content struct {
	Headline        string `json:"headline,omitempty"`
	Subheadline     string `json:"subheadline,omitempty"`
	Body            string `json:"body,omitempty"`
	CTA             string `json:"cta,omitempty"`
	BackgroundImage string `json:"backgroundImage,omitempty"`
	ProductImage    string `json:"productImage,omitempty"`
	Logo            string `json:"logo,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	PrimaryColor    string `json:"primaryColor,omitempty"`
	AuthorName      string `json:"authorName,omitempty"`
	AuthorTitle     string `json:"authorTitle,omitempty"`
	UniqueID        string `json:"uniqueId,omitempty"`

	Gradient *Gradient `json:"gradient,omitempty"`
}

// Get returns the value of field f, or the empty string for unset or
// unrecognized fields.
func (c Content) Get(f Field) string {
	switch f {
	case FieldHeadline:
		return c.Headline
	case FieldSubheadline:
		return c.Subheadline
	case FieldBody:
		return c.Body
	case FieldCTA:
		return c.CTA
	case FieldBackgroundImage:
		return c.BackgroundImage
	case FieldProductImage:
		return c.ProductImage
	case FieldLogo:
		return c.Logo
	case FieldBackgroundColor:
		return c.BackgroundColor
	case FieldPrimaryColor:
		return c.PrimaryColor
	case FieldAuthorName:
		return c.AuthorName
	case FieldAuthorTitle:
		return c.AuthorTitle
	case FieldUniqueID:
		return c.UniqueID
	}
	return ""
}

// Set assigns value to field f. Unrecognized fields are ignored.
func (c *Content) Set(f Field, value string) {
	switch f {
	case FieldHeadline:
		c.Headline = value
	case FieldSubheadline:
		c.Subheadline = value
	case FieldBody:
		c.Body = value
	case FieldCTA:
		c.CTA = value
	case FieldBackgroundImage:
		c.BackgroundImage = value
	case FieldProductImage:
		c.ProductImage = value
	case FieldLogo:
		c.Logo = value
	case FieldBackgroundColor:
		c.BackgroundColor = value
	case FieldPrimaryColor:
		c.PrimaryColor = value
	case FieldAuthorName:
		c.AuthorName = value
	case FieldAuthorTitle:
		c.AuthorTitle = value
	case FieldUniqueID:
		c.UniqueID = value
	}
}
