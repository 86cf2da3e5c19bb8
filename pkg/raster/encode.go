package raster

import (
	"image"
	"io"

	"github.com/disintegration/imaging"

	"github.com/bannerforge/bannerforge/pkg/errors"
)

// Format is an output image encoding.
type Format string

// Supported output formats.
const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// DefaultFormat is used when a batch request does not specify a format.
const DefaultFormat = FormatPNG

// ParseFormat validates and normalizes a format string. "jpg" is accepted
// as an alias for "jpeg"; the empty string means the default.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", string(FormatPNG):
		return FormatPNG, nil
	case string(FormatJPEG), "jpg":
		return FormatJPEG, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be png or jpeg)", s)
}

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string {
	return string(f)
}

// Encode writes img to w in the given format. JPEG output uses quality 90.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatJPEG:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(90))
	default:
		return imaging.Encode(w, img, imaging.PNG)
	}
}
