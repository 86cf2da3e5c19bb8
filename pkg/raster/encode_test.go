package raster

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatPNG, false},
		{"png", FormatPNG, false},
		{"jpeg", FormatJPEG, false},
		{"jpg", FormatJPEG, false},
		{"webp", "", true},
		{"PNG", "", true}, // case-sensitive
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatExt(t *testing.T) {
	if FormatPNG.Ext() != "png" || FormatJPEG.Ext() != "jpeg" {
		t.Error("unexpected extensions")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	img := imaging.New(8, 8, color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff})

	for _, f := range []Format{FormatPNG, FormatJPEG} {
		var buf bytes.Buffer
		if err := Encode(&buf, img, f); err != nil {
			t.Fatalf("%s: Encode: %v", f, err)
		}
		decoded, _, err := image.Decode(&buf)
		if err != nil {
			t.Fatalf("%s: decode: %v", f, err)
		}
		if decoded.Bounds().Dx() != 8 || decoded.Bounds().Dy() != 8 {
			t.Errorf("%s: bounds = %v", f, decoded.Bounds())
		}
	}
}
