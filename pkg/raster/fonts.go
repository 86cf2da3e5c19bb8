package raster

import (
	"fmt"
	"os"
	"sync"

	"github.com/flopp/go-findfont"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/bannerforge/bannerforge/pkg/errors"
	"github.com/bannerforge/bannerforge/pkg/template"
)

// fallbackFonts are tried in order when a requested family cannot be
// located on the system. DejaVu ships with most Linux distributions;
// Liberation and Arial cover the rest.
var fallbackFonts = []string{
	"DejaVuSans.ttf",
	"LiberationSans-Regular.ttf",
	"Arial.ttf",
	"FreeSans.ttf",
}

// boldFallbackFonts are tried for weights of 600 and above.
var boldFallbackFonts = []string{
	"DejaVuSans-Bold.ttf",
	"LiberationSans-Bold.ttf",
	"Arial-Bold.ttf",
	"FreeSansBold.ttf",
}

// faceKey identifies a cached font face.
type faceKey struct {
	family string
	size   float64
	weight template.Weight
}

// FontLibrary locates system fonts by family name and caches parsed faces.
// Faces are cached per (family, size, weight); the underlying truetype
// fonts are cached per resolved file path. Safe for concurrent use.
type FontLibrary struct {
	mu    sync.Mutex
	fonts map[string]*truetype.Font
	faces map[faceKey]font.Face
}

// NewFontLibrary creates an empty font library.
func NewFontLibrary() *FontLibrary {
	return &FontLibrary{
		fonts: make(map[string]*truetype.Font),
		faces: make(map[faceKey]font.Face),
	}
}

// Face returns a font.Face for the family at the given size and weight.
// The family is looked up as a file name ("DejaVuSans" finds
// DejaVuSans.ttf); weights of 600+ prefer a -Bold variant. When the family
// cannot be found the platform fallback list is consulted before failing.
func (l *FontLibrary) Face(family string, size float64, weight template.Weight) (font.Face, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := faceKey{family: family, size: size, weight: weight}
	if f, ok := l.faces[key]; ok {
		return f, nil
	}

	ttf, err := l.loadLocked(family, weight)
	if err != nil {
		return nil, err
	}

	face := truetype.NewFace(ttf, &truetype.Options{Size: size})
	l.faces[key] = face
	return face, nil
}

// loadLocked resolves and parses the truetype font for family/weight.
// Caller must hold l.mu.
func (l *FontLibrary) loadLocked(family string, weight template.Weight) (*truetype.Font, error) {
	candidates := []string{family + ".ttf"}
	if weight >= template.WeightSemiBold {
		candidates = append([]string{family + "-Bold.ttf"}, candidates...)
		candidates = append(candidates, boldFallbackFonts...)
	}
	candidates = append(candidates, fallbackFonts...)

	var lastErr error
	for _, name := range candidates {
		if f, ok := l.fonts[name]; ok {
			return f, nil
		}
		path, err := findfont.Find(name)
		if err != nil {
			lastErr = err
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			lastErr = err
			continue
		}
		ttf, err := truetype.Parse(data)
		if err != nil {
			lastErr = fmt.Errorf("parse %s: %w", path, err)
			continue
		}
		l.fonts[name] = ttf
		return ttf, nil
	}

	return nil, errors.Wrap(errors.ErrCodeRenderFailed, lastErr, "no usable font for family %q", family)
}
