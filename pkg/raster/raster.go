// Package raster executes draw primitives against a 2D pixel surface.
//
// The Backend interface is deliberately narrow so the layout engine's
// callers can swap implementations (production gg backend, test fakes).
// A backend also exposes its text measurer: wrapping decisions in the
// layout engine must use the same metrics the rasterizer draws with, and
// the same measurer must serve both preview and full render.
//
// Any raster error aborts only the single asset being produced, never the
// batch; the orchestrator captures it on the asset.
package raster

import (
	"image"

	"github.com/bannerforge/bannerforge/pkg/layout"
)

// Backend rasterizes an ordered op list into an image of the given size.
type Backend interface {
	// Render executes ops against a width×height surface.
	Render(ops []layout.Op, width, height int) (image.Image, error)

	// Measurer returns the text measurer matching this backend's fonts.
	Measurer() layout.Measurer
}
