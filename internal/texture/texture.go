// Package texture loads raster images and synthesizes pattern and alignment
// textures, and normalizes sampler settings for a projection mode.
package texture

import (
	"image"

	"github.com/Faultbox/wrapview/pkg/math"
)

// Wrap is the sampler behavior outside [0, 1] on one axis.
type Wrap int

const (
	ClampToEdge Wrap = iota
	Repeat
)

func (w Wrap) String() string {
	if w == Repeat {
		return "repeat"
	}
	return "clamp"
}

// ColorSpace tells the renderer how to interpret stored texel values.
type ColorSpace int

const (
	// SRGB is the perceptual encoding used for everything a person looks at.
	SRGB ColorSpace = iota
	Linear
)

func (c ColorSpace) String() string {
	if c == Linear {
		return "linear"
	}
	return "srgb"
}

// Texture is a 2D raster with sampler settings.
// Rows are stored top-down, matching the projector's V direction, so FlipY
// stays false.
type Texture struct {
	Name string
	// Source is the asset path, or "pattern:<kind>" / "grid" for generated textures.
	Source string
	Image  *image.RGBA

	WrapS      Wrap
	WrapT      Wrap
	FlipY      bool
	ColorSpace ColorSpace
	Repeat     math.Vec2

	// Version increments whenever sampler settings change.
	Version uint64
}

// New wraps an RGBA image in a texture with display defaults.
func New(name, source string, img *image.RGBA) *Texture {
	return &Texture{
		Name:       name,
		Source:     source,
		Image:      img,
		WrapS:      ClampToEdge,
		WrapT:      ClampToEdge,
		ColorSpace: SRGB,
		Repeat:     math.Vec2{X: 1, Y: 1},
	}
}

// Width returns the raster width in pixels.
func (t *Texture) Width() int {
	if t.Image == nil {
		return 0
	}
	return t.Image.Bounds().Dx()
}

// Height returns the raster height in pixels.
func (t *Texture) Height() int {
	if t.Image == nil {
		return 0
	}
	return t.Image.Bounds().Dy()
}
