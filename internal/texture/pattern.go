package texture

import (
	"fmt"
	"image"
	"image/color"
	"strings"
)

// PatternKind names a procedural pattern.
type PatternKind string

const (
	PatternStripes PatternKind = "stripes"
	PatternChecker PatternKind = "checker"
	PatternDots    PatternKind = "dots"
)

// PatternKinds lists every pattern the provider can draw.
var PatternKinds = []PatternKind{PatternStripes, PatternChecker, PatternDots}

// ParsePatternKind validates a pattern name.
func ParsePatternKind(s string) (PatternKind, error) {
	k := PatternKind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case PatternStripes, PatternChecker, PatternDots:
		return k, nil
	case "checkerboard":
		return PatternChecker, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownPattern)
}

// Pattern palette.
var (
	patternInk   = color.RGBA{R: 0x1f, G: 0x3a, B: 0x93, A: 0xff}
	patternPaper = color.RGBA{R: 0xf4, G: 0xf1, B: 0xe8, A: 0xff}
)

const (
	patternBands = 16 // stripes across the width
	patternCells = 8  // checker cells per side
	patternDots  = 8  // dots per side
)

// DrawPattern renders kind into a size x size raster.
func DrawPattern(kind PatternKind, size int) (*image.RGBA, error) {
	if size < 1 {
		size = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	var ink func(x, y int) bool
	switch kind {
	case PatternStripes:
		band := max(size/patternBands, 1)
		ink = func(x, _ int) bool { return (x/band)%2 == 0 }
	case PatternChecker:
		cell := max(size/patternCells, 1)
		ink = func(x, y int) bool { return (x/cell+y/cell)%2 == 0 }
	case PatternDots:
		pitch := max(size/patternDots, 1)
		radius := float64(pitch) * 0.3
		r2 := radius * radius
		ink = func(x, y int) bool {
			// distance from the center of the lattice cell
			dx := float64(x%pitch) + 0.5 - float64(pitch)/2
			dy := float64(y%pitch) + 0.5 - float64(pitch)/2
			return dx*dx+dy*dy <= r2
		}
	default:
		return nil, fmt.Errorf("%q: %w", kind, ErrUnknownPattern)
	}

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := patternPaper
			if ink(x, y) {
				c = patternInk
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img, nil
}
