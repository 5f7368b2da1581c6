package texture

import (
	"fmt"
	gomath "math"
	"strings"

	"github.com/Faultbox/wrapview/pkg/math"
	"github.com/Faultbox/wrapview/pkg/uvproj"
)

// CoverPolicy decides how often an image appears on a surface.
type CoverPolicy int

const (
	// CoverWrap stretches one copy of the image over the whole surface.
	CoverWrap CoverPolicy = iota
	// CoverTile repeats the image at a density proportional to object size.
	CoverTile
)

func (p CoverPolicy) String() string {
	if p == CoverTile {
		return "tile"
	}
	return "wrap"
}

// ParseCoverPolicy converts a configuration name to a CoverPolicy.
func ParseCoverPolicy(s string) (CoverPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wrap", "":
		return CoverWrap, nil
	case "tile":
		return CoverTile, nil
	}
	return 0, fmt.Errorf("unknown cover policy %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (p CoverPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *CoverPolicy) UnmarshalText(text []byte) error {
	parsed, err := ParseCoverPolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// DefaultTileDensity is the repeat count per world unit under CoverTile.
const DefaultTileDensity float32 = 2

// Cover configures how Normalize computes the repeat factor.
type Cover struct {
	Policy      CoverPolicy
	TileDensity float32
}

// Normalize prepares tex for a product using mode. Flip is disabled and the
// color space is sRGB for every texture. Cylindrical wraps horizontally and
// clamps vertically; planar clamps both axes. Under CoverTile both axes
// repeat with a count derived from objectSize.
func Normalize(tex *Texture, mode uvproj.Mode, cover Cover, objectSize math.Vec3) {
	tex.FlipY = false
	tex.ColorSpace = SRGB

	switch mode {
	case uvproj.Cylindrical:
		tex.WrapS, tex.WrapT = Repeat, ClampToEdge
	default:
		tex.WrapS, tex.WrapT = ClampToEdge, ClampToEdge
	}
	tex.Repeat = math.Vec2{X: 1, Y: 1}

	if cover.Policy == CoverTile {
		density := cover.TileDensity
		if density <= 0 {
			density = DefaultTileDensity
		}
		width := objectSize.X
		if mode == uvproj.Cylindrical {
			// U runs around the circumference
			width = float32(gomath.Pi) * max(objectSize.X, objectSize.Z)
		}
		tex.WrapS, tex.WrapT = Repeat, Repeat
		tex.Repeat = math.Vec2{X: repeatCount(width, density), Y: repeatCount(objectSize.Y, density)}
	}
	tex.Version++
}

func repeatCount(extent, density float32) float32 {
	n := float32(gomath.Round(float64(extent * density)))
	if n < 1 || gomath.IsNaN(float64(n)) {
		return 1
	}
	return n
}
