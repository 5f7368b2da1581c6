// Package uvproj synthesizes per-vertex texture coordinates for meshes whose
// authored UVs are missing or unusable.
//
// Two projections are provided: a cylindrical wrap around the vertical (Y)
// axis and a planar projection onto the front (XY) plane. Both are pure
// functions of the vertex positions and the bounding box, so projecting the
// same geometry twice yields bit-identical output.
package uvproj

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/wrapview/pkg/math"
)

// Mode selects a projection strategy.
type Mode int

const (
	Cylindrical Mode = iota
	PlanarFront
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case Cylindrical:
		return "cylindrical"
	case PlanarFront:
		return "planar-front"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a configuration name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cylindrical", "cylinder":
		return Cylindrical, nil
	case "planar-front", "planar", "front":
		return PlanarFront, nil
	default:
		return 0, fmt.Errorf("unknown projection mode %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Projector computes one texture coordinate per position.
// The returned slice always has len(positions) entries with both components in [0, 1].
type Projector interface {
	Mode() Mode
	Project(positions []math.Vec3, box math.Box3) []math.Vec2
}

// Params holds the tunables of every projection mode. Only the fields that
// belong to the selected mode are used.
type Params struct {
	// PadTop and PadBottom compress the cylindrical V range to [PadBottom, 1-PadTop].
	PadTop    float32
	PadBottom float32
	// Margin shrinks the planar mapping symmetrically toward the center.
	Margin float32
}

var (
	ErrInvalidPadding = errors.New("cylindrical padding must be non-negative and sum to less than 1")
	ErrInvalidMargin  = errors.New("planar margin must be in [0, 0.5)")
)

// Validate checks the parameters that apply to mode.
func (p Params) Validate(mode Mode) error {
	switch mode {
	case Cylindrical:
		if p.PadTop < 0 || p.PadBottom < 0 || p.PadTop+p.PadBottom >= 1 {
			return fmt.Errorf("pad_top=%v pad_bottom=%v: %w", p.PadTop, p.PadBottom, ErrInvalidPadding)
		}
	case PlanarFront:
		if p.Margin < 0 || p.Margin >= 0.5 {
			return fmt.Errorf("margin=%v: %w", p.Margin, ErrInvalidMargin)
		}
	default:
		return fmt.Errorf("unknown projection mode %v", mode)
	}
	return nil
}

// New returns the projector for mode configured with params.
func New(mode Mode, params Params) (Projector, error) {
	if err := params.Validate(mode); err != nil {
		return nil, err
	}
	switch mode {
	case Cylindrical:
		return CylindricalProjector{PadTop: params.PadTop, PadBottom: params.PadBottom}, nil
	default:
		return PlanarProjector{Margin: params.Margin}, nil
	}
}
