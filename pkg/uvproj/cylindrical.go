package uvproj

import (
	gomath "math"

	"github.com/Faultbox/wrapview/pkg/math"
)

// CylindricalProjector wraps the image once around the Y axis.
//
// U follows the angle atan2(z, x) shifted by π, so the seam sits at angle
// ±π (the -X side) and +X maps to U=0.5. V follows height inside the box.
type CylindricalProjector struct {
	PadTop    float32
	PadBottom float32
}

// Mode implements Projector.
func (CylindricalProjector) Mode() Mode { return Cylindrical }

// Project implements Projector.
func (c CylindricalProjector) Project(positions []math.Vec3, box math.Box3) []math.Vec2 {
	uvs := make([]math.Vec2, len(positions))
	size := box.SafeSize()
	span := 1 - c.PadTop - c.PadBottom

	for i, p := range positions {
		u := AngleToU(gomath.Atan2(float64(p.Z), float64(p.X)))
		v := math.Clamp01((p.Y - box.Min.Y) / size.Y)
		v = c.PadBottom + v*span
		uvs[i] = math.Vec2{X: u, Y: v}.Clamp01()
	}
	return uvs
}

// AngleToU returns the U coordinate the projector assigns to an angle in radians.
func AngleToU(angle float64) float32 {
	return float32((angle + gomath.Pi) / (2 * gomath.Pi))
}
