package uvproj

import "github.com/Faultbox/wrapview/pkg/math"

// PlanarProjector maps X and Y inside the bounding box straight onto U and V,
// ignoring depth. Suited to flat front panels.
type PlanarProjector struct {
	Margin float32
}

// Mode implements Projector.
func (PlanarProjector) Mode() Mode { return PlanarFront }

// Project implements Projector.
func (p PlanarProjector) Project(positions []math.Vec3, box math.Box3) []math.Vec2 {
	uvs := make([]math.Vec2, len(positions))
	size := box.SafeSize()
	span := 1 - 2*p.Margin

	for i, pos := range positions {
		u := math.Clamp01((pos.X - box.Min.X) / size.X)
		v := math.Clamp01((pos.Y - box.Min.Y) / size.Y)
		uvs[i] = math.Vec2{X: p.Margin + u*span, Y: p.Margin + v*span}.Clamp01()
	}
	return uvs
}
