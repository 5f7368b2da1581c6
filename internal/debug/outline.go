// Package debug provides debug visualization geometry for the renderer.
package debug

import (
	"github.com/Faultbox/wrapview/internal/mesh"
	"github.com/Faultbox/wrapview/pkg/math"
)

// BBoxWireframeVertexCount is the number of vertices for a bbox wireframe (12 edges × 2).
const BBoxWireframeVertexCount = 24

// DefaultPadding expands outlines slightly so they do not z-fight the surface.
const DefaultPadding float32 = 0.01

// BBoxWireframe returns line-list vertices for the edges of box, expanded by
// padding on every side. An empty box yields nil.
func BBoxWireframe(box math.Box3, padding float32) []math.Vec3 {
	if box.IsEmpty() {
		return nil
	}
	pad := math.Vec3{X: padding, Y: padding, Z: padding}
	lo, hi := box.Min.Sub(pad), box.Max.Add(pad)

	corner := func(x, y, z bool) math.Vec3 {
		c := lo
		if x {
			c.X = hi.X
		}
		if y {
			c.Y = hi.Y
		}
		if z {
			c.Z = hi.Z
		}
		return c
	}

	out := make([]math.Vec3, 0, BBoxWireframeVertexCount)
	for _, top := range []bool{false, true} {
		// bottom then top face
		out = append(out,
			corner(false, top, false), corner(true, top, false),
			corner(true, top, false), corner(true, top, true),
			corner(true, top, true), corner(false, top, true),
			corner(false, top, true), corner(false, top, false),
		)
	}
	// verticals
	for _, xz := range [][2]bool{{false, false}, {true, false}, {true, true}, {false, true}} {
		out = append(out, corner(xz[0], false, xz[1]), corner(xz[0], true, xz[1]))
	}
	return out
}

// Outline returns the wireframe of the combined bounds of parts.
func Outline(parts []*mesh.Part) []math.Vec3 {
	return BBoxWireframe(mesh.BoundsOf(parts), DefaultPadding)
}

// PartOutline returns the wireframe of one part's bounds.
func PartOutline(p *mesh.Part) []math.Vec3 {
	return BBoxWireframe(p.Bounds(), DefaultPadding)
}
