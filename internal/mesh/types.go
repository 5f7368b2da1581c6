// Package mesh holds the mesh part model and the geometry diagnostics that
// decide when texture coordinates have to be regenerated.
package mesh

import (
	"github.com/Faultbox/wrapview/internal/material"
	"github.com/Faultbox/wrapview/pkg/math"
)

// Part is a named triangulated surface belonging to one product.
type Part struct {
	Name      string
	Positions []math.Vec3
	// UVs holds one coordinate per position, or nil when the asset had none.
	UVs     []math.Vec2
	Normals []math.Vec3
	Indices []uint32

	// Material is owned by this part and never shared with another part.
	Material *material.Material

	// ProjectionRev is the owning product's projection revision the UVs were
	// generated for. Zero means the UVs were never projected by us.
	ProjectionRev uint64
}

// Bounds returns the axis-aligned bounding box of the part.
func (p *Part) Bounds() math.Box3 {
	return math.BoxOf(p.Positions)
}

// VertexCount returns the number of positions.
func (p *Part) VertexCount() int {
	return len(p.Positions)
}

// TriangleCount returns the number of triangles, indexed or not.
func (p *Part) TriangleCount() int {
	if len(p.Indices) > 0 {
		return len(p.Indices) / 3
	}
	return len(p.Positions) / 3
}

// BoundsOf returns the combined bounding box of several parts.
func BoundsOf(parts []*Part) math.Box3 {
	b := math.EmptyBox3()
	for _, p := range parts {
		b = b.Union(p.Bounds())
	}
	return b
}
