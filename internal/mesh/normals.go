package mesh

import "github.com/Faultbox/wrapview/pkg/math"

// CenterXZ moves all parts so the combined bounds are centered on the Y axis,
// keeping the vertical offset. Cylindrical angles are measured around that axis.
// Returns the applied offset.
func CenterXZ(parts []*Part) (centerX, centerZ float32) {
	bounds := BoundsOf(parts)
	if bounds.IsEmpty() {
		return 0, 0
	}
	c := bounds.Center()
	centerX, centerZ = c.X, c.Z

	for _, p := range parts {
		for i := range p.Positions {
			p.Positions[i].X -= centerX
			p.Positions[i].Z -= centerZ
		}
	}
	return centerX, centerZ
}

// SmoothNormals averages normals at shared vertex positions.
// STL solids only carry face normals, so every corner arrives unwelded.
func SmoothNormals(p *Part) {
	const epsilon float32 = 0.001
	if len(p.Normals) != len(p.Positions) {
		return
	}

	// Group vertices by quantized position for O(n) lookup
	posMap := make(map[[3]int32][]int)
	for i, pos := range p.Positions {
		key := [3]int32{
			int32(pos.X / epsilon),
			int32(pos.Y / epsilon),
			int32(pos.Z / epsilon),
		}
		posMap[key] = append(posMap[key], i)
	}

	for _, idxs := range posMap {
		if len(idxs) < 2 {
			continue
		}

		var sum math.Vec3
		for _, idx := range idxs {
			sum = sum.Add(p.Normals[idx])
		}

		avg := sum.Normalize()
		for _, idx := range idxs {
			p.Normals[idx] = avg
		}
	}
}
