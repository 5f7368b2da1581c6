package loader

import (
	"path/filepath"
	"strings"

	"github.com/hschendel/stl"

	"github.com/Faultbox/wrapview/internal/mesh"
	"github.com/Faultbox/wrapview/pkg/math"
)

// loadSTL reads an ASCII or binary STL solid as a single unindexed part.
// STL carries no texture coordinates, so the part always needs projection.
func loadSTL(path string) ([]*mesh.Part, error) {
	solid, err := stl.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(solid.Triangles) == 0 {
		return nil, nil
	}

	name := strings.TrimSpace(solid.Name)
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	p := &mesh.Part{
		Name:      name,
		Positions: make([]math.Vec3, 0, len(solid.Triangles)*3),
		Normals:   make([]math.Vec3, 0, len(solid.Triangles)*3),
	}
	for _, tri := range solid.Triangles {
		n := math.Vec3From(tri.Normal).Normalize()
		for _, v := range tri.Vertices {
			p.Positions = append(p.Positions, math.Vec3From(v))
			p.Normals = append(p.Normals, n)
		}
	}
	mesh.SmoothNormals(p)
	return []*mesh.Part{p}, nil
}
