package loader

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/wrapview/internal/mesh"
	"github.com/Faultbox/wrapview/pkg/math"
)

// loadGLTF reads every mesh primitive reachable from the default scene.
// Node transforms are baked into positions and normals so all parts share
// one object space.
func loadGLTF(path string) ([]*mesh.Part, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open: %w", err)
	}

	var parts []*mesh.Part
	visited := make([]bool, len(doc.Nodes))
	var visit func(idx int, parent math.Mat4) error
	visit = func(idx int, parent math.Mat4) error {
		if idx < 0 || idx >= len(doc.Nodes) {
			return fmt.Errorf("node %d out of range", idx)
		}
		// node hierarchies are strict trees
		if visited[idx] {
			return fmt.Errorf("node %d reached twice: %w", idx, ErrNodeCycle)
		}
		visited[idx] = true
		node := doc.Nodes[idx]
		if node == nil {
			return nil
		}
		world := parent.Mul(nodeMatrix(node))

		if node.Mesh != nil {
			if *node.Mesh < 0 || *node.Mesh >= len(doc.Meshes) || doc.Meshes[*node.Mesh] == nil {
				return fmt.Errorf("node %d: mesh %d out of range", idx, *node.Mesh)
			}
			gm := doc.Meshes[*node.Mesh]
			name := gm.Name
			if name == "" {
				name = node.Name
			}
			if name == "" {
				name = fmt.Sprintf("mesh_%d", *node.Mesh)
			}
			for pi, prim := range gm.Primitives {
				if prim == nil {
					continue
				}
				partName := name
				if len(gm.Primitives) > 1 {
					partName = fmt.Sprintf("%s_p%d", name, pi)
				}
				p, err := readPrimitive(doc, partName, prim, world)
				if err != nil {
					return fmt.Errorf("mesh %q primitive %d: %w", name, pi, err)
				}
				if p != nil {
					parts = append(parts, p)
				}
			}
		}
		for _, child := range node.Children {
			if err := visit(child, world); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range rootNodes(doc) {
		if err := visit(root, math.Identity()); err != nil {
			return nil, err
		}
	}
	return parts, nil
}

// rootNodes returns the default scene's nodes, or every parentless node.
func rootNodes(doc *gltf.Document) []int {
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	hasParent := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		if n == nil {
			continue
		}
		for _, c := range n.Children {
			if c >= 0 && c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func nodeMatrix(n *gltf.Node) math.Mat4 {
	t := n.TranslationOrDefault()
	r := n.RotationOrDefault() // [x, y, z, w]
	s := n.ScaleOrDefault()
	return math.Compose(
		math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])},
		math.Quat{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])},
		math.Vec3{X: float32(s[0]), Y: float32(s[1]), Z: float32(s[2])},
	)
}

// readPrimitive converts one triangle primitive. Non-triangle primitives are skipped.
func readPrimitive(doc *gltf.Document, name string, prim *gltf.Primitive, world math.Mat4) (*mesh.Part, error) {
	if prim.Mode != gltf.PrimitiveTriangles {
		return nil, nil
	}
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	posAcc, err := accessor(doc, posIdx)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	positions, err := modeler.ReadPosition(doc, posAcc, nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	p := &mesh.Part{
		Name:      name,
		Positions: make([]math.Vec3, len(positions)),
	}
	for i, pos := range positions {
		p.Positions[i] = world.TransformVec3(math.Vec3From(pos))
	}

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		acc, err := accessor(doc, idx)
		if err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
		normals, err := modeler.ReadNormal(doc, acc, nil)
		if err == nil && len(normals) == len(positions) {
			p.Normals = make([]math.Vec3, len(normals))
			for i, n := range normals {
				p.Normals[i] = world.TransformDirection(math.Vec3From(n)).Normalize()
			}
		}
	}

	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		acc, err := accessor(doc, idx)
		if err != nil {
			return nil, fmt.Errorf("uvs: %w", err)
		}
		uvs, err := modeler.ReadTextureCoord(doc, acc, nil)
		if err == nil && len(uvs) == len(positions) {
			p.UVs = make([]math.Vec2, len(uvs))
			for i, uv := range uvs {
				p.UVs[i] = math.Vec2{X: uv[0], Y: uv[1]}
			}
		}
	}

	if prim.Indices != nil {
		acc, err := accessor(doc, *prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
		p.Indices, err = modeler.ReadIndices(doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
		for _, i := range p.Indices {
			if int(i) >= len(p.Positions) {
				return nil, fmt.Errorf("index %d out of range for %d vertices", i, len(p.Positions))
			}
		}
	}
	return p, nil
}

func accessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) || doc.Accessors[idx] == nil {
		return nil, fmt.Errorf("accessor %d out of range", idx)
	}
	acc := doc.Accessors[idx]
	if acc.BufferView != nil {
		bv := *acc.BufferView
		if bv < 0 || bv >= len(doc.BufferViews) || doc.BufferViews[bv] == nil {
			return nil, fmt.Errorf("accessor %d: buffer view %d out of range", idx, bv)
		}
		if b := doc.BufferViews[bv].Buffer; b < 0 || b >= len(doc.Buffers) {
			return nil, fmt.Errorf("accessor %d: buffer %d out of range", idx, b)
		}
	}
	return acc, nil
}
