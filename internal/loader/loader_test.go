package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/wrapview/internal/assets"
	"github.com/Faultbox/wrapview/internal/mesh"
	"github.com/Faultbox/wrapview/pkg/math"
)

const cupSTL = `solid cup
facet normal 0 0 1
  outer loop
    vertex 0 0 0
    vertex 1 0 0
    vertex 0 1 0
  endloop
endfacet
facet normal 0 0 1
  outer loop
    vertex 1 0 0
    vertex 1 1 0
    vertex 0 1 0
  endloop
endfacet
endsolid cup
`

func TestLoadSTL(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "cup.stl"), []byte(cupSTL), 0644); err != nil {
		t.Fatal(err)
	}
	l := NewFiles(assets.NewManager(dir), nil)

	parts, err := l.LoadMesh(context.Background(), "cup.stl")
	if err != nil {
		t.Fatalf("LoadMesh() error = %v", err)
	}
	if len(parts) != 1 {
		t.Fatalf("got %d parts, want 1", len(parts))
	}
	p := parts[0]
	if p.Name != "cup" {
		t.Errorf("Name = %q, want cup", p.Name)
	}
	if p.VertexCount() != 6 || p.TriangleCount() != 2 {
		t.Errorf("vertices=%d triangles=%d, want 6/2", p.VertexCount(), p.TriangleCount())
	}
	if p.UVs != nil {
		t.Error("STL parts should have no UVs")
	}
	if !mesh.Diagnose(p, 0).Missing {
		t.Error("STL part should be diagnosed as missing UVs")
	}
}

func writeGLB(t *testing.T, path string) {
	t.Helper()
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	uv := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 1}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2})

	doc.Meshes = []*gltf.Mesh{{
		Name: "sleeve",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Attributes: map[string]int{gltf.POSITION: pos, gltf.TEXCOORD_0: uv},
		}},
	}}
	doc.Nodes = []*gltf.Node{
		{Name: "root", Translation: [3]float64{0, 2, 0}, Children: []int{1}},
		{Name: "child", Mesh: gltf.Index(0), Translation: [3]float64{1, 0, 0}},
	}
	doc.Scenes[0].Nodes = []int{0}

	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("SaveBinary: %v", err)
	}
}

func TestLoadGLTFBakesTransforms(t *testing.T) {
	dir := t.TempDir()
	writeGLB(t, filepath.Join(dir, "shirt.glb"))
	l := NewFiles(assets.NewManager(dir), nil)

	parts, err := l.LoadMesh(context.Background(), "shirt.glb")
	if err != nil {
		t.Fatalf("LoadMesh() error = %v", err)
	}
	if len(parts) != 1 {
		t.Fatalf("got %d parts, want 1", len(parts))
	}
	p := parts[0]
	if p.Name != "sleeve" {
		t.Errorf("Name = %q, want sleeve", p.Name)
	}
	want := []math.Vec3{{X: 1, Y: 2, Z: 0}, {X: 2, Y: 2, Z: 0}, {X: 1, Y: 3, Z: 0}}
	for i := range want {
		if p.Positions[i] != want[i] {
			t.Errorf("position %d = %v, want %v", i, p.Positions[i], want[i])
		}
	}
	if len(p.UVs) != 3 || p.UVs[1] != (math.Vec2{X: 1, Y: 0}) {
		t.Errorf("UVs = %v", p.UVs)
	}
	if len(p.Indices) != 3 {
		t.Errorf("Indices = %v", p.Indices)
	}
}

func TestLoadMeshErrors(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "model.fbx"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	l := NewFiles(assets.NewManager(dir), nil)

	_, err := l.LoadMesh(context.Background(), "missing.glb")
	if !errors.Is(err, assets.ErrAssetLoad) || !errors.Is(err, assets.ErrNotFound) {
		t.Errorf("missing file error = %v", err)
	}

	_, err = l.LoadMesh(context.Background(), "model.fbx")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("fbx error = %v, want ErrUnsupportedFormat", err)
	}
	var le *assets.LoadError
	if !errors.As(err, &le) || le.Kind != "mesh" {
		t.Errorf("error %v should be a mesh LoadError", err)
	}
}

func TestLoadGLTFMalformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{
			name: "position accessor out of range",
			doc:  `{"asset":{"version":"2.0"},"nodes":[{"mesh":0}],"meshes":[{"primitives":[{"attributes":{"POSITION":5}}]}]}`,
		},
		{
			name: "indices accessor out of range",
			doc: `{"asset":{"version":"2.0"},"nodes":[{"mesh":0}],"accessors":[{"componentType":5126,"count":3,"type":"VEC3"}],` +
				`"meshes":[{"primitives":[{"attributes":{"POSITION":0},"indices":9}]}]}`,
		},
		{
			name: "mesh out of range",
			doc:  `{"asset":{"version":"2.0"},"nodes":[{"mesh":3}]}`,
		},
		{
			name: "node cycle",
			doc:  `{"asset":{"version":"2.0"},"scene":0,"scenes":[{"nodes":[0]}],"nodes":[{"children":[1]},{"children":[0]}]}`,
			want: ErrNodeCycle,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, "bad.gltf"), []byte(tt.doc), 0644); err != nil {
				t.Fatal(err)
			}
			l := NewFiles(assets.NewManager(dir), nil)

			parts, err := l.LoadMesh(context.Background(), "bad.gltf")
			if err == nil {
				t.Fatalf("LoadMesh() = %d parts, want error", len(parts))
			}
			if !errors.Is(err, assets.ErrAssetLoad) {
				t.Errorf("error %v should be an asset load error", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFuncAdapter(t *testing.T) {
	called := ""
	var l Loader = Func(func(_ context.Context, path string) ([]*mesh.Part, error) {
		called = path
		return nil, nil
	})
	if _, err := l.LoadMesh(context.Background(), "a.glb"); err != nil || called != "a.glb" {
		t.Errorf("Func adapter: called=%q err=%v", called, err)
	}
}
