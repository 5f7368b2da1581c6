// Package material describes the surface material each mesh part owns.
package material

import "github.com/Faultbox/wrapview/internal/texture"

// Kind identifies the shading model of a material.
type Kind int

const (
	// Standard is the lit base material products are textured with.
	Standard Kind = iota
	// Unlit ignores lighting; assets sometimes arrive with it.
	Unlit
	// Wireframe is used by debug overlays.
	Wireframe
)

func (k Kind) String() string {
	switch k {
	case Standard:
		return "standard"
	case Unlit:
		return "unlit"
	case Wireframe:
		return "wireframe"
	default:
		return "unknown"
	}
}

// Color is a linear RGBA color.
type Color struct {
	R, G, B, A float32
}

// White is opaque white. Base materials use it so textures render true to color.
var White = Color{R: 1, G: 1, B: 1, A: 1}

// Material holds a part's surface appearance.
type Material struct {
	Name      string
	Kind      Kind
	Color     Color
	Roughness float32
	Metalness float32

	// Map is the surface texture. Parts of one product share the texture
	// instance but never the material.
	Map *texture.Texture

	// NeedsUpdate tells the renderer to re-upload sampler state.
	NeedsUpdate bool
	// Version increments on every change the renderer must observe.
	Version uint64
}

// NewBase returns a fresh opaque white standard material.
func NewBase(name string) *Material {
	return &Material{
		Name:      name,
		Kind:      Standard,
		Color:     White,
		Roughness: 0.8,
		Metalness: 0,
	}
}

// IsBase reports whether m is a standard material that can carry a product texture.
func (m *Material) IsBase() bool {
	return m != nil && m.Kind == Standard
}

// SetMap assigns the surface texture and flags the material for re-upload.
func (m *Material) SetMap(tex *texture.Texture) {
	m.Map = tex
	m.NeedsUpdate = true
	m.Version++
}

// MarkUploaded clears the re-upload flag once a renderer has consumed it.
func (m *Material) MarkUploaded() {
	m.NeedsUpdate = false
}
