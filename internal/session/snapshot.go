package session

import (
	"github.com/Faultbox/wrapview/internal/debug"
	"github.com/Faultbox/wrapview/internal/product"
	"github.com/Faultbox/wrapview/pkg/math"
)

// Snapshot is the renderer-facing view of the scene.
type Snapshot struct {
	Product   string         `json:"product"`
	State     product.State  `json:"state"`
	Mode      string         `json:"mode,omitempty"`
	Products  []ProductState `json:"products"`
	Parts     []PartView     `json:"parts,omitempty"`
	Texture   *TextureView   `json:"texture,omitempty"`
	GridShown bool           `json:"gridShown"`
	Pending   string         `json:"pending,omitempty"`
	InFlight  int            `json:"inFlight"`
	Outline   []math.Vec3    `json:"outline,omitempty"` // combined bounds of all parts
}

// ProductState summarizes one registered product.
type ProductState struct {
	Key     string        `json:"key"`
	State   product.State `json:"state"`
	Visible bool          `json:"visible"`
	Error   string        `json:"error,omitempty"`
}

// PartView describes one part of the visible product.
type PartView struct {
	Name            string `json:"name"`
	Vertices        int    `json:"vertices"`
	Triangles       int    `json:"triangles"`
	UVs             int    `json:"uvs"`
	Material        string `json:"material"`
	Map             string `json:"map,omitempty"`
	MaterialVersion uint64 `json:"materialVersion"`
	NeedsUpdate     bool   `json:"needsUpdate"` // material changed since the last published snapshot

	Outline []math.Vec3 `json:"outline,omitempty"`
}

// TextureView describes the texture on the first part.
type TextureView struct {
	Name    string    `json:"name"`
	Source  string    `json:"source"`
	Width   int       `json:"width"`
	Height  int       `json:"height"`
	WrapS   string    `json:"wrapS"`
	WrapT   string    `json:"wrapT"`
	Repeat  math.Vec2 `json:"repeat"`
	Version uint64    `json:"version"`
}

// Snapshot captures the current scene.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Product:   s.active,
		Products:  make([]ProductState, 0, s.products.Len()),
		GridShown: s.GridShown(),
		InFlight:  s.inflight,
	}
	if s.pending != nil {
		snap.Pending = s.pending.Name
	}

	for _, p := range s.products.All() {
		ps := ProductState{Key: p.Key, State: p.State(), Visible: p.Visible}
		if err := p.Err(); err != nil {
			ps.Error = err.Error()
		}
		snap.Products = append(snap.Products, ps)
	}

	p := s.Active()
	if p == nil {
		return snap
	}
	snap.State = p.State()
	if p.Projector != nil {
		snap.Mode = p.Projector.Mode().String()
	}
	outline := s.showOutline && p.Ready()
	for _, part := range p.Parts {
		pv := PartView{
			Name:      part.Name,
			Vertices:  part.VertexCount(),
			Triangles: part.TriangleCount(),
			UVs:       len(part.UVs),
		}
		if m := part.Material; m != nil {
			pv.Material = m.Name
			pv.MaterialVersion = m.Version
			pv.NeedsUpdate = m.NeedsUpdate
			if m.Map != nil {
				pv.Map = m.Map.Name
			}
		}
		if outline {
			pv.Outline = debug.PartOutline(part)
		}
		snap.Parts = append(snap.Parts, pv)
	}
	if tex := p.CurrentMap(); tex != nil {
		snap.Texture = &TextureView{
			Name:    tex.Name,
			Source:  tex.Source,
			Width:   tex.Width(),
			Height:  tex.Height(),
			WrapS:   tex.WrapS.String(),
			WrapT:   tex.WrapT.String(),
			Repeat:  tex.Repeat,
			Version: tex.Version,
		}
	}
	if outline {
		snap.Outline = debug.Outline(p.Parts)
	}
	return snap
}
