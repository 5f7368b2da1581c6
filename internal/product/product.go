// Package product implements the product registry and the material binder
// that puts a texture on every part of a loaded product.
package product

import (
	"errors"
	"fmt"

	"github.com/Faultbox/wrapview/internal/material"
	"github.com/Faultbox/wrapview/internal/mesh"
	"github.com/Faultbox/wrapview/internal/texture"
	"github.com/Faultbox/wrapview/pkg/math"
	"github.com/Faultbox/wrapview/pkg/uvproj"
)

var (
	// ErrNoGeometry is returned when a loaded asset contains no mesh parts.
	ErrNoGeometry = errors.New("asset contains no geometry")
	// ErrNotReady is returned when an operation needs a Ready product.
	// Callers treat it as a warning; nothing was changed.
	ErrNotReady = errors.New("product not ready")
)

// State is the load state of a product.
type State int

const (
	Unloaded State = iota
	Loading
	Ready
	// Failed behaves like Unloaded except that it is not retried automatically.
	Failed
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	for _, st := range []State{Unloaded, Loading, Ready, Failed} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown product state %q", text)
}

// LoadOptions controls how freshly loaded parts are prepared.
type LoadOptions struct {
	UVEpsilon float32
	// PreserveAuthoredUVs keeps asset UVs that pass diagnostics instead of
	// always projecting.
	PreserveAuthoredUVs bool
	// CenterXZ moves the product so its bounds are centered on the vertical axis.
	CenterXZ bool
}

// PartReport pairs a part name with its diagnostics at load time.
type PartReport struct {
	Part        string
	Report      mesh.Report
	Regenerated bool
}

// Product is one displayable item variant.
// A Product is not safe for concurrent use; the owning session serializes access.
type Product struct {
	Key       string
	AssetPath string
	Projector uvproj.Projector
	Parts     []*mesh.Part
	Visible   bool

	state   State
	lastErr error
	rev     uint64
}

// New creates an unloaded product.
func New(key, assetPath string, proj uvproj.Projector) *Product {
	return &Product{
		Key:       key,
		AssetPath: assetPath,
		Projector: proj,
		rev:       1,
	}
}

// State returns the current load state.
func (p *Product) State() State { return p.state }

// Ready reports whether textures can be applied.
func (p *Product) Ready() bool { return p.state == Ready }

// Err returns the error that moved the product to Failed.
func (p *Product) Err() error { return p.lastErr }

// ProjectionRev returns the current projection revision.
func (p *Product) ProjectionRev() uint64 { return p.rev }

// BeginLoad moves an Unloaded product to Loading. It returns false in any
// other state so a product is loaded at most once.
func (p *Product) BeginLoad() bool {
	if p.state != Unloaded {
		return false
	}
	p.state = Loading
	return true
}

// Retry moves a Failed product back to Unloaded.
func (p *Product) Retry() bool {
	if p.state != Failed {
		return false
	}
	p.state = Unloaded
	p.lastErr = nil
	return true
}

// CompleteLoad installs loaded parts and moves the product to Ready.
// Every part is projected (or its authored UVs kept when allowed and usable)
// and gets its own fresh base material.
func (p *Product) CompleteLoad(parts []*mesh.Part, opts LoadOptions) ([]PartReport, error) {
	if p.state != Loading {
		return nil, fmt.Errorf("complete load of %s in state %s", p.Key, p.state)
	}
	if len(parts) == 0 {
		p.fail(fmt.Errorf("%s: %w", p.AssetPath, ErrNoGeometry))
		return nil, p.lastErr
	}

	if opts.CenterXZ {
		mesh.CenterXZ(parts)
	}

	reports := make([]PartReport, 0, len(parts))
	for _, part := range parts {
		r := PartReport{Part: part.Name}
		if opts.PreserveAuthoredUVs {
			r.Regenerated, r.Report = mesh.EnsureUVs(part, p.Projector, opts.UVEpsilon, p.rev)
			part.ProjectionRev = p.rev
		} else {
			r.Report = mesh.Diagnose(part, opts.UVEpsilon)
			mesh.Project(part, p.Projector, p.rev)
			r.Regenerated = true
		}
		part.Material = material.NewBase(p.Key + "/" + part.Name)
		reports = append(reports, r)
	}

	p.Parts = parts
	p.state = Ready
	p.lastErr = nil
	return reports, nil
}

// FailLoad moves a Loading product to Failed.
func (p *Product) FailLoad(err error) {
	if p.state == Loading {
		p.fail(err)
	}
}

func (p *Product) fail(err error) {
	p.state = Failed
	p.lastErr = err
	p.Parts = nil
}

// SetProjector replaces the projection strategy. Parts are re-projected
// lazily on the next ApplyTexture.
func (p *Product) SetProjector(proj uvproj.Projector) {
	p.Projector = proj
	p.rev++
}

// ApplyTexture assigns tex to every part. It returns ErrNotReady without
// touching anything when the product is not Ready.
func (p *Product) ApplyTexture(tex *texture.Texture) error {
	if p.state != Ready {
		return fmt.Errorf("apply texture to %s (%s): %w", p.Key, p.state, ErrNotReady)
	}
	for _, part := range p.Parts {
		if part.ProjectionRev != p.rev {
			mesh.Project(part, p.Projector, p.rev)
		}
		if !part.Material.IsBase() {
			part.Material = material.NewBase(p.Key + "/" + part.Name)
		}
		part.Material.SetMap(tex)
	}
	return nil
}

// CurrentMap returns the texture shown on the first part, or nil.
func (p *Product) CurrentMap() *texture.Texture {
	if len(p.Parts) == 0 || p.Parts[0].Material == nil {
		return nil
	}
	return p.Parts[0].Material.Map
}

// Bounds returns the combined bounds of all parts.
func (p *Product) Bounds() math.Box3 {
	return mesh.BoundsOf(p.Parts)
}

// Size returns the combined extent, used for tile density.
func (p *Product) Size() math.Vec3 {
	return p.Bounds().Size()
}
