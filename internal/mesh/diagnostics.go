package mesh

import (
	"fmt"

	"github.com/Faultbox/wrapview/pkg/math"
	"github.com/Faultbox/wrapview/pkg/uvproj"
)

// DefaultUVEpsilon is the smallest U or V range considered usable.
const DefaultUVEpsilon float32 = 0.001

// Report describes the state of a part's texture coordinates.
type Report struct {
	Bounds math.Box3

	// Missing is set when there is no UV buffer or its length does not match
	// the position count.
	Missing bool
	// Degenerate is set when the U or V range is narrower than the epsilon.
	Degenerate bool
	// OutOfRange is set when any component lies outside [0, 1].
	OutOfRange bool

	MinUV math.Vec2
	MaxUV math.Vec2
}

// NeedsProjection reports whether the UVs must be regenerated.
func (r Report) NeedsProjection() bool {
	return r.Missing || r.Degenerate || r.OutOfRange
}

// String summarizes the report for logging.
func (r Report) String() string {
	switch {
	case r.Missing:
		return "missing"
	case r.Degenerate:
		return fmt.Sprintf("degenerate (u %.4f..%.4f, v %.4f..%.4f)", r.MinUV.X, r.MaxUV.X, r.MinUV.Y, r.MaxUV.Y)
	case r.OutOfRange:
		return fmt.Sprintf("out of range (u %.4f..%.4f, v %.4f..%.4f)", r.MinUV.X, r.MaxUV.X, r.MinUV.Y, r.MaxUV.Y)
	default:
		return "ok"
	}
}

// Diagnose inspects the part's UVs. A non-positive epsilon uses DefaultUVEpsilon.
func Diagnose(p *Part, epsilon float32) Report {
	if epsilon <= 0 {
		epsilon = DefaultUVEpsilon
	}
	r := Report{Bounds: p.Bounds()}

	if len(p.UVs) == 0 || len(p.UVs) != len(p.Positions) {
		r.Missing = true
		return r
	}

	r.MinUV = p.UVs[0]
	r.MaxUV = p.UVs[0]
	for _, uv := range p.UVs {
		r.MinUV.X = min(r.MinUV.X, uv.X)
		r.MinUV.Y = min(r.MinUV.Y, uv.Y)
		r.MaxUV.X = max(r.MaxUV.X, uv.X)
		r.MaxUV.Y = max(r.MaxUV.Y, uv.Y)
		if !uv.InUnitRange() {
			r.OutOfRange = true
		}
	}

	if r.MaxUV.X-r.MinUV.X < epsilon || r.MaxUV.Y-r.MinUV.Y < epsilon {
		r.Degenerate = true
	}
	return r
}

// Project overwrites the part's UVs using proj and its own bounding box.
func Project(p *Part, proj uvproj.Projector, rev uint64) {
	p.UVs = proj.Project(p.Positions, p.Bounds())
	p.ProjectionRev = rev
}

// EnsureUVs regenerates the part's UVs when Diagnose finds them unusable.
// It reports whether a regeneration happened along with the pre-repair report.
func EnsureUVs(p *Part, proj uvproj.Projector, epsilon float32, rev uint64) (bool, Report) {
	r := Diagnose(p, epsilon)
	if !r.NeedsProjection() {
		return false, r
	}
	Project(p, proj, rev)
	return true, r
}
