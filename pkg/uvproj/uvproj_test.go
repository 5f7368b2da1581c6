package uvproj

import (
	"errors"
	gomath "math"
	"math/rand"
	"testing"

	"github.com/Faultbox/wrapview/pkg/math"
)

func randomPositions(n int, seed int64) []math.Vec3 {
	r := rand.New(rand.NewSource(seed))
	out := make([]math.Vec3, n)
	for i := range out {
		out[i] = math.Vec3{
			X: r.Float32()*4 - 2,
			Y: r.Float32()*3 - 1,
			Z: r.Float32()*4 - 2,
		}
	}
	return out
}

func projectors() []Projector {
	return []Projector{
		CylindricalProjector{},
		CylindricalProjector{PadTop: 0.1, PadBottom: 0.2},
		PlanarProjector{},
		PlanarProjector{Margin: 0.05},
	}
}

func TestProjectIdempotent(t *testing.T) {
	pos := randomPositions(500, 1)
	box := math.BoxOf(pos)
	for _, p := range projectors() {
		a := p.Project(pos, box)
		b := p.Project(pos, box)
		if len(a) != len(pos) {
			t.Fatalf("%v: got %d uvs, want %d", p.Mode(), len(a), len(pos))
		}
		for i := range a {
			if gomath.Float32bits(a[i].X) != gomath.Float32bits(b[i].X) ||
				gomath.Float32bits(a[i].Y) != gomath.Float32bits(b[i].Y) {
				t.Fatalf("%v: uv %d differs between runs: %v vs %v", p.Mode(), i, a[i], b[i])
			}
		}
	}
}

func TestProjectRange(t *testing.T) {
	boxes := map[string]func([]math.Vec3) math.Box3{
		"fitted": math.BoxOf,
		"empty":  func([]math.Vec3) math.Box3 { return math.EmptyBox3() },
		"flat": func([]math.Vec3) math.Box3 {
			return math.Box3{Min: math.Vec3{X: 0, Y: 0.5, Z: 0}, Max: math.Vec3{X: 0, Y: 0.5, Z: 0}}
		},
		"smaller": func([]math.Vec3) math.Box3 {
			return math.Box3{Min: math.Vec3{X: -0.1, Y: -0.1, Z: -0.1}, Max: math.Vec3{X: 0.1, Y: 0.1, Z: 0.1}}
		},
	}
	pos := randomPositions(300, 2)
	for name, boxFn := range boxes {
		box := boxFn(pos)
		for _, p := range projectors() {
			for i, uv := range p.Project(pos, box) {
				if !uv.InUnitRange() {
					t.Fatalf("%s/%v: uv %d = %v outside [0,1]", name, p.Mode(), i, uv)
				}
			}
		}
	}
}

func TestZeroHeightDoesNotDivideByZero(t *testing.T) {
	pos := []math.Vec3{{X: 1, Y: 2, Z: 0}, {X: -1, Y: 2, Z: 0}, {X: 0, Y: 2, Z: 1}}
	box := math.BoxOf(pos)
	for _, p := range projectors() {
		for _, uv := range p.Project(pos, box) {
			if gomath.IsNaN(float64(uv.X)) || gomath.IsNaN(float64(uv.Y)) {
				t.Fatalf("%v: NaN uv %v for flat geometry", p.Mode(), uv)
			}
		}
	}
}

func TestCylindricalSeam(t *testing.T) {
	tests := []struct {
		name  string
		angle float64
		want  []float32 // any of
	}{
		{"angle 0", 0, []float32{0.5}},
		{"angle pi/2", gomath.Pi / 2, []float32{0.75}},
		{"angle pi", gomath.Pi, []float32{0, 1}},
		{"angle 3pi/2", 3 * gomath.Pi / 2, []float32{0.25}},
	}
	box := math.Box3{Min: math.Vec3{X: -1, Y: 0, Z: -1}, Max: math.Vec3{X: 1, Y: 1, Z: 1}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := []math.Vec3{{
				X: float32(gomath.Cos(tt.angle)),
				Y: 0.5,
				Z: float32(gomath.Sin(tt.angle)),
			}}
			u := CylindricalProjector{}.Project(pos, box)[0].X
			for _, w := range tt.want {
				if gomath.Abs(float64(u-w)) < 1e-4 {
					return
				}
			}
			t.Errorf("u = %v, want one of %v", u, tt.want)
		})
	}
}

func TestCylindricalSingleSeam(t *testing.T) {
	// Walking once around the circle, U increases monotonically except for a
	// single wrap at angle pi.
	const steps = 360
	pos := make([]math.Vec3, steps)
	for i := range pos {
		a := -gomath.Pi + (float64(i)+0.5)*2*gomath.Pi/steps
		pos[i] = math.Vec3{X: float32(gomath.Cos(a)), Z: float32(gomath.Sin(a))}
	}
	uvs := CylindricalProjector{}.Project(pos, math.BoxOf(pos))
	wraps := 0
	for i := 1; i < steps; i++ {
		if uvs[i].X < uvs[i-1].X {
			wraps++
		}
	}
	if wraps != 0 {
		t.Errorf("U decreased %d times inside (-pi, pi), want 0", wraps)
	}
	if AngleToU(0) != 0.5 {
		t.Errorf("AngleToU(0) = %v, want 0.5", AngleToU(0))
	}
}

func TestCylindricalPaddingContainment(t *testing.T) {
	pos := randomPositions(400, 3)
	p := CylindricalProjector{PadTop: 0.1, PadBottom: 0.2}
	const eps = 1e-6
	for i, uv := range p.Project(pos, math.BoxOf(pos)) {
		if uv.Y < 0.2-eps || uv.Y > 0.9+eps {
			t.Fatalf("uv %d: v = %v outside [0.2, 0.9]", i, uv.Y)
		}
	}
}

func TestPlanarMargin(t *testing.T) {
	pos := []math.Vec3{{X: 0, Y: 0, Z: 5}, {X: 2, Y: 4, Z: -5}, {X: 1, Y: 2, Z: 0}}
	uvs := PlanarProjector{Margin: 0.1}.Project(pos, math.BoxOf(pos))

	want := []math.Vec2{{X: 0.1, Y: 0.1}, {X: 0.9, Y: 0.9}, {X: 0.5, Y: 0.5}}
	for i := range want {
		if gomath.Abs(float64(uvs[i].X-want[i].X)) > 1e-6 || gomath.Abs(float64(uvs[i].Y-want[i].Y)) > 1e-6 {
			t.Errorf("uv %d = %v, want %v", i, uvs[i], want[i])
		}
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"cylindrical", Cylindrical, false},
		{"Planar-Front", PlanarFront, false},
		{"planar", PlanarFront, false},
		{"spherical", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewValidatesParams(t *testing.T) {
	if _, err := New(Cylindrical, Params{PadTop: 0.6, PadBottom: 0.4}); !errors.Is(err, ErrInvalidPadding) {
		t.Errorf("New(cylindrical, pads summing to 1) error = %v, want ErrInvalidPadding", err)
	}
	if _, err := New(PlanarFront, Params{Margin: 0.5}); !errors.Is(err, ErrInvalidMargin) {
		t.Errorf("New(planar, margin 0.5) error = %v, want ErrInvalidMargin", err)
	}
	p, err := New(PlanarFront, Params{Margin: 0.05, PadTop: 0.9})
	if err != nil {
		t.Fatalf("New(planar) error = %v", err)
	}
	if p.Mode() != PlanarFront {
		t.Errorf("Mode() = %v, want planar-front", p.Mode())
	}
}
