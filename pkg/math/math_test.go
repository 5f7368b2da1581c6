package math

import (
	"math"
	"testing"
)

func TestBoxOf(t *testing.T) {
	b := BoxOf([]Vec3{{1, -2, 3}, {-1, 4, 0}, {0, 0, 5}})
	want := Box3{Min: Vec3{-1, -2, 0}, Max: Vec3{1, 4, 5}}
	if b != want {
		t.Errorf("BoxOf() = %v, want %v", b, want)
	}
}

func TestEmptyBox(t *testing.T) {
	b := EmptyBox3()
	if !b.IsEmpty() {
		t.Error("EmptyBox3 should be empty")
	}
	if got := b.Size(); got != (Vec3{}) {
		t.Errorf("empty Size() = %v, want zero", got)
	}
	if got := b.SafeSize(); got != (Vec3{1, 1, 1}) {
		t.Errorf("empty SafeSize() = %v, want (1,1,1)", got)
	}
}

func TestSafeSizeSubstitutesZeroExtent(t *testing.T) {
	b := BoxOf([]Vec3{{0, 2, 0}, {4, 2, 0}})
	got := b.SafeSize()
	want := Vec3{4, 1, 1}
	if got != want {
		t.Errorf("SafeSize() = %v, want %v", got, want)
	}
}

func TestUnion(t *testing.T) {
	a := BoxOf([]Vec3{{0, 0, 0}, {1, 1, 1}})
	b := BoxOf([]Vec3{{-1, 2, 0}})
	got := a.Union(b)
	want := Box3{Min: Vec3{-1, 0, 0}, Max: Vec3{1, 2, 1}}
	if got != want {
		t.Errorf("Union() = %v, want %v", got, want)
	}
	if EmptyBox3().Union(a) != a {
		t.Error("empty.Union(a) should equal a")
	}
}

func TestClamp01(t *testing.T) {
	tests := []struct {
		in, want float32
	}{
		{-0.5, 0},
		{0, 0},
		{0.25, 0.25},
		{1, 1},
		{3, 1},
		{float32(math.NaN()), 0},
	}
	for _, tt := range tests {
		if got := Clamp01(tt.in); got != tt.want {
			t.Errorf("Clamp01(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestComposeTranslateScale(t *testing.T) {
	m := Compose(Vec3{10, 0, 0}, QuatIdentity(), Vec3{2, 2, 2})
	got := m.TransformVec3(Vec3{1, 1, 1})
	want := Vec3{12, 2, 2}
	if got != want {
		t.Errorf("TransformVec3() = %v, want %v", got, want)
	}
}

func TestQuatRotation(t *testing.T) {
	// 90 degrees about Y maps +X to -Z.
	s := float32(math.Sin(math.Pi / 4))
	q := Quat{X: 0, Y: s, Z: 0, W: s}
	got := q.ToMat4().TransformDirection(Vec3{1, 0, 0})
	if abs(got.X) > 1e-5 || abs(got.Y) > 1e-5 || abs(got.Z+1) > 1e-5 {
		t.Errorf("rotated +X = %v, want (0,0,-1)", got)
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	if got := m.Mul(Identity()); got != m {
		t.Errorf("M * I = %v, want %v", got, m)
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
