package math

// Vec2 is a 2D vector. Used for texture coordinates and repeat factors.
type Vec2 struct {
	X, Y float32
}

// Clamp01 returns v with both components clamped to [0, 1].
func (v Vec2) Clamp01() Vec2 {
	return Vec2{Clamp01(v.X), Clamp01(v.Y)}
}

// InUnitRange reports whether both components lie in [0, 1].
func (v Vec2) InUnitRange() bool {
	return v.X >= 0 && v.X <= 1 && v.Y >= 0 && v.Y <= 1
}

// Clamp01 clamps x to [0, 1]. NaN maps to 0.
func Clamp01(x float32) float32 {
	if !(x > 0) {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
