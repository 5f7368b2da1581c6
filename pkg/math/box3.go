package math

import "math"

// Box3 is an axis-aligned bounding box.
type Box3 struct {
	Min Vec3
	Max Vec3
}

// EmptyBox3 returns an inverted box that any Extend call will replace.
func EmptyBox3() Box3 {
	inf := float32(math.Inf(1))
	return Box3{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// IsEmpty reports whether no point has been added to the box.
func (b Box3) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Extend grows the box to contain p.
func (b *Box3) Extend(p Vec3) {
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// Union returns the smallest box containing both b and other.
func (b Box3) Union(other Box3) Box3 {
	if b.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return b
	}
	return Box3{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}

// Size returns the extent of the box on each axis. An empty box has zero size.
func (b Box3) Size() Vec3 {
	if b.IsEmpty() {
		return Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// SafeSize returns Size with every zero (or non-finite) extent replaced by 1,
// so callers can divide by it.
func (b Box3) SafeSize() Vec3 {
	s := b.Size()
	return Vec3{safeExtent(s.X), safeExtent(s.Y), safeExtent(s.Z)}
}

// Center returns the midpoint of the box.
func (b Box3) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Translate returns the box moved by d.
func (b Box3) Translate(d Vec3) Box3 {
	if b.IsEmpty() {
		return b
	}
	return Box3{Min: b.Min.Add(d), Max: b.Max.Add(d)}
}

// BoxOf computes the bounding box of a set of points.
func BoxOf(points []Vec3) Box3 {
	b := EmptyBox3()
	for _, p := range points {
		b.Extend(p)
	}
	return b
}

func safeExtent(e float32) float32 {
	if e > 0 && !math.IsInf(float64(e), 0) {
		return e
	}
	return 1
}
