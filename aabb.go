package terrain

import "github.com/go-gl/mathgl/mgl32"

// AABB is an axis-aligned bounding box in world space. Min and Max are
// component-wise; Min is not required to be finite unless the box is valid
// (see Empty).
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyAABB returns an AABB that contains nothing and unions with anything.
func EmptyAABB() AABB {
	inf := float32(1e30)
	return AABB{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// Empty reports whether the box contains no points.
func (b AABB) Empty() bool {
	return b.Min.X() > b.Max.X() || b.Min.Y() > b.Max.Y() || b.Min.Z() > b.Max.Z()
}

// Union returns the smallest AABB containing both b and o.
func (b AABB) Union(o AABB) AABB {
	if b.Empty() {
		return o
	}
	if o.Empty() {
		return b
	}
	return AABB{
		Min: componentMin(b.Min, o.Min),
		Max: componentMax(b.Max, o.Max),
	}
}

// Overlaps reports whether b and o intersect, counting shared faces or edges
// as overlapping (closed intersection, per spec).
func (b AABB) Overlaps(o AABB) bool {
	if b.Empty() || o.Empty() {
		return false
	}
	return b.Min.X() <= o.Max.X() && b.Max.X() >= o.Min.X() &&
		b.Min.Y() <= o.Max.Y() && b.Max.Y() >= o.Min.Y() &&
		b.Min.Z() <= o.Max.Z() && b.Max.Z() >= o.Min.Z()
}

// Contains reports whether o lies entirely within b (closed).
func (b AABB) Contains(o AABB) bool {
	if o.Empty() {
		return true
	}
	if b.Empty() {
		return false
	}
	return b.Min.X() <= o.Min.X() && b.Max.X() >= o.Max.X() &&
		b.Min.Y() <= o.Min.Y() && b.Max.Y() >= o.Max.Y() &&
		b.Min.Z() <= o.Min.Z() && b.Max.Z() >= o.Max.Z()
}

// Inflate returns a copy of b expanded by amount on every axis, both
// directions.
func (b AABB) Inflate(amount float32) AABB {
	d := mgl32.Vec3{amount, amount, amount}
	return AABB{Min: b.Min.Sub(d), Max: b.Max.Add(d)}
}

// Extent returns Max - Min, component-wise.
func (b AABB) Extent() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box.
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func componentMin(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{min32(a.X(), b.X()), min32(a.Y(), b.Y()), min32(a.Z(), b.Z())}
}

func componentMax(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{max32(a.X(), b.X()), max32(a.Y(), b.Y()), max32(a.Z(), b.Z())}
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// UnionAll returns the union of a sequence of AABBs, or an empty AABB for an
// empty sequence.
func UnionAll(boxes []AABB) AABB {
	out := EmptyAABB()
	for _, b := range boxes {
		out = out.Union(b)
	}
	return out
}
