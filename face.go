package terrain

import "github.com/go-gl/mathgl/mgl32"

// Axis names one of the three world axes a face is perpendicular to.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Side names which side of the voxel the face sits on along its Axis.
type Side uint8

const (
	Negative Side = iota
	Positive
)

// Face describes one exposed voxel face, as reported by the octree
// traversal: the voxel at CellCoord (at CellDepth) has a face perpendicular
// to Axis, on Side, carrying Material.
type Face struct {
	CellCoord [3]int32
	CellDepth uint8
	Axis      Axis
	Side      Side
	Material  uint8
}

// Triangle is three world-space points; its outward normal is implicit in
// the winding of V0, V1, V2.
type Triangle struct {
	V0, V1, V2 mgl32.Vec3
}

// Normal returns the geometric normal implied by the triangle's winding.
func (t Triangle) Normal() mgl32.Vec3 {
	e1 := t.V1.Sub(t.V0)
	e2 := t.V2.Sub(t.V0)
	return e1.Cross(e2).Normalize()
}

// cellSizeAt returns the edge length of a voxel at the given depth in a cube
// world of side worldSize.
func cellSizeAt(worldSize float32, depth uint8) float32 {
	return worldSize / float32(int64(1)<<depth)
}

// cellOrigin returns the minimum corner of the voxel in world space.
func cellOrigin(coord [3]int32, size float32) mgl32.Vec3 {
	return mgl32.Vec3{float32(coord[0]) * size, float32(coord[1]) * size, float32(coord[2]) * size}
}

// faceCorners returns the four corners of a unit-square face (scaled by
// size, offset by origin) in a fixed, winding-consistent order: the order
// chosen is counter-clockwise viewed from the face's outward direction, so
// that the two triangles {0,1,2} and {0,2,3} both carry the outward normal.
//
// The per-axis/per-side tables mirror the fixed vertex orderings a
// greedy-meshing voxel renderer uses to avoid backface culling artifacts:
// each (axis, side) pair has one hardcoded winding, not a computed one.
func faceCorners(axis Axis, side Side, origin mgl32.Vec3, size float32) [4]mgl32.Vec3 {
	x0, y0, z0 := origin.X(), origin.Y(), origin.Z()
	x1, y1, z1 := x0+size, y0+size, z0+size

	switch axis {
	case AxisX:
		if side == Negative {
			// outward -X: viewed from -X looking toward +X, CCW order.
			return [4]mgl32.Vec3{
				{x0, y0, z0}, {x0, y0, z1}, {x0, y1, z1}, {x0, y1, z0},
			}
		}
		// outward +X
		return [4]mgl32.Vec3{
			{x1, y0, z0}, {x1, y1, z0}, {x1, y1, z1}, {x1, y0, z1},
		}
	case AxisY:
		if side == Negative {
			// outward -Y
			return [4]mgl32.Vec3{
				{x0, y0, z0}, {x1, y0, z0}, {x1, y0, z1}, {x0, y0, z1},
			}
		}
		// outward +Y
		return [4]mgl32.Vec3{
			{x0, y1, z0}, {x0, y1, z1}, {x1, y1, z1}, {x1, y1, z0},
		}
	default: // AxisZ
		if side == Negative {
			// outward -Z
			return [4]mgl32.Vec3{
				{x0, y0, z0}, {x0, y1, z0}, {x1, y1, z0}, {x1, y0, z0},
			}
		}
		// outward +Z
		return [4]mgl32.Vec3{
			{x0, y0, z1}, {x1, y0, z1}, {x1, y1, z1}, {x0, y1, z1},
		}
	}
}

// FaceToTriangles converts an exposed voxel face into two world-space
// triangles whose winding makes the geometric normal point outward. The
// face is split along the {0,1,2}/{0,2,3} diagonal of its four corners.
func FaceToTriangles(f Face, worldSize float32) [2]Triangle {
	size := cellSizeAt(worldSize, f.CellDepth)
	origin := cellOrigin(f.CellCoord, size)
	c := faceCorners(f.Axis, f.Side, origin, size)
	return [2]Triangle{
		{V0: c[0], V1: c[1], V2: c[2]},
		{V0: c[0], V1: c[2], V2: c[3]},
	}
}

const faceAABBEpsilonFactor = 1e-5

// FaceAABB returns the world-space AABB of a face, inflated by a fixed,
// deterministic epsilon proportional to worldSize to absorb floating-point
// jitter in broadphase queries.
func FaceAABB(f Face, worldSize float32) AABB {
	tris := FaceToTriangles(f, worldSize)
	box := EmptyAABB()
	for _, tri := range tris {
		box = box.Union(triangleAABB(tri))
	}
	return box.Inflate(faceAABBEpsilonFactor * worldSize)
}

func triangleAABB(t Triangle) AABB {
	min := componentMin(componentMin(t.V0, t.V1), t.V2)
	max := componentMax(componentMax(t.V0, t.V1), t.V2)
	return AABB{Min: min, Max: max}
}
