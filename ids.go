package terrain

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// RegionID names an octant at a fixed region depth. Coord components are in
// [0, 2^Depth); two RegionIDs are equal iff they name the same octant.
type RegionID struct {
	Coord [3]int32
	Depth uint8
}

// Less gives RegionID a total order: by depth, then Z, then Y, then X,
// matching spec §3's "totally ordered for deterministic iteration".
func (r RegionID) Less(o RegionID) bool {
	if r.Depth != o.Depth {
		return r.Depth < o.Depth
	}
	if r.Coord[2] != o.Coord[2] {
		return r.Coord[2] < o.Coord[2]
	}
	if r.Coord[1] != o.Coord[1] {
		return r.Coord[1] < o.Coord[1]
	}
	return r.Coord[0] < o.Coord[0]
}

// WorldAABB returns the exact world-space bounds of the region, given the
// world's cube side length.
func (r RegionID) WorldAABB(worldSize float32) AABB {
	cellsPerAxis := float32(int64(1) << r.Depth)
	cellSize := worldSize / cellsPerAxis
	min := mgl32.Vec3{
		float32(r.Coord[0]) * cellSize,
		float32(r.Coord[1]) * cellSize,
		float32(r.Coord[2]) * cellSize,
	}
	max := min.Add(mgl32.Vec3{cellSize, cellSize, cellSize})
	return AABB{Min: min, Max: max}
}

// RegionIDsOverlapping returns, in deterministic order, every region at
// regionDepth whose world box overlaps aabb (closed intersection). Regions
// entirely outside [0, worldSize) on any axis are never returned.
func RegionIDsOverlapping(aabb AABB, worldSize float32, regionDepth uint8) []RegionID {
	if aabb.Empty() || worldSize <= 0 {
		return nil
	}
	cellsPerAxis := int64(1) << regionDepth
	cellSize := worldSize / float32(cellsPerAxis)

	lo := [3]int64{}
	hi := [3]int64{}
	minArr := [3]float32{aabb.Min.X(), aabb.Min.Y(), aabb.Min.Z()}
	maxArr := [3]float32{aabb.Max.X(), aabb.Max.Y(), aabb.Max.Z()}

	for axis := 0; axis < 3; axis++ {
		if minArr[axis] > worldSize || maxArr[axis] < 0 {
			return nil
		}
		lo[axis] = floorDivInt64(minArr[axis], cellSize)
		if float32(lo[axis])*cellSize == minArr[axis] {
			// a box starting exactly on a boundary also touches the region below.
			lo[axis]--
		}
		lo[axis] = clampInt64(lo[axis], 0, cellsPerAxis-1)
		hi[axis] = clampInt64(floorDivInt64(maxArr[axis], cellSize), 0, cellsPerAxis-1)
		if lo[axis] > hi[axis] {
			return nil
		}
	}

	var out []RegionID
	for z := lo[2]; z <= hi[2]; z++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for x := lo[0]; x <= hi[0]; x++ {
				out = append(out, RegionID{
					Coord: [3]int32{int32(x), int32(y), int32(z)},
					Depth: regionDepth,
				})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

func floorDivInt64(v, size float32) int64 {
	q := v / size
	f := int64(q)
	if q < 0 && float32(f) != q {
		f--
	}
	return f
}

func clampInt64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PartID is an opaque, bit-packed identifier for a single terrain triangle:
// a (region, face index within the region, sub-triangle index) triple.
//
// Bit layout (low to high): triIdx:1 | faceIdx:24 | depth:4 | z:11 | y:11 | x:11.
// Region coordinates are limited to [0, 2^11) and depth to [0, 16), both
// comfortably above the region depths (3-4) the spec names as typical; faceIdx
// is limited to [0, 2^24), the budget spec §4.1 calls out as sufficient for
// the largest region at the supported region depth.
type PartID uint64

const (
	partTriBits   = 1
	partFaceBits  = 24
	partDepthBits = 4
	partCoordBits = 11

	partTriShift   = 0
	partFaceShift  = partTriShift + partTriBits
	partDepthShift = partFaceShift + partFaceBits
	partZShift     = partDepthShift + partDepthBits
	partYShift     = partZShift + partCoordBits
	partXShift     = partYShift + partCoordBits

	maxFaceIdx  = uint32(1)<<partFaceBits - 1
	maxDepth    = uint8(1)<<partDepthBits - 1
	maxCoord    = int32(1)<<partCoordBits - 1
	coordMask64 = uint64(1)<<partCoordBits - 1
)

// EncodePartID bit-packs region, faceIdx and triIdx into a PartID. ok is
// false if any field is outside the packable range, in which case the
// returned id is meaningless.
func EncodePartID(region RegionID, faceIdx uint32, triIdx uint8) (id PartID, ok bool) {
	if faceIdx > maxFaceIdx || region.Depth > maxDepth || triIdx > 1 {
		return 0, false
	}
	for _, c := range region.Coord {
		if c < 0 || c > maxCoord {
			return 0, false
		}
	}
	v := uint64(triIdx&1) << partTriShift
	v |= uint64(faceIdx&uint32(uint64(1)<<partFaceBits-1)) << partFaceShift
	v |= uint64(region.Depth&maxDepth) << partDepthShift
	v |= (uint64(region.Coord[2]) & coordMask64) << partZShift
	v |= (uint64(region.Coord[1]) & coordMask64) << partYShift
	v |= (uint64(region.Coord[0]) & coordMask64) << partXShift
	return PartID(v), true
}

// DecodePartID is the inverse of EncodePartID. It is total over the uint64
// range: ok is always true since every bit pattern decodes to some
// syntactically valid (region, faceIdx, triIdx) triple (P1, spec §8).
func DecodePartID(id PartID) (region RegionID, faceIdx uint32, triIdx uint8, ok bool) {
	v := uint64(id)
	triIdx = uint8((v >> partTriShift) & 1)
	faceIdx = uint32((v >> partFaceShift) & (uint64(1)<<partFaceBits - 1))
	depth := uint8((v >> partDepthShift) & uint64(maxDepth))
	z := int32((v >> partZShift) & coordMask64)
	y := int32((v >> partYShift) & coordMask64)
	x := int32((v >> partXShift) & coordMask64)
	region = RegionID{Coord: [3]int32{x, y, z}, Depth: depth}
	return region, faceIdx, triIdx, true
}
