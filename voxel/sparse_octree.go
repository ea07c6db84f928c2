package voxel

import (
	"math/bits"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Brick and micro-cell sizing mirrors a brick-map voxel store: voxels are
// grouped into fixed bricks, and a 64-bit occupancy mask over 2x2x2
// micro-cells lets a traversal skip an empty brick without touching its
// payload.
const (
	brickSize = 8
	microSize = 2
	microsPer = brickSize / microSize // 4
)

type brick struct {
	occupancy uint64 // one bit per 2x2x2 micro-cell, set if any voxel inside is non-air
	payload   [brickSize][brickSize][brickSize]uint8
}

func newBrick() *brick { return &brick{} }

func (b *brick) setVoxel(lx, ly, lz int, material uint8) {
	b.payload[lx][ly][lz] = material
	mx, my, mz := lx/microSize, ly/microSize, lz/microSize
	bit := uint64(1) << (mx + my*microsPer + mz*microsPer*microsPer)
	if material != 0 {
		b.occupancy |= bit
		return
	}
	for x := (lx / microSize) * microSize; x < (lx/microSize)*microSize+microSize; x++ {
		for y := (ly / microSize) * microSize; y < (ly/microSize)*microSize+microSize; y++ {
			for z := (lz / microSize) * microSize; z < (lz/microSize)*microSize+microSize; z++ {
				if b.payload[x][y][z] != 0 {
					return
				}
			}
		}
	}
	b.occupancy &^= bit
}

func (b *brick) isEmpty() bool { return b.occupancy == 0 }

func (b *brick) voxel(lx, ly, lz int) uint8 { return b.payload[lx][ly][lz] }

// SparseOctree is a reference, in-memory implementation of World: a uniform
// grid of LeafDepth resolution, stored sparsely as a map of bricks keyed by
// brick coordinate so that empty space costs nothing. It exists for tests
// and standalone use; it is not an optimized voxel engine (bulk
// edit/streaming/persistence are out of scope, matching the terrain
// collider's own non-goals around voxel storage).
type SparseOctree struct {
	WorldSize float32
	LeafDepth uint8

	mu     sync.RWMutex
	bricks map[[3]int32]*brick
}

// NewSparseOctree builds an empty octree over a cube of side worldSize,
// addressed down to leafDepth (2^leafDepth voxels per axis).
func NewSparseOctree(worldSize float32, leafDepth uint8) *SparseOctree {
	return &SparseOctree{
		WorldSize: worldSize,
		LeafDepth: leafDepth,
		bricks:    make(map[[3]int32]*brick),
	}
}

func (o *SparseOctree) voxelsPerAxis() int32 { return int32(1) << o.LeafDepth }

func (o *SparseOctree) voxelSize() float32 { return o.WorldSize / float32(o.voxelsPerAxis()) }

func (o *SparseOctree) split(vx, vy, vz int32) (brickCoord [3]int32, local [3]int) {
	bx, lx := floorDivMod(vx, brickSize)
	by, ly := floorDivMod(vy, brickSize)
	bz, lz := floorDivMod(vz, brickSize)
	return [3]int32{bx, by, bz}, [3]int{lx, ly, lz}
}

func floorDivMod(v int32, size int32) (q int32, r int) {
	q = v / size
	m := v % size
	if m < 0 {
		m += size
		q--
	}
	return q, int(m)
}

// SetVoxel sets the material at voxel coordinate (vx,vy,vz), creating or
// dropping the backing brick as needed. material 0 means empty.
func (o *SparseOctree) SetVoxel(vx, vy, vz int32, material uint8) {
	o.mu.Lock()
	defer o.mu.Unlock()
	bc, local := o.split(vx, vy, vz)
	b, ok := o.bricks[bc]
	if !ok {
		if material == 0 {
			return
		}
		b = newBrick()
		o.bricks[bc] = b
	}
	b.setVoxel(local[0], local[1], local[2], material)
	if b.isEmpty() {
		delete(o.bricks, bc)
	}
}

// GetVoxel returns the material at voxel coordinate (vx,vy,vz), or 0
// (empty) for unset or out-of-world coordinates.
func (o *SparseOctree) GetVoxel(vx, vy, vz int32) uint8 {
	if vx < 0 || vy < 0 || vz < 0 || vx >= o.voxelsPerAxis() || vy >= o.voxelsPerAxis() || vz >= o.voxelsPerAxis() {
		return 0
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	bc, local := o.split(vx, vy, vz)
	b, ok := o.bricks[bc]
	if !ok {
		return 0
	}
	return b.voxel(local[0], local[1], local[2])
}

var neighborOffsets = [6]struct {
	dx, dy, dz int32
	axis       Axis
	side       Side
}{
	{-1, 0, 0, AxisX, Negative},
	{1, 0, 0, AxisX, Positive},
	{0, -1, 0, AxisY, Negative},
	{0, 1, 0, AxisY, Positive},
	{0, 0, -1, AxisZ, Negative},
	{0, 0, 1, AxisZ, Positive},
}

// VisitFaces implements World by scanning every voxel from the one containing
// regionMin up to, but not including, one that starts exactly on regionMax
// (so adjacent regions never report the same voxel), and reporting a Face for
// each of its six neighbors that is empty or outside the world. Faces are
// reported in voxel scan order (z, then y, then x; per voxel in -X, +X, -Y,
// +Y, -Z, +Z order), not in depth-first octant order. Empty bricks are not
// stored, so voxels inside them read as empty without touching any payload;
// the occupancy mask itself is not consulted here.
func (o *SparseOctree) VisitFaces(regionMin, regionMax mgl32.Vec3, maxDepth uint8, borderMaterial uint8, visit FaceVisitor) error {
	// This reference implementation is a flat, uniform grid, not a true
	// multi-resolution octree: it always reports faces at its native
	// LeafDepth. maxDepth below LeafDepth would require merging sibling
	// voxels into coarser cells, which a real octree's interior nodes give
	// for free; callers driving this implementation should set detail
	// depth so that regionDepth+detailDepth >= LeafDepth.
	depth := o.LeafDepth
	size := o.voxelSize()
	n := o.voxelsPerAxis()

	lo := clampVoxel(regionMin, size, n)
	hi := clampVoxel(regionMax, size, n)
	maxArr := [3]float32{regionMax.X(), regionMax.Y(), regionMax.Z()}
	for axis := 0; axis < 3; axis++ {
		// a voxel starting exactly on regionMax belongs to the next region.
		if hi[axis] > lo[axis] && float32(hi[axis])*size == maxArr[axis] {
			hi[axis]--
		}
	}

	o.mu.RLock()
	defer o.mu.RUnlock()

	for vz := lo[2]; vz <= hi[2]; vz++ {
		for vy := lo[1]; vy <= hi[1]; vy++ {
			for vx := lo[0]; vx <= hi[0]; vx++ {
				material := o.materialLocked(vx, vy, vz)
				if material == 0 {
					continue
				}
				for _, off := range neighborOffsets {
					nx, ny, nz := vx+off.dx, vy+off.dy, vz+off.dz
					var neighborMaterial uint8
					if nx < 0 || ny < 0 || nz < 0 || nx >= n || ny >= n || nz >= n {
						neighborMaterial = 0 // treat as empty; exposed face below uses borderMaterial for rendering semantics
					} else {
						neighborMaterial = o.materialLocked(nx, ny, nz)
					}
					if neighborMaterial != 0 {
						continue
					}
					m := material
					if nx < 0 || ny < 0 || nz < 0 || nx >= n || ny >= n || nz >= n {
						m = borderMaterial
					}
					if err := visit(Face{
						CellCoord: [3]int32{vx, vy, vz},
						CellDepth: depth,
						Axis:      off.axis,
						Side:      off.side,
						Material:  m,
					}); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func (o *SparseOctree) materialLocked(vx, vy, vz int32) uint8 {
	bc, local := o.split(vx, vy, vz)
	b, ok := o.bricks[bc]
	if !ok {
		return 0
	}
	return b.voxel(local[0], local[1], local[2])
}

func clampVoxel(p mgl32.Vec3, size float32, n int32) [3]int32 {
	idx := func(v float32) int32 {
		q := int32(v / size)
		if v < 0 {
			q = -1
		}
		if q < 0 {
			q = 0
		}
		if q >= n {
			q = n - 1
		}
		return q
	}
	return [3]int32{idx(p.X()), idx(p.Y()), idx(p.Z())}
}

// popcountOccupancy is used by tests to sanity-check the occupancy mask
// against the payload it summarizes.
func popcountOccupancy(b *brick) int {
	return bits.OnesCount64(b.occupancy)
}
