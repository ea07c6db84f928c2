// Package bvh implements the two bounding-volume hierarchies the terrain
// collider layers over region and triangle geometry: a coarse BVH built
// once over static regions, and a fine BVH rebuilt over the active working
// set. Both share the same 64-byte node layout.
package bvh

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Node mirrors a GPU-friendly BVH node layout: two vec4-padded bounds and
// four int32 fields, 64 bytes total. LeafCount == 0 marks an interior node;
// LeafCount > 0 marks a leaf spanning Items[LeafFirst:LeafFirst+LeafCount].
type Node struct {
	Min       mgl32.Vec3
	Max       mgl32.Vec3
	Left      int32
	Right     int32
	LeafFirst int32
	LeafCount int32
}

// ToBytes serializes the node in the same 64-byte layout a GPU traversal
// shader would expect: vec4-padded bounds followed by four little-endian
// int32 fields and 16 bytes of padding.
func (n *Node) ToBytes() []byte {
	buf := make([]byte, 64)

	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(n.Min.X()))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(n.Min.Y()))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(n.Min.Z()))
	binary.LittleEndian.PutUint32(buf[12:16], 0)

	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(n.Max.X()))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(n.Max.Y()))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(n.Max.Z()))
	binary.LittleEndian.PutUint32(buf[28:32], 0)

	binary.LittleEndian.PutUint32(buf[32:36], uint32(n.Left))
	binary.LittleEndian.PutUint32(buf[36:40], uint32(n.Right))
	binary.LittleEndian.PutUint32(buf[40:44], uint32(n.LeafFirst))
	binary.LittleEndian.PutUint32(buf[44:48], uint32(n.LeafCount))

	return buf
}

// Item is one leaf payload: a bounding box tagged with an opaque 64-bit id
// the caller assigned (an encoded RegionID or PartID).
type Item struct {
	Min, Max mgl32.Vec3
	ID       uint64
}

func (it Item) centroid() mgl32.Vec3 {
	return it.Min.Add(it.Max).Mul(0.5)
}

// Tree is a built BVH: Nodes[0] is the root, and Items holds the leaf
// payloads reordered into the layout the tree's LeafFirst/LeafCount ranges
// index into.
type Tree struct {
	Nodes []Node
	Items []Item
}

// Empty reports whether the tree has no leaves.
func (t *Tree) Empty() bool { return len(t.Items) == 0 }

// Bounds returns the root node's AABB, or a degenerate inverted box for an
// empty tree.
func (t *Tree) Bounds() (min, max mgl32.Vec3) {
	if len(t.Nodes) == 0 {
		inf := float32(1e30)
		return mgl32.Vec3{inf, inf, inf}, mgl32.Vec3{-inf, -inf, -inf}
	}
	return t.Nodes[0].Min, t.Nodes[0].Max
}

// Query calls visit for every leaf item whose box overlaps [qmin, qmax].
// Traversal stops early if visit returns false.
func (t *Tree) Query(qmin, qmax mgl32.Vec3, visit func(id uint64) bool) {
	if len(t.Nodes) == 0 {
		return
	}
	var walk func(idx int32) bool
	walk = func(idx int32) bool {
		if idx < 0 {
			return true
		}
		n := &t.Nodes[idx]
		if !overlaps(n.Min, n.Max, qmin, qmax) {
			return true
		}
		if n.LeafCount > 0 {
			for i := n.LeafFirst; i < n.LeafFirst+n.LeafCount; i++ {
				if !overlaps(t.Items[i].Min, t.Items[i].Max, qmin, qmax) {
					continue
				}
				if !visit(t.Items[i].ID) {
					return false
				}
			}
			return true
		}
		if !walk(n.Left) {
			return false
		}
		return walk(n.Right)
	}
	walk(0)
}

func overlaps(aMin, aMax, bMin, bMax mgl32.Vec3) bool {
	return aMin.X() <= bMax.X() && aMax.X() >= bMin.X() &&
		aMin.Y() <= bMax.Y() && aMax.Y() >= bMin.Y() &&
		aMin.Z() <= bMax.Z() && aMax.Z() >= bMin.Z()
}

func unionBounds(items []Item) (min, max mgl32.Vec3) {
	inf := float32(1e30)
	min = mgl32.Vec3{inf, inf, inf}
	max = mgl32.Vec3{-inf, -inf, -inf}
	for _, it := range items {
		min = componentMin(min, it.Min)
		max = componentMax(max, it.Max)
	}
	return min, max
}

func componentMin(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{minf(a.X(), b.X()), minf(a.Y(), b.Y()), minf(a.Z(), b.Z())}
}

func componentMax(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{maxf(a.X(), b.X()), maxf(a.Y(), b.Y()), maxf(a.Z(), b.Z())}
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
