package bvh

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// CoarseBVH is the static, region-level index: built once over the
// terrain's regions and never rebuilt during a run. Its split
// strategy is a plain median split on the longest axis, the same
// recursive-build shape a one-shot TLAS build uses when build quality
// doesn't need to trade against per-frame rebuild cost.
type CoarseBVH struct {
	tree Tree
}

// BuildCoarseBVH builds a CoarseBVH over items. items is not retained; a
// local copy is sorted and partitioned during the build.
func BuildCoarseBVH(items []Item) *CoarseBVH {
	b := &CoarseBVH{}
	if len(items) == 0 {
		return b
	}
	work := make([]Item, len(items))
	copy(work, items)
	b.tree.Items = make([]Item, 0, len(items))
	medianSplitBuild(work, &b.tree)
	return b
}

// Tree exposes the built hierarchy for traversal or GPU upload.
func (b *CoarseBVH) Tree() *Tree { return &b.tree }

// Query calls visit for every item whose box overlaps [qmin, qmax].
func (b *CoarseBVH) Query(qmin, qmax mgl32.Vec3, visit func(id uint64) bool) {
	b.tree.Query(qmin, qmax, visit)
}

func medianSplitBuild(items []Item, tree *Tree) int32 {
	idx := int32(len(tree.Nodes))
	tree.Nodes = append(tree.Nodes, Node{Left: -1, Right: -1, LeafFirst: -1, LeafCount: 0})

	min, max := unionBounds(items)
	tree.Nodes[idx].Min = min
	tree.Nodes[idx].Max = max

	if len(items) == 1 {
		tree.Nodes[idx].LeafFirst = int32(len(tree.Items))
		tree.Nodes[idx].LeafCount = 1
		tree.Items = append(tree.Items, items[0])
		return idx
	}

	extent := max.Sub(min)
	axis := 0
	axisExtent := extent.X()
	if extent.Y() > axisExtent {
		axis, axisExtent = 1, extent.Y()
	}
	if extent.Z() > axisExtent {
		axis = 2
	}

	sort.Slice(items, func(i, j int) bool {
		return centroidAxis(items[i], axis) < centroidAxis(items[j], axis)
	})

	mid := len(items) / 2
	left := medianSplitBuild(items[:mid], tree)
	right := medianSplitBuild(items[mid:], tree)
	tree.Nodes[idx].Left = left
	tree.Nodes[idx].Right = right
	return idx
}

func centroidAxis(it Item, axis int) float32 {
	c := it.centroid()
	switch axis {
	case 0:
		return c.X()
	case 1:
		return c.Y()
	default:
		return c.Z()
	}
}
