package bvh

import (
	"runtime"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// sahBins is the number of buckets the binned surface-area-heuristic build
// sorts centroids into per axis before choosing a split plane. 12 is the
// usual sweet spot between split quality and per-rebuild cost.
const sahBins = 12

// fineLeafThreshold stops splitting once a node holds this few items: below
// it, SAH search cost outweighs the savings from a tighter split.
const fineLeafThreshold = 4

// FineBVH is the triangle-level index: rebuilt on every active-window
// change with a quality-first binned-SAH split, since (unlike the coarse
// BVH) a poor fine-tree directly costs narrowphase query time for as long
// as the active window stands.
type FineBVH struct {
	tree Tree
}

// NewFineBVH returns an empty fine BVH, ready for its first Rebuild.
func NewFineBVH() *FineBVH { return &FineBVH{} }

// Tree exposes the built hierarchy for traversal.
func (f *FineBVH) Tree() *Tree { return &f.tree }

// Rebuild replaces the tree's contents with a fresh SAH build over items.
// Node and Item backing arrays are truncated and reused rather than
// reallocated, so repeated rebuilds at a stable item count do not churn the
// heap.
func (f *FineBVH) Rebuild(items []Item) {
	f.tree.Nodes = f.tree.Nodes[:0]
	f.tree.Items = f.tree.Items[:0]
	if len(items) == 0 {
		return
	}

	work := make([]Item, len(items))
	copy(work, items)

	if cap(f.tree.Items) < len(items) {
		f.tree.Items = make([]Item, 0, len(items))
	}

	b := &sahBuilder{
		tree:    &f.tree,
		workers: workerCount(len(items)),
	}
	b.build(work)
}

// Query calls visit for every item whose box overlaps [qmin, qmax].
func (f *FineBVH) Query(qmin, qmax mgl32.Vec3, visit func(id uint64) bool) {
	f.tree.Query(qmin, qmax, visit)
}

func workerCount(n int) int {
	if n < 2048 {
		return 1
	}
	w := runtime.GOMAXPROCS(0)
	if w > 8 {
		w = 8
	}
	if w < 1 {
		w = 1
	}
	return w
}

type sahBuilder struct {
	tree    *Tree
	workers int
}

type sahSplit struct {
	axis int
	pos  float32
	cost float32
	ok   bool
}

func (b *sahBuilder) build(items []Item) int32 {
	idx := int32(len(b.tree.Nodes))
	b.tree.Nodes = append(b.tree.Nodes, Node{Left: -1, Right: -1, LeafFirst: -1, LeafCount: 0})

	min, max := unionBounds(items)
	b.tree.Nodes[idx].Min = min
	b.tree.Nodes[idx].Max = max

	if len(items) <= fineLeafThreshold {
		return b.makeLeaf(idx, items)
	}

	split := b.bestSplit(items, min, max)
	if !split.ok {
		return b.makeLeaf(idx, items)
	}

	sort.Slice(items, func(i, j int) bool {
		return centroidAxis(items[i], split.axis) < centroidAxis(items[j], split.axis)
	})
	mid := partitionIndex(items, split.axis, split.pos)
	if mid == 0 || mid == len(items) {
		mid = len(items) / 2
	}

	left := b.build(items[:mid])
	right := b.build(items[mid:])
	b.tree.Nodes[idx].Left = left
	b.tree.Nodes[idx].Right = right
	return idx
}

func (b *sahBuilder) makeLeaf(idx int32, items []Item) int32 {
	b.tree.Nodes[idx].LeafFirst = int32(len(b.tree.Items))
	b.tree.Nodes[idx].LeafCount = int32(len(items))
	b.tree.Items = append(b.tree.Items, items...)
	return idx
}

// bestSplit evaluates sahBins candidate planes on each of the 3 axes,
// scoring each by surface-area-weighted child item counts, and returns the
// cheapest. The per-axis evaluation is independent, so for large item
// counts the 3 axes are evaluated concurrently across a small worker pool.
func (b *sahBuilder) bestSplit(items []Item, min, max mgl32.Vec3) sahSplit {
	extent := max.Sub(min)
	results := make([]sahSplit, 3)

	eval := func(axis int) sahSplit {
		axisExtent := axisComponent(extent, axis)
		if axisExtent <= 0 {
			return sahSplit{}
		}
		return evaluateAxis(items, axis, axisComponent(min, axis), axisExtent)
	}

	if b.workers <= 1 {
		for axis := 0; axis < 3; axis++ {
			results[axis] = eval(axis)
		}
	} else {
		var wg sync.WaitGroup
		for axis := 0; axis < 3; axis++ {
			wg.Add(1)
			go func(axis int) {
				defer wg.Done()
				results[axis] = eval(axis)
			}(axis)
		}
		wg.Wait()
	}

	best := sahSplit{cost: float32(1e30)}
	for _, r := range results {
		if r.ok && r.cost < best.cost {
			best = r
		}
	}
	return best
}

func evaluateAxis(items []Item, axis int, axisMin, axisExtent float32) sahSplit {
	type bin struct {
		count int
		min   mgl32.Vec3
		max   mgl32.Vec3
	}
	bins := make([]bin, sahBins)
	for i := range bins {
		inf := float32(1e30)
		bins[i].min = mgl32.Vec3{inf, inf, inf}
		bins[i].max = mgl32.Vec3{-inf, -inf, -inf}
	}

	binIndex := func(it Item) int {
		c := centroidAxis(it, axis)
		rel := (c - axisMin) / axisExtent
		bi := int(rel * float32(sahBins))
		if bi < 0 {
			bi = 0
		}
		if bi >= sahBins {
			bi = sahBins - 1
		}
		return bi
	}

	for _, it := range items {
		bi := binIndex(it)
		bins[bi].count++
		bins[bi].min = componentMin(bins[bi].min, it.Min)
		bins[bi].max = componentMax(bins[bi].max, it.Max)
	}

	// prefix sums from the left, suffix sums from the right, matching a
	// single linear pass over cumulative bounding-box surface area per
	// candidate split plane.
	leftCount := make([]int, sahBins+1)
	leftArea := make([]float32, sahBins+1)
	accMin := mgl32.Vec3{1e30, 1e30, 1e30}
	accMax := mgl32.Vec3{-1e30, -1e30, -1e30}
	accCount := 0
	for i := 0; i < sahBins; i++ {
		leftCount[i] = accCount
		leftArea[i] = surfaceArea(accMin, accMax)
		accCount += bins[i].count
		accMin = componentMin(accMin, bins[i].min)
		accMax = componentMax(accMax, bins[i].max)
	}
	leftCount[sahBins] = accCount
	leftArea[sahBins] = surfaceArea(accMin, accMax)

	rightCount := make([]int, sahBins+1)
	rightArea := make([]float32, sahBins+1)
	accMin = mgl32.Vec3{1e30, 1e30, 1e30}
	accMax = mgl32.Vec3{-1e30, -1e30, -1e30}
	accCount = 0
	for i := sahBins; i > 0; i-- {
		rightCount[i] = accCount
		rightArea[i] = surfaceArea(accMin, accMax)
		accCount += bins[i-1].count
		accMin = componentMin(accMin, bins[i-1].min)
		accMax = componentMax(accMax, bins[i-1].max)
	}
	rightCount[0] = accCount
	rightArea[0] = surfaceArea(accMin, accMax)

	best := sahSplit{cost: float32(1e30)}
	for i := 1; i < sahBins; i++ {
		if leftCount[i] == 0 || rightCount[i] == 0 {
			continue
		}
		cost := leftArea[i]*float32(leftCount[i]) + rightArea[i]*float32(rightCount[i])
		if cost < best.cost {
			pos := axisMin + axisExtent*float32(i)/float32(sahBins)
			best = sahSplit{axis: axis, pos: pos, cost: cost, ok: true}
		}
	}
	return best
}

func surfaceArea(min, max mgl32.Vec3) float32 {
	if min.X() > max.X() {
		return 0
	}
	e := max.Sub(min)
	return 2 * (e.X()*e.Y() + e.Y()*e.Z() + e.Z()*e.X())
}

func partitionIndex(sortedItems []Item, axis int, pos float32) int {
	for i, it := range sortedItems {
		if centroidAxis(it, axis) >= pos {
			return i
		}
	}
	return len(sortedItems)
}

func axisComponent(v mgl32.Vec3, axis int) float32 {
	switch axis {
	case 0:
		return v.X()
	case 1:
		return v.Y()
	default:
		return v.Z()
	}
}
