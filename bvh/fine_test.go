package bvh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func gridItems(n int) []Item {
	items := make([]Item, 0, n*n*n)
	id := uint64(0)
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			for z := 0; z < n; z++ {
				fx, fy, fz := float32(x), float32(y), float32(z)
				items = append(items, Item{
					Min: mgl32.Vec3{fx, fy, fz},
					Max: mgl32.Vec3{fx + 1, fy + 1, fz + 1},
					ID:  id,
				})
				id++
			}
		}
	}
	return items
}

func TestFineBVHRebuildEmpty(t *testing.T) {
	f := NewFineBVH()
	f.Rebuild(nil)
	if !f.Tree().Empty() {
		t.Fatal("expected empty tree after rebuilding with no items")
	}
}

func TestFineBVHRebuildRetainsAllItems(t *testing.T) {
	f := NewFineBVH()
	items := gridItems(6) // 216 items, exercises multiple splits
	f.Rebuild(items)

	if len(f.Tree().Items) != len(items) {
		t.Fatalf("expected %d items in rebuilt tree, got %d", len(items), len(f.Tree().Items))
	}
	seen := map[uint64]bool{}
	for _, it := range f.Tree().Items {
		seen[it.ID] = true
	}
	if len(seen) != len(items) {
		t.Fatalf("expected %d distinct ids after rebuild, got %d", len(items), len(seen))
	}
}

func TestFineBVHRebuildIsIdempotentInCount(t *testing.T) {
	f := NewFineBVH()
	items := gridItems(4)
	f.Rebuild(items)
	firstLen := len(f.Tree().Items)
	f.Rebuild(items)
	if len(f.Tree().Items) != firstLen {
		t.Fatalf("item count changed across rebuilds: %d then %d", firstLen, len(f.Tree().Items))
	}
}

func TestFineBVHQueryFindsContainedItem(t *testing.T) {
	f := NewFineBVH()
	items := gridItems(5)
	f.Rebuild(items)

	var found []uint64
	f.Query(mgl32.Vec3{2, 2, 2}, mgl32.Vec3{2.5, 2.5, 2.5}, func(id uint64) bool {
		found = append(found, id)
		return true
	})
	if len(found) == 0 {
		t.Fatal("expected at least one item to overlap the query box")
	}
}

func TestFineBVHRebuildReusesBackingArray(t *testing.T) {
	f := NewFineBVH()
	items := gridItems(6)
	f.Rebuild(items)
	itemsCap := cap(f.Tree().Items)
	nodesCap := cap(f.Tree().Nodes)

	smaller := items[:len(items)/2]
	f.Rebuild(smaller)
	if cap(f.Tree().Items) > itemsCap {
		t.Fatalf("expected Items backing array reused, cap grew from %d to %d", itemsCap, cap(f.Tree().Items))
	}
	if cap(f.Tree().Nodes) > nodesCap {
		t.Fatalf("expected Nodes backing array reused, cap grew from %d to %d", nodesCap, cap(f.Tree().Nodes))
	}
}

func TestFineBVHHighItemCountUsesWorkerPool(t *testing.T) {
	f := NewFineBVH()
	items := gridItems(14) // 2744 items, over the worker-pool threshold
	f.Rebuild(items)
	if len(f.Tree().Items) != len(items) {
		t.Fatalf("expected all %d items retained, got %d", len(items), len(f.Tree().Items))
	}
}
