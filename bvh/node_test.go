package bvh

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestNodeToBytesLength(t *testing.T) {
	n := Node{Min: mgl32.Vec3{1, 2, 3}, Max: mgl32.Vec3{4, 5, 6}, Left: -1, Right: -1, LeafFirst: 0, LeafCount: 1}
	buf := n.ToBytes()
	if len(buf) != 64 {
		t.Fatalf("ToBytes length = %d, want 64", len(buf))
	}
	gotMinX := math.Float32frombits(uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24)
	if gotMinX != 1 {
		t.Fatalf("encoded Min.X = %v, want 1", gotMinX)
	}
}

func TestTreeQueryFindsOverlapping(t *testing.T) {
	items := []Item{
		{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}, ID: 1},
		{Min: mgl32.Vec3{10, 10, 10}, Max: mgl32.Vec3{11, 11, 11}, ID: 2},
	}
	b := BuildCoarseBVH(items)
	var found []uint64
	b.Query(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{2, 2, 2}, func(id uint64) bool {
		found = append(found, id)
		return true
	})
	if len(found) != 1 || found[0] != 1 {
		t.Fatalf("expected only id 1 to match, got %v", found)
	}
}

func TestTreeQueryStopsEarly(t *testing.T) {
	items := []Item{
		{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}, ID: 1},
		{Min: mgl32.Vec3{1, 1, 1}, Max: mgl32.Vec3{2, 2, 2}, ID: 2},
	}
	b := BuildCoarseBVH(items)
	calls := 0
	b.Query(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{5, 5, 5}, func(id uint64) bool {
		calls++
		return false
	})
	if calls != 1 {
		t.Fatalf("expected traversal to stop after first visit, got %d calls", calls)
	}
}

func TestTreeEmptyQueryNoOp(t *testing.T) {
	b := BuildCoarseBVH(nil)
	called := false
	b.Query(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}, func(id uint64) bool {
		called = true
		return true
	})
	if called {
		t.Fatal("expected no visits against an empty tree")
	}
}
