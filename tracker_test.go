package terrain

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func box(minX, minY, minZ, maxX, maxY, maxZ float32) AABB {
	return AABB{Min: mgl32.Vec3{minX, minY, minZ}, Max: mgl32.Vec3{maxX, maxY, maxZ}}
}

func TestTrackerEmptyInputClearsWindow(t *testing.T) {
	tr := NewActiveRegionTracker(1)
	got, ok := tr.Update([]AABB{box(0, 0, 0, 1, 1, 1)})
	if !ok {
		t.Fatal("expected first non-empty update to trigger a rebuild")
	}
	_ = got

	_, ok = tr.Update(nil)
	if ok {
		t.Fatal("expected empty dynamicAABBs to not request a rebuild")
	}
	if _, has := tr.Current(); has {
		t.Fatal("expected window cleared after empty update")
	}
}

func TestTrackerFirstUpdateAlwaysTriggers(t *testing.T) {
	tr := NewActiveRegionTracker(2)
	got, ok := tr.Update([]AABB{box(0, 0, 0, 1, 1, 1)})
	if !ok {
		t.Fatal("expected first update to trigger")
	}
	want := box(-2, -2, -2, 3, 3, 3)
	if got != want {
		t.Fatalf("got window %+v, want %+v", got, want)
	}
}

func TestTrackerContainedMovementDoesNotTrigger(t *testing.T) {
	tr := NewActiveRegionTracker(2)
	tr.Update([]AABB{box(0, 0, 0, 1, 1, 1)}) // window ~[-2,3]^3

	_, ok := tr.Update([]AABB{box(0.5, 0.5, 0.5, 1.2, 1.2, 1.2)})
	if ok {
		t.Fatal("expected small movement within the margin to not trigger a rebuild")
	}
}

func TestTrackerOutwardMovementTriggers(t *testing.T) {
	tr := NewActiveRegionTracker(1)
	tr.Update([]AABB{box(0, 0, 0, 1, 1, 1)}) // window [-1,2]^3

	got, ok := tr.Update([]AABB{box(0, 0, 0, 10, 10, 10)})
	if !ok {
		t.Fatal("expected body moving outside the window to trigger a rebuild")
	}
	if got.Max.X() < 10 {
		t.Fatalf("new window should cover the body's expanded AABB, got %+v", got)
	}
}

func TestTrackerInwardShrinkTriggers(t *testing.T) {
	tr := NewActiveRegionTracker(0)
	tr.Update([]AABB{box(0, 0, 0, 10, 10, 10)}) // window [0,10]^3, extent 10

	// shrink to extent < 5 on every axis (2x smaller than 10)
	_, ok := tr.Update([]AABB{box(4, 4, 4, 6, 6, 6)})
	if !ok {
		t.Fatal("expected shrinking to less than half the window extent to trigger a rebuild")
	}
}

func TestTrackerModerateShrinkDoesNotTrigger(t *testing.T) {
	tr := NewActiveRegionTracker(0)
	tr.Update([]AABB{box(0, 0, 0, 10, 10, 10)}) // extent 10

	// shrink to extent 6, still contained, not yet 2x smaller
	_, ok := tr.Update([]AABB{box(2, 2, 2, 8, 8, 8)})
	if ok {
		t.Fatal("expected moderate shrink (not yet 2x) to not trigger a rebuild")
	}
}
