package terrain

// ActiveRegionTracker decides when the fine BVH's coverage must change in
// response to moving dynamic bodies, applying hysteresis so a rebuild isn't
// triggered on every physics step.
type ActiveRegionTracker struct {
	margin  float32
	current *AABB
}

// NewActiveRegionTracker builds a tracker that inflates the union of
// dynamic-body AABBs by margin on every axis before comparing against the
// current window.
func NewActiveRegionTracker(margin float32) *ActiveRegionTracker {
	return &ActiveRegionTracker{margin: margin}
}

// Update computes the union of dynamicAABBs and decides whether the active
// window must change:
//  1. If dynamicAABBs is empty, the window is cleared and (zero AABB, false)
//     is returned.
//  2. If there is no current window, or the (un-inflated) union is not
//     contained in the current one, or the margin-inflated union is at
//     least 2x smaller than the current window on any axis, the window is
//     replaced by the margin-inflated union and returned with ok=true.
//  3. Otherwise the current window is kept and ok=false.
//
// The containment check must compare the raw union against the current
// window, not the union re-inflated by margin: the stored window's boundary
// already sits margin away from the body that produced it, so re-inflating
// before the containment test would leave zero slack and trigger on any
// outward motion at all, defeating the hysteresis this margin exists for.
func (t *ActiveRegionTracker) Update(dynamicAABBs []AABB) (AABB, bool) {
	if len(dynamicAABBs) == 0 {
		t.current = nil
		return AABB{}, false
	}

	union := UnionAll(dynamicAABBs)
	needed := union.Inflate(t.margin)

	if t.current == nil || !t.current.Contains(union) || t.shrunkByHalf(needed) {
		c := needed
		t.current = &c
		return needed, true
	}
	return AABB{}, false
}

// shrunkByHalf reports whether needed (the margin-inflated union) is at
// least 2x smaller than the current window on any axis, the
// inward-hysteresis trigger that lets the window deflate once dynamic
// bodies cluster.
func (t *ActiveRegionTracker) shrunkByHalf(needed AABB) bool {
	cur := t.current.Extent()
	want := needed.Extent()
	return want.X()*2 <= cur.X() || want.Y()*2 <= cur.Y() || want.Z()*2 <= cur.Z()
}

// Current returns the tracker's active window, or false if there is none.
func (t *ActiveRegionTracker) Current() (AABB, bool) {
	if t.current == nil {
		return AABB{}, false
	}
	return *t.current, true
}
