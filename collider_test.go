package terrain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxterra/collider/voxel"
)

func newTestOctree() *voxel.SparseOctree {
	return voxel.NewSparseOctree(8, 3) // world side 8, 8 voxels per axis (size 1 each)
}

func TestColliderEmptyWorld(t *testing.T) {
	octree := newTestOctree()
	c := NewVoxelTerrainCollider(octree, 8, 2, 32, WithDetailDepth(1))

	_, err := c.UpdateTriangleBVH(c.GlobalAABB())
	require.NoError(t, err)

	assert.Empty(t, c.FineParts())
	assert.True(t, c.FineBVH().Tree().Empty())

	_, ok := c.Part(PartID(12345))
	assert.False(t, ok, "part query against empty terrain should be a miss, not an error")
}

func TestColliderSingleSolidVoxelScenario(t *testing.T) {
	octree := newTestOctree()
	octree.SetVoxel(4, 4, 4, 1)
	c := NewVoxelTerrainCollider(octree, 8, 2, 32, WithDetailDepth(1))

	tracker := NewActiveRegionTracker(1.0)
	window, ok := tracker.Update([]AABB{box(3, 3, 3, 5, 5, 5)})
	require.True(t, ok)
	assert.Equal(t, box(2, 2, 2, 6, 6, 6), window)

	_, err := c.UpdateTriangleBVH(window)
	require.NoError(t, err)

	parts := c.FineParts()
	require.Len(t, parts, 12, "six exposed faces x two triangles")

	voxelBounds := box(4, 4, 4, 5, 5, 5).Inflate(1e-3)
	for _, p := range parts {
		assert.True(t, voxelBounds.Contains(p.AABB), "part AABB %+v should lie within the voxel's bounds (±epsilon)", p.AABB)
		tri, ok := c.Part(p.ID)
		require.True(t, ok)
		n := tri.Normal()
		axisAligned := (abs32(n.X()) > 0.99 && n.Y() == 0 && n.Z() == 0) ||
			(abs32(n.Y()) > 0.99 && n.X() == 0 && n.Z() == 0) ||
			(abs32(n.Z()) > 0.99 && n.X() == 0 && n.Y() == 0)
		assert.True(t, axisAligned, "normal %v should point along one of the six axes", n)
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func TestColliderMotionWithinMarginSkipsRebuild(t *testing.T) {
	octree := newTestOctree()
	octree.SetVoxel(4, 4, 4, 1)
	tracker := NewActiveRegionTracker(1.0)

	_, ok := tracker.Update([]AABB{box(3, 3, 3, 5, 5, 5)})
	require.True(t, ok)

	_, ok = tracker.Update([]AABB{box(3.3, 3, 3, 5.3, 5, 5)})
	assert.False(t, ok, "small movement within margin should not request a rebuild")
}

func TestColliderMotionBeyondMarginTriggersDisjointWindow(t *testing.T) {
	tracker := NewActiveRegionTracker(1.0)
	_, ok := tracker.Update([]AABB{box(3, 3, 3, 5, 5, 5)})
	require.True(t, ok)

	window2, ok := tracker.Update([]AABB{box(10, 3, 3, 12, 5, 5)})
	require.True(t, ok)
	assert.Equal(t, box(9, 2, 2, 13, 6, 6), window2)
}

func TestColliderTerrainEditUnderWindowRebuilds(t *testing.T) {
	octree := newTestOctree()
	octree.SetVoxel(4, 4, 4, 1)
	c := NewVoxelTerrainCollider(octree, 8, 2, 32, WithDetailDepth(1))

	window := box(2, 2, 2, 6, 6, 6)
	_, err := c.UpdateTriangleBVH(window)
	require.NoError(t, err)
	firstCount := len(c.FineParts())
	require.Equal(t, 12, firstCount)

	region := RegionID{Coord: [3]int32{2, 2, 2}, Depth: 2} // region containing voxel (4,4,4) at region depth 2 over an 8-wide, depth-2 world (cell size 2)
	entryBefore, err := c.cache.GetOrInsert(region)
	require.NoError(t, err)
	versionBefore := entryBefore.Version

	octree.SetVoxel(4, 5, 4, 1) // add a voxel inside the same region, changes exposed faces
	c.OnTerrainModified([]RegionID{region})

	_, err = c.UpdateTriangleBVH(window)
	require.NoError(t, err)

	entryAfter, err := c.cache.GetOrInsert(region)
	require.NoError(t, err)
	assert.Equal(t, versionBefore+1, entryAfter.Version)
	assert.NotEqual(t, firstCount, len(c.FineParts()), "adding a second adjacent voxel changes the exposed face count")
}

func TestColliderCrossRegionBody(t *testing.T) {
	octree := newTestOctree()
	// region depth 2 over world size 8 => region side length 2.
	// place voxels straddling the region boundary at x=4.
	octree.SetVoxel(3, 4, 4, 1)
	octree.SetVoxel(4, 4, 4, 1)
	c := NewVoxelTerrainCollider(octree, 8, 2, 32, WithDetailDepth(1))

	window := box(2, 3, 3, 6, 5, 5)
	_, err := c.UpdateTriangleBVH(window)
	require.NoError(t, err)
	require.NotEmpty(t, c.FineParts())

	regionLo := RegionID{Coord: [3]int32{1, 2, 2}, Depth: 2}
	regionHi := RegionID{Coord: [3]int32{2, 2, 2}, Depth: 2}
	var sawLo, sawHi bool
	for _, p := range c.FineParts() {
		region, _, _, ok := DecodePartID(p.ID)
		require.True(t, ok)
		if region == regionLo {
			sawLo = true
		}
		if region == regionHi {
			sawHi = true
		}
	}
	assert.True(t, sawLo && sawHi, "cross-region body should produce parts from both regions")
}

func TestColliderUpdateTriangleBVHDeterministic(t *testing.T) {
	octree := newTestOctree()
	octree.SetVoxel(4, 4, 4, 1)
	octree.SetVoxel(2, 2, 2, 1)

	c1 := NewVoxelTerrainCollider(octree, 8, 2, 32, WithDetailDepth(1))
	c2 := NewVoxelTerrainCollider(octree, 8, 2, 32, WithDetailDepth(1))

	window := box(0, 0, 0, 8, 8, 8)
	_, err := c1.UpdateTriangleBVH(window)
	require.NoError(t, err)
	_, err = c2.UpdateTriangleBVH(window)
	require.NoError(t, err)

	require.Equal(t, len(c1.FineParts()), len(c2.FineParts()))
	for i := range c1.FineParts() {
		assert.Equal(t, c1.FineParts()[i], c2.FineParts()[i])
	}
}

func TestColliderOnTerrainModifiedPartsNoLongerResolve(t *testing.T) {
	octree := newTestOctree()
	octree.SetVoxel(4, 4, 4, 1)
	c := NewVoxelTerrainCollider(octree, 8, 2, 32, WithDetailDepth(1))

	window := box(2, 2, 2, 6, 6, 6)
	_, err := c.UpdateTriangleBVH(window)
	require.NoError(t, err)
	staleIDs := make([]PartID, len(c.FineParts()))
	for i, p := range c.FineParts() {
		staleIDs[i] = p.ID
	}

	region := RegionID{Coord: [3]int32{2, 2, 2}, Depth: 2}
	octree.SetVoxel(4, 4, 4, 0) // remove the voxel entirely
	c.OnTerrainModified([]RegionID{region})

	for _, id := range staleIDs {
		_, ok := c.Part(id)
		assert.False(t, ok, "part from an invalidated, not-yet-rebuilt region should not resolve")
	}
}

