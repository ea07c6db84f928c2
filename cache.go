package terrain

import (
	"sync"

	"github.com/voxterra/collider/voxel"
)

// CacheEntry is one region's extracted face list and derived AABBs.
// Faces and FaceAABBs are parallel slices; ordering is the order the
// voxel.World traversal reports faces in.
type CacheEntry struct {
	Region    RegionID
	Faces     []Face
	FaceAABBs []AABB
	WorldAABB AABB
	Version   uint64
}

// RegionCache is a lazy, per-region store of extracted faces, built on
// first access and rebuilt on invalidation. It is safe for concurrent use.
type RegionCache struct {
	mu              sync.RWMutex
	entries         map[RegionID]*CacheEntry
	world           voxel.World
	worldSize       float32
	regionDepth     uint8
	detailDepth     uint8
	borderMaterial  uint8
	logger          Logger
	versionAssigned map[RegionID]uint64
}

// NewRegionCache builds an empty cache that extracts faces from world,
// traversing down to regionDepth+detailDepth, substituting borderMaterial
// for faces that cross the world boundary.
func NewRegionCache(world voxel.World, worldSize float32, regionDepth, detailDepth, borderMaterial uint8, logger Logger) *RegionCache {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &RegionCache{
		entries:         make(map[RegionID]*CacheEntry),
		world:           world,
		worldSize:       worldSize,
		regionDepth:     regionDepth,
		detailDepth:     detailDepth,
		borderMaterial:  borderMaterial,
		logger:          logger,
		versionAssigned: make(map[RegionID]uint64),
	}
}

// GetOrInsert returns the cache entry for region, building it on first
// access. The returned pointer is a snapshot: subsequent invalidation of
// the region does not mutate the entry the caller already holds, it only
// removes it from the cache so the next GetOrInsert rebuilds.
func (c *RegionCache) GetOrInsert(region RegionID) (*CacheEntry, error) {
	c.mu.RLock()
	if e, ok := c.entries[region]; ok {
		c.mu.RUnlock()
		return e, nil
	}
	c.mu.RUnlock()

	entry, err := c.build(region)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[region]; ok {
		// lost a race with a concurrent build of the same region.
		return e, nil
	}
	c.entries[region] = entry
	return entry, nil
}

// Peek returns the currently cached entry for region without building it,
// for callers that must not trigger a traversal (e.g. stale-part checks).
func (c *RegionCache) Peek(region RegionID) (*CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[region]
	return e, ok
}

func (c *RegionCache) build(region RegionID) (*CacheEntry, error) {
	maxDepth := region.Depth + c.detailDepth
	box := region.WorldAABB(c.worldSize)

	entry := &CacheEntry{Region: region}
	var buildErr error
	err := c.world.VisitFaces(box.Min, box.Max, maxDepth, c.borderMaterial, func(vf voxel.Face) error {
		f := fromVoxelFace(vf)
		entry.Faces = append(entry.Faces, f)
		aabb := FaceAABB(f, c.worldSize)
		entry.FaceAABBs = append(entry.FaceAABBs, aabb)
		entry.WorldAABB = entry.WorldAABB.Union(aabb)
		return nil
	})
	if err != nil {
		buildErr = err
	}
	if buildErr != nil {
		c.logger.Errorf("region cache build failed for %+v: %v", region, buildErr)
		return nil, ErrCacheBuildFailed
	}
	if entry.WorldAABB.Empty() {
		entry.WorldAABB = EmptyAABB()
	}

	c.mu.Lock()
	entry.Version = c.versionAssigned[region] + 1
	c.versionAssigned[region] = entry.Version
	c.mu.Unlock()

	return entry, nil
}

// Invalidate drops the cached entry of every region in regions. Entries are
// matched by exact RegionID: a region given at a different depth does not
// drop the cached entries it spans. The next GetOrInsert for a dropped region
// rebuilds it and bumps its version.
func (c *RegionCache) Invalidate(regions []RegionID) {
	if len(regions) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range regions {
		delete(c.entries, r)
	}
}

// Clear drops every cached entry.
func (c *RegionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[RegionID]*CacheEntry)
}

// Len reports how many regions currently have a cached entry.
func (c *RegionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func fromVoxelFace(vf voxel.Face) Face {
	return Face{
		CellCoord: vf.CellCoord,
		CellDepth: vf.CellDepth,
		Axis:      Axis(vf.Axis),
		Side:      Side(vf.Side),
		Material:  vf.Material,
	}
}
