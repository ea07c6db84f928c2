package terrain

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/voxterra/collider/bvh"
	"github.com/voxterra/collider/voxel"
)

// FinePart is one leaf of the fine BVH: a terrain part id paired with the
// world AABB it was built with.
type FinePart struct {
	ID   PartID
	AABB AABB
}

// VoxelTerrainCollider bridges a voxel octree to a rigid-body physics
// engine. It owns the coarse and fine BVHs, the region cache, and drives
// rebuilds of the fine BVH in response to an active window change.
type VoxelTerrainCollider struct {
	InstanceID uuid.UUID

	worldSize      float32
	regionDepth    uint8
	borderMaterial uint8
	logger         Logger

	octree voxel.World
	cache  *RegionCache

	coarse *bvh.CoarseBVH
	fine   *bvh.FineBVH

	fineParts  []FinePart
	fineItems  []bvh.Item
	fineIndex  map[PartID]AABB
	fineAABB   AABB
	globalAABB AABB
}

// ColliderOption configures a VoxelTerrainCollider at construction time.
type ColliderOption func(*colliderConfig)

type colliderConfig struct {
	detailDepth uint8
	logger      Logger
}

// WithDetailDepth sets how many additional levels of depth, beyond
// regionDepth, the octree traversal descends into when populating a region
// cache entry. Default is 0 (trace at exactly region depth).
func WithDetailDepth(depth uint8) ColliderOption {
	return func(c *colliderConfig) { c.detailDepth = depth }
}

// WithLogger sets the Logger the collider reports lifecycle events to.
// Default is a no-op logger.
func WithLogger(logger Logger) ColliderOption {
	return func(c *colliderConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewVoxelTerrainCollider builds a collider over octree, a world cube of
// side worldSize partitioned into regions at regionDepth, using
// borderMaterial for faces that cross the world boundary. The coarse BVH is
// built once, over the world AABBs of every region at regionDepth (every
// region is treated as potentially non-empty at construction; true
// emptiness is discovered lazily as the region cache is populated, so the
// coarse BVH does not need to re-traverse the whole world up front). This
// means the coarse BVH's leaves are every region id, not strictly the
// non-empty ones: an always-empty region still costs one leaf slot and one
// (zero-face) cache entry the first time it's queried, but contributes zero
// triangles, so it is functionally equivalent to being absent.
func NewVoxelTerrainCollider(octree voxel.World, worldSize float32, regionDepth, borderMaterial uint8, opts ...ColliderOption) *VoxelTerrainCollider {
	cfg := colliderConfig{logger: NewNopLogger()}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &VoxelTerrainCollider{
		InstanceID:     uuid.New(),
		worldSize:      worldSize,
		regionDepth:    regionDepth,
		borderMaterial: borderMaterial,
		logger:         cfg.logger,
		octree:         octree,
		fine:           bvh.NewFineBVH(),
		fineIndex:      make(map[PartID]AABB),
	}
	c.cache = NewRegionCache(octree, worldSize, regionDepth, cfg.detailDepth, borderMaterial, cfg.logger)

	regions := allRegionsAtDepth(regionDepth)
	items := make([]bvh.Item, 0, len(regions))
	global := EmptyAABB()
	for _, r := range regions {
		box := r.WorldAABB(worldSize)
		global = global.Union(box)
		items = append(items, bvh.Item{Min: box.Min, Max: box.Max, ID: uint64(regionKey(r))})
	}
	c.coarse = bvh.BuildCoarseBVH(items)
	c.globalAABB = global

	return c
}

// allRegionsAtDepth enumerates every region coordinate at depth, in the
// same deterministic order RegionIDsOverlapping produces (sorted by depth
// then z, y, x).
func allRegionsAtDepth(depth uint8) []RegionID {
	cellsPerAxis := int32(1) << depth
	out := make([]RegionID, 0, int(cellsPerAxis)*int(cellsPerAxis)*int(cellsPerAxis))
	for z := int32(0); z < cellsPerAxis; z++ {
		for y := int32(0); y < cellsPerAxis; y++ {
			for x := int32(0); x < cellsPerAxis; x++ {
				out = append(out, RegionID{Coord: [3]int32{x, y, z}, Depth: depth})
			}
		}
	}
	return out
}

// regionKey packs a RegionID into a uint64 BVH item id. It reuses
// EncodePartID's coordinate/depth fields with faceIdx and triIdx pinned to
// 0, since a region id alone fits comfortably inside a PartID's bit budget.
func regionKey(r RegionID) PartID {
	id, _ := EncodePartID(r, 0, 0)
	return id
}

// UpdateTriangleBVH rebuilds the fine BVH over every face in every region
// overlapping active. It returns a fresh build id on success, to let a
// caller correlate a rebuild with downstream state (e.g. cache
// invalidation metrics).
func (c *VoxelTerrainCollider) UpdateTriangleBVH(active AABB) (uuid.UUID, error) {
	regions := c.overlappingRegions(active)

	c.fineParts = c.fineParts[:0]
	c.fineItems = c.fineItems[:0]
	for k := range c.fineIndex {
		delete(c.fineIndex, k)
	}

	for _, region := range regions {
		entry, err := c.cache.GetOrInsert(region)
		if err != nil {
			return uuid.UUID{}, fmt.Errorf("update triangle bvh: %w", err)
		}
		for i, aabb := range entry.FaceAABBs {
			for triIdx := uint8(0); triIdx < 2; triIdx++ {
				id, ok := EncodePartID(region, uint32(i), triIdx)
				if !ok {
					continue
				}
				c.fineParts = append(c.fineParts, FinePart{ID: id, AABB: aabb})
				c.fineItems = append(c.fineItems, bvh.Item{Min: aabb.Min, Max: aabb.Max, ID: uint64(id)})
				c.fineIndex[id] = aabb
			}
		}
	}

	c.fine.Rebuild(c.fineItems)
	c.fineAABB = UnionAll(finePartAABBs(c.fineParts))

	buildID := uuid.New()
	c.logger.Debugf("rebuilt fine bvh: %d regions, %d parts, build=%s", len(regions), len(c.fineParts), buildID)
	return buildID, nil
}

func finePartAABBs(parts []FinePart) []AABB {
	out := make([]AABB, len(parts))
	for i, p := range parts {
		out[i] = p.AABB
	}
	return out
}

// overlappingRegions returns every region whose world AABB overlaps active,
// read through the coarse BVH rather than re-enumerated from scratch.
func (c *VoxelTerrainCollider) overlappingRegions(active AABB) []RegionID {
	var out []RegionID
	c.coarse.Query(active.Min, active.Max, func(id uint64) bool {
		region, _, _, ok := DecodePartID(PartID(id))
		if ok {
			out = append(out, region)
		}
		return true
	})
	return out
}

// OnTerrainModified invalidates the cache entries for affected regions and,
// if any of them currently contributes to the fine BVH, clears the fine BVH
// so the next UpdateTriangleBVH call performs a full rebuild rather than
// serving stale triangles.
func (c *VoxelTerrainCollider) OnTerrainModified(affected []RegionID) {
	c.cache.Invalidate(affected)

	if c.fineAABB.Empty() {
		return
	}
	for _, r := range affected {
		if r.WorldAABB(c.worldSize).Overlaps(c.fineAABB) {
			c.fine.Rebuild(nil)
			c.fineParts = c.fineParts[:0]
			c.fineAABB = EmptyAABB()
			for k := range c.fineIndex {
				delete(c.fineIndex, k)
			}
			return
		}
	}
}

// Part decodes id and materializes its triangle. ok is false if the id
// decodes against a region that either isn't cached or whose cached face
// count no longer covers the encoded face index (a stale part, absorbed
// silently per the composite-shape contract).
func (c *VoxelTerrainCollider) Part(id PartID) (Triangle, bool) {
	region, faceIdx, triIdx, ok := DecodePartID(id)
	if !ok {
		return Triangle{}, false
	}
	entry, ok := c.cache.Peek(region)
	if !ok || int(faceIdx) >= len(entry.Faces) {
		return Triangle{}, false
	}
	tris := FaceToTriangles(entry.Faces[faceIdx], c.worldSize)
	return tris[triIdx], true
}

// AABBOf returns the world AABB associated with id among the collider's
// current fine parts, via a constant-time lookup.
func (c *VoxelTerrainCollider) AABBOf(id PartID) (AABB, bool) {
	aabb, ok := c.fineIndex[id]
	return aabb, ok
}

// FineParts returns the collider's current fine BVH leaf payloads.
func (c *VoxelTerrainCollider) FineParts() []FinePart { return c.fineParts }

// FineBVH returns the collider's current fine BVH.
func (c *VoxelTerrainCollider) FineBVH() *bvh.FineBVH { return c.fine }

// CoarseBVH returns the collider's static coarse BVH.
func (c *VoxelTerrainCollider) CoarseBVH() *bvh.CoarseBVH { return c.coarse }

// GlobalAABB returns the world AABB of the whole terrain.
func (c *VoxelTerrainCollider) GlobalAABB() AABB { return c.globalAABB }
