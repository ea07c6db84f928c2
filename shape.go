package terrain

import "github.com/voxterra/collider/bvh"

// DynamicShapeHandle is the untyped entry point a physics engine without a
// static Triangle type can use: it carries the same geometry as the typed
// path, just behind a type the engine doesn't need to know about ahead of
// time.
type DynamicShapeHandle struct {
	Triangle Triangle
}

// CompositeShape satisfies the "composite of triangles" contract a physics
// engine expects of terrain. It holds no state of its own; every query
// reads through to the collider it wraps.
type CompositeShape struct {
	collider *VoxelTerrainCollider
}

// NewCompositeShape wraps collider as a composite shape.
func NewCompositeShape(collider *VoxelTerrainCollider) *CompositeShape {
	return &CompositeShape{collider: collider}
}

// BVH returns the fine BVH the engine should walk for broadphase-to-
// narrowphase candidate selection.
func (s *CompositeShape) BVH() *bvh.FineBVH {
	return s.collider.FineBVH()
}

// AABBOf returns the world AABB of part_id among the collider's current
// fine parts.
func (s *CompositeShape) AABBOf(id PartID) (AABB, bool) {
	return s.collider.AABBOf(id)
}

// MapPart invokes visit with the materialized triangle for id. If the part
// id is stale or unknown, MapPart returns without invoking visit: a
// degenerate miss, not an error.
func (s *CompositeShape) MapPart(id PartID, visit func(Triangle)) {
	tri, ok := s.collider.Part(id)
	if !ok {
		return
	}
	visit(tri)
}

// MapPartTyped is the statically-typed fast path; it resolves to the same
// geometry as MapPart.
func (s *CompositeShape) MapPartTyped(id PartID, visit func(Triangle)) {
	s.MapPart(id, visit)
}

// MapPartDynamic is the untyped entry point: the same geometry as MapPart,
// delivered via DynamicShapeHandle for engines that dispatch over shape
// kinds dynamically rather than by static type.
func (s *CompositeShape) MapPartDynamic(id PartID, visit func(DynamicShapeHandle)) {
	tri, ok := s.collider.Part(id)
	if !ok {
		return
	}
	visit(DynamicShapeHandle{Triangle: tri})
}
