// Package terrain bridges a hierarchical voxel world to a rigid-body physics
// engine that expects triangle-level intersection queries.
//
// It exposes the terrain as a single composite shape: logically an infinite
// sea of triangles, physically materialized on demand only in the
// neighborhood of moving bodies. The octree that backs the terrain, the
// rigid-body solver, and the broadphase are all external collaborators; this
// package only implements the region-bounded face extraction, the two-level
// bounding-volume hierarchy, the active-region tracker, and the lazy region
// cache that sit between them.
package terrain
