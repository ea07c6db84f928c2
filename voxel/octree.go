// Package voxel defines the read-only contract a sparse voxel octree must
// satisfy to back a terrain collider, plus a small in-memory reference
// implementation for tests and standalone use.
//
// Everything here is an external collaborator from the collider's point of
// view: voxel storage, editing, and persistence are out of scope. The
// package intentionally has no dependency on the terrain package so the
// collider can depend on World without an import cycle.
package voxel

import "github.com/go-gl/mathgl/mgl32"

// Axis names one of the three world axes a face is perpendicular to.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Side names which side of the voxel the face sits on along its Axis.
type Side uint8

const (
	Negative Side = iota
	Positive
)

// Face is the wire format the octree traversal reports an exposed face in.
// It mirrors the collider's own Face record field for field; the collider
// converts it on receipt rather than sharing the type, to keep this package
// free of a dependency on the collider.
type Face struct {
	CellCoord [3]int32
	CellDepth uint8
	Axis      Axis
	Side      Side
	Material  uint8
}

// FaceVisitor receives each exposed face a traversal reports, in the
// traversal's own deterministic order (each World implementation chooses it).
type FaceVisitor func(Face) error

// World is the read-only traversal contract a voxel octree must satisfy.
// Implementations own their own storage and concurrency; VisitFaces must be
// safe to call from multiple goroutines concurrently with each other (but
// not concurrently with a mutation of the same region, which is the
// caller's responsibility to serialize against).
type World interface {
	// VisitFaces visits every exposed face of a solid voxel whose bounding
	// box lies within [regionMin, regionMax], down to maxDepth. A face
	// across the world boundary is reported with the given border
	// material instead of being skipped.
	VisitFaces(regionMin, regionMax mgl32.Vec3, maxDepth uint8, borderMaterial uint8, visit FaceVisitor) error
}
