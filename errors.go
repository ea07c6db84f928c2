package terrain

import "errors"

// ErrCacheBuildFailed means the octree traversal reported malformed data
// while building a region cache entry. It is fatal to the collider instance
// that observed it; the caller should treat the voxel world as corrupt.
var ErrCacheBuildFailed = errors.New("terrain: region cache build failed")
