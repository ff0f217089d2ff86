package world

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/udisondev/skirmish/internal/model"
)

// DefaultRegionSize is the edge length of one region in world units.
const DefaultRegionSize = 16.0

// regionKey addresses a region on the XZ plane.
type regionKey struct {
	rx, rz int32
}

// keyOf maps a world position to its region.
func keyOf(p model.Vec3, size float64) regionKey {
	return regionKey{
		rx: int32(math.Floor(p.X / size)),
		rz: int32(math.Floor(p.Z / size)),
	}
}

// Region is one square bucket of the spatial index.
type Region struct {
	key regionKey

	objects sync.Map // map[model.EntityID]*entry

	// Snapshot cache (immutable slice), rebuilt lazily after Add/Remove.
	snapshotCache atomic.Value // []*entry
	snapshotDirty atomic.Bool
}

func newRegion(key regionKey) *Region {
	r := &Region{key: key}
	r.snapshotDirty.Store(true)
	return r
}

func (r *Region) add(e *entry) {
	r.objects.Store(e.obj.ID(), e)
	r.snapshotDirty.Store(true)
}

func (r *Region) remove(id model.EntityID) {
	r.objects.Delete(id)
	r.snapshotDirty.Store(true)
}

// snapshot returns the region's entries. The returned slice must not be modified.
func (r *Region) snapshot() []*entry {
	if !r.snapshotDirty.Load() {
		if cache := r.snapshotCache.Load(); cache != nil {
			return cache.([]*entry)
		}
	}

	entries := make([]*entry, 0, 16)
	r.objects.Range(func(_, value any) bool {
		entries = append(entries, value.(*entry))
		return true
	})
	r.snapshotCache.Store(entries)
	r.snapshotDirty.Store(false)
	return entries
}
