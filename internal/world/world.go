package world

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/udisondev/skirmish/internal/geo"
	"github.com/udisondev/skirmish/internal/model"
)

// ErrAlreadyAdded is returned when an entity ID is registered twice.
var ErrAlreadyAdded = errors.New("entity already in world")

// DefaultBodyRadius is the radius used for ray tests against entities.
const DefaultBodyRadius = 0.5

type entry struct {
	obj    model.Damageable
	layer  model.LayerMask
	region regionKey
}

// World is the spatial index of one simulation session. It answers overlap and ray
// queries against registered damageables and the obstacle grid.
// Positions are owned by the entities; Refresh re-buckets moved ones.
type World struct {
	grid       *geo.Grid
	regionSize float64
	bodyRadius float64

	mu      sync.RWMutex
	regions map[regionKey]*Region
	entries map[model.EntityID]*entry
}

// New creates a world over grid. grid may be nil (open field, no obstacles).
func New(grid *geo.Grid) *World {
	return &World{
		grid:       grid,
		regionSize: DefaultRegionSize,
		bodyRadius: DefaultBodyRadius,
		regions:    make(map[regionKey]*Region),
		entries:    make(map[model.EntityID]*entry),
	}
}

// Grid returns the obstacle grid (may be nil).
func (w *World) Grid() *geo.Grid {
	return w.grid
}

// Add registers a damageable on the given layer.
func (w *World) Add(obj model.Damageable, layer model.LayerMask) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := obj.ID()
	if _, ok := w.entries[id]; ok {
		return fmt.Errorf("adding entity %d: %w", id, ErrAlreadyAdded)
	}

	e := &entry{obj: obj, layer: layer, region: keyOf(obj.Position(), w.regionSize)}
	w.entries[id] = e
	w.regionLocked(e.region).add(e)
	return nil
}

// Remove unregisters an entity. Unknown IDs are ignored.
func (w *World) Remove(id model.EntityID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	e, ok := w.entries[id]
	if !ok {
		return
	}
	delete(w.entries, id)
	if r, ok := w.regions[e.region]; ok {
		r.remove(id)
	}
}

// Get returns a registered entity.
func (w *World) Get(id model.EntityID) (model.Damageable, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.entries[id]
	if !ok {
		return nil, false
	}
	return e.obj, true
}

// Count returns the number of registered entities.
func (w *World) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.entries)
}

// Refresh moves entries whose position left their region. Called once per tick.
func (w *World) Refresh() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for id, e := range w.entries {
		key := keyOf(e.obj.Position(), w.regionSize)
		if key == e.region {
			continue
		}
		if r, ok := w.regions[e.region]; ok {
			r.remove(id)
		}
		e.region = key
		w.regionLocked(key).add(e)
	}
}

// OverlapSphere returns live damageables of mask whose position lies within radius of
// center, ordered by entity ID.
func (w *World) OverlapSphere(center model.Vec3, radius float64, mask model.LayerMask) []model.Damageable {
	if radius < 0 {
		return nil
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	// One extra ring of regions covers entities that moved since the last Refresh.
	minKey := keyOf(model.Vec3{X: center.X - radius, Z: center.Z - radius}, w.regionSize)
	maxKey := keyOf(model.Vec3{X: center.X + radius, Z: center.Z + radius}, w.regionSize)

	rSq := radius * radius
	var found []model.Damageable
	for rx := minKey.rx - 1; rx <= maxKey.rx+1; rx++ {
		for rz := minKey.rz - 1; rz <= maxKey.rz+1; rz++ {
			r, ok := w.regions[regionKey{rx, rz}]
			if !ok {
				continue
			}
			for _, e := range r.snapshot() {
				if !mask.Has(e.layer) || e.obj.IsDead() {
					continue
				}
				if e.obj.Position().DistanceSquared(center) <= rSq {
					found = append(found, e.obj)
				}
			}
		}
	}

	slices.SortFunc(found, func(a, b model.Damageable) int {
		return cmp.Compare(a.ID(), b.ID())
	})
	return found
}

// Raycast returns the nearest hit along dir within maxDist: obstacle cells when mask
// contains LayerObstacle, live entity bodies for the other layers in mask.
func (w *World) Raycast(origin, dir model.Vec3, maxDist float64, mask model.LayerMask) (model.RaycastHit, bool) {
	dir = dir.Normalize()
	if dir.IsZero() || maxDist <= 0 {
		return model.RaycastHit{}, false
	}

	best := model.RaycastHit{Distance: math.Inf(1)}
	hit := false

	if mask.Has(model.LayerObstacle) && w.grid != nil {
		if p, dist, ok := w.grid.Raycast(origin, dir, maxDist); ok {
			best = model.RaycastHit{Point: p, Distance: dist, Layer: model.LayerObstacle}
			hit = true
		}
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, e := range w.entries {
		if e.layer == model.LayerObstacle || !mask.Has(e.layer) || e.obj.IsDead() {
			continue
		}
		t, ok := raySphere(origin, dir, e.obj.Position(), w.bodyRadius)
		if !ok || t > maxDist || t > best.Distance {
			continue
		}
		// Ties go to the obstacle, then to the lower ID.
		if t == best.Distance && (best.Entity == nil || e.obj.ID() > best.Entity.ID()) {
			continue
		}
		best = model.RaycastHit{
			Point:    origin.Add(dir.Scale(t)),
			Distance: t,
			Entity:   e.obj,
			Layer:    e.layer,
		}
		hit = true
	}

	return best, hit
}

func (w *World) regionLocked(key regionKey) *Region {
	r, ok := w.regions[key]
	if !ok {
		r = newRegion(key)
		w.regions[key] = r
	}
	return r
}

// raySphere returns the distance along a unit ray to the first intersection with a
// sphere. A ray starting inside the sphere hits at distance 0.
func raySphere(origin, dir, center model.Vec3, radius float64) (float64, bool) {
	oc := origin.Sub(center)
	c := oc.LenSq() - radius*radius
	if c <= 0 {
		return 0, true
	}
	b := oc.Dot(dir)
	if b > 0 {
		return 0, false
	}
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	return -b - math.Sqrt(disc), true
}
