package projectile

import (
	"log/slog"
	"sync"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/udisondev/skirmish/internal/geo"
	"github.com/udisondev/skirmish/internal/model"
	"github.com/udisondev/skirmish/internal/simlog"
)

// DefaultHitRadius is used when a straight shot has no radius.
const DefaultHitRadius = 0.3

// Straight describes a projectile flying in a straight line at constant speed.
type Straight struct {
	Owner     model.EntityID
	Origin    model.Vec3
	Direction model.Vec3
	Speed     float64
	Lifetime  time.Duration
	Damage    float64
	Radius    float64
	Mask      model.LayerMask
}

// Lobbed describes a projectile following a parabolic arc to a point fixed at launch.
type Lobbed struct {
	Owner      model.EntityID
	Start      model.Vec3
	Target     model.Vec3
	FlightTime time.Duration
	Height     float64
	// OnImpact runs when the projectile lands, outside the manager lock.
	OnImpact func(point model.Vec3)
}

// Launcher fires projectiles. Implemented by Manager.
type Launcher interface {
	Launch(s Straight) model.EntityID
	Lob(l Lobbed) model.EntityID
}

type straightShot struct {
	id  model.EntityID
	cfg Straight
	pos model.Vec3
	dir model.Vec3
	age float64
}

type lobbedShot struct {
	id       model.EntityID
	cfg      Lobbed
	tween    *gween.Tween
	progress float64
	pos      model.Vec3
}

// Snapshot is a read-only view of a live projectile.
type Snapshot struct {
	ID       model.EntityID
	Owner    model.EntityID
	Position model.Vec3
	Lobbed   bool
	Progress float64 // lobbed only, 0..1
}

// Manager owns every live projectile of a session and advances them each tick.
type Manager struct {
	world model.WorldQuery
	ids   *model.IDGenerator

	mu       sync.Mutex
	straight []*straightShot
	lobbed   []*lobbedShot

	hits   int
	impact int
}

// NewManager creates a projectile manager resolving hits through world.
func NewManager(world model.WorldQuery, ids *model.IDGenerator) *Manager {
	return &Manager{world: world, ids: ids}
}

// Launch fires a straight projectile.
func (m *Manager) Launch(s Straight) model.EntityID {
	dir := s.Direction.Normalize()
	if s.Radius <= 0 {
		s.Radius = DefaultHitRadius
	}

	shot := &straightShot{
		id:  m.ids.NextProjectileID(),
		cfg: s,
		pos: s.Origin,
		dir: dir,
	}

	m.mu.Lock()
	m.straight = append(m.straight, shot)
	m.mu.Unlock()

	if simlog.IsDebugEnabled() {
		slog.Debug("projectile launched",
			"projectileID", shot.id,
			"owner", s.Owner,
			"dir", dir)
	}
	return shot.id
}

// Lob fires a lobbed projectile. The landing point is fixed now and never re-aimed.
func (m *Manager) Lob(l Lobbed) model.EntityID {
	shot := &lobbedShot{
		id:    m.ids.NextProjectileID(),
		cfg:   l,
		tween: gween.New(0, 1, float32(l.FlightTime.Seconds()), ease.Linear),
		pos:   l.Start,
	}

	m.mu.Lock()
	m.lobbed = append(m.lobbed, shot)
	m.mu.Unlock()

	if simlog.IsDebugEnabled() {
		slog.Debug("projectile lobbed",
			"projectileID", shot.id,
			"owner", l.Owner,
			"target", l.Target)
	}
	return shot.id
}

// Update advances every projectile by dt seconds, applies hits and removes spent ones.
func (m *Manager) Update(dt float64) {
	if dt <= 0 {
		return
	}

	m.mu.Lock()
	straight := m.straight
	lobbed := m.lobbed
	m.straight = nil
	m.lobbed = nil
	m.mu.Unlock()

	keptStraight := straight[:0]
	for _, s := range straight {
		if m.advanceStraight(s, dt) {
			keptStraight = append(keptStraight, s)
		}
	}

	var landed []*lobbedShot
	keptLobbed := lobbed[:0]
	for _, l := range lobbed {
		progress, done := l.tween.Update(float32(dt))
		l.progress = float64(progress)
		if done {
			l.progress = 1
			l.pos = l.cfg.Target
			landed = append(landed, l)
			continue
		}
		l.pos = geo.Parabola(l.cfg.Start, l.cfg.Target, l.cfg.Height, l.progress)
		keptLobbed = append(keptLobbed, l)
	}

	m.mu.Lock()
	// Projectiles launched during this update were appended to the fresh slices.
	m.straight = append(keptStraight, m.straight...)
	m.lobbed = append(keptLobbed, m.lobbed...)
	m.impact += len(landed)
	m.mu.Unlock()

	for _, l := range landed {
		if l.cfg.OnImpact != nil {
			l.cfg.OnImpact(l.cfg.Target)
		}
	}
}

// advanceStraight moves one shot. Returns false once it hit something or expired.
func (m *Manager) advanceStraight(s *straightShot, dt float64) bool {
	stepLen := s.cfg.Speed * dt
	if stepLen > 0 && m.world != nil {
		if hit, ok := m.world.Raycast(s.pos, s.dir, stepLen, s.cfg.Mask|model.LayerObstacle); ok {
			if hit.Entity == nil {
				return false
			}
			if hit.Entity.ID() != s.cfg.Owner {
				m.applyHit(s, hit.Entity)
				return false
			}
		}
	}

	s.pos = s.pos.Add(s.dir.Scale(stepLen))

	if m.world != nil {
		for _, target := range m.world.OverlapSphere(s.pos, s.cfg.Radius, s.cfg.Mask) {
			if target.ID() == s.cfg.Owner {
				continue
			}
			m.applyHit(s, target)
			return false
		}
	}

	s.age += dt
	return s.age < s.cfg.Lifetime.Seconds()
}

func (m *Manager) applyHit(s *straightShot, target model.Damageable) {
	target.TakeDamage(s.cfg.Damage)

	m.mu.Lock()
	m.hits++
	m.mu.Unlock()

	if simlog.IsDebugEnabled() {
		slog.Debug("projectile hit",
			"projectileID", s.id,
			"owner", s.cfg.Owner,
			"targetID", target.ID(),
			"damage", s.cfg.Damage)
	}
}

// Count returns the number of live projectiles.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.straight) + len(m.lobbed)
}

// Hits returns how many projectiles struck a target.
func (m *Manager) Hits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits
}

// Impacts returns how many lobbed projectiles landed.
func (m *Manager) Impacts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.impact
}

// Snapshot returns the live projectiles.
func (m *Manager) Snapshot() []Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Snapshot, 0, len(m.straight)+len(m.lobbed))
	for _, s := range m.straight {
		out = append(out, Snapshot{ID: s.id, Owner: s.cfg.Owner, Position: s.pos})
	}
	for _, l := range m.lobbed {
		out = append(out, Snapshot{ID: l.id, Owner: l.cfg.Owner, Position: l.pos, Lobbed: true, Progress: l.progress})
	}
	return out
}
