package model

// EntityID identifies an entity (enemy, player, projectile) in the simulation.
type EntityID uint32

// Damageable is anything that can receive damage and report health.
// Implemented by enemies and the player; attack strategies only depend on this.
type Damageable interface {
	ID() EntityID
	TakeDamage(amount float64)
	CurrentHealth() float64
	MaxHealth() float64
	IsDead() bool
	Position() Vec3
}

// Impulsable is optionally implemented by damageables that react to knockback.
type Impulsable interface {
	ApplyImpulse(impulse Vec3)
}

// Transform is the externally owned position/orientation of an entity.
type Transform interface {
	Position() Vec3
	SetPosition(p Vec3)
	Forward() Vec3
	SetForward(dir Vec3)
}

// Pathfinder plans and follows paths on the navigable surface.
// Must tolerate queries before a path is computed ("not yet arrived").
type Pathfinder interface {
	// SetDestination requests a path. Returns false if the point is not navigable.
	SetDestination(point Vec3) bool
	// RemainingDistance is the path length left; +Inf while the path is pending.
	RemainingDistance() float64
	IsPathPending() bool
	Stop()
	Resume()
	IsStopped() bool
	// SamplePosition returns the nearest navigable point within radius.
	SamplePosition(point Vec3, radius float64) (Vec3, bool)
	// Warp teleports the agent, dropping the current path.
	Warp(point Vec3)
	SetSpeed(speed float64)
	SetStoppingDistance(d float64)
}

// LayerMask selects which categories of objects a world query sees.
type LayerMask uint32

const (
	LayerPlayer LayerMask = 1 << iota
	LayerEnemy
	LayerObstacle

	LayerNone LayerMask = 0
	LayerAll  LayerMask = ^LayerMask(0)
)

// Has reports whether m includes any bit of l.
func (m LayerMask) Has(l LayerMask) bool {
	return m&l != 0
}

// RaycastHit describes the first thing a ray hit.
// Entity is nil when the ray stopped on level geometry.
type RaycastHit struct {
	Point    Vec3
	Distance float64
	Entity   Damageable
	Layer    LayerMask
}

// WorldQuery answers spatial questions about the world.
// Results are instantaneous snapshots.
type WorldQuery interface {
	OverlapSphere(center Vec3, radius float64, mask LayerMask) []Damageable
	Raycast(origin, dir Vec3, maxDist float64, mask LayerMask) (RaycastHit, bool)
}

// Presenter plays presentation cues (animation triggers, sound events, particles).
// The simulation never inspects what a cue does.
type Presenter interface {
	Trigger(cue string) error
}

// EliminationNotifier is told when an entity has been removed after death.
type EliminationNotifier interface {
	NotifyEliminated(id EntityID)
}
