package attack

import (
	"log/slog"
	"time"

	"github.com/udisondev/skirmish/internal/geo"
	"github.com/udisondev/skirmish/internal/model"
	"github.com/udisondev/skirmish/internal/projectile"
	"github.com/udisondev/skirmish/internal/simlog"
)

// RangedConfig configures single or burst projectile fire.
type RangedConfig struct {
	Damage             float64
	Cooldown           time.Duration
	Range              float64
	ProjectileSpeed    float64
	ProjectileLifetime time.Duration
	Spread             float64      // max yaw deviation in degrees
	Muzzles            []model.Vec3 // local offsets: X right, Y up, Z forward
	RandomMuzzle       bool
	BurstCount         int
	BurstDelay         time.Duration
	RequireLineOfSight bool
}

// Ranged fires projectiles from muzzle points. A burst schedules its later shots and
// does not re-check CanAttack between them; the cooldown runs from the burst start.
type Ranged struct {
	base
	cfg        RangedConfig
	nextMuzzle int
	noMuzzles  simlog.Once
}

// NewRanged creates a ranged strategy.
func NewRanged(cfg RangedConfig) *Ranged {
	if cfg.BurstCount < 1 {
		cfg.BurstCount = 1
	}
	return &Ranged{base: newBase(cfg.Cooldown, cfg.Range, cfg.RequireLineOfSight), cfg: cfg}
}

// CanAttack reports whether a burst may start at now.
func (r *Ranged) CanAttack(now time.Duration) bool {
	if len(r.cfg.Muzzles) == 0 {
		r.noMuzzles.Warn("ranged attack has no muzzle points", "entityID", r.self.ID)
		return false
	}
	if r.self.Launcher == nil {
		r.missing.Warn("ranged attack has no launcher", "entityID", r.self.ID)
		return false
	}
	return r.ready(now)
}

// Attack starts a burst: the first shot fires now, shot k at now + k*BurstDelay.
func (r *Ranged) Attack(now time.Duration) bool {
	if !r.CanAttack(now) {
		return false
	}
	r.markFired(now)

	damage := r.cfg.Damage * r.multiplier
	r.fire(damage)
	for k := 1; k < r.cfg.BurstCount; k++ {
		if r.self.Scheduler == nil {
			r.fire(damage)
			continue
		}
		r.self.Scheduler.After(r.self.ID, time.Duration(k)*r.cfg.BurstDelay, func() {
			r.fire(damage)
		})
	}

	if simlog.IsDebugEnabled() {
		slog.Debug("ranged attack",
			"entityID", r.self.ID,
			"shots", r.cfg.BurstCount,
			"damage", damage)
	}
	return true
}

// fire launches one projectile aimed at the target's current position.
func (r *Ranged) fire(damage float64) {
	pos := r.self.Body.Position()
	forward := r.self.Body.Forward()
	muzzle := muzzleWorld(pos, forward, r.pickMuzzle())

	dir := forward
	if r.target != nil && !r.target.IsDead() {
		if aim := r.target.Position().Sub(muzzle).Normalize(); !aim.IsZero() {
			dir = aim
		}
	}
	if r.cfg.Spread > 0 && r.self.Rand != nil {
		dir = geo.RotateY(dir, (r.self.Rand.Float64()*2-1)*r.cfg.Spread)
	}

	r.self.Launcher.Launch(projectile.Straight{
		Owner:     r.self.ID,
		Origin:    muzzle,
		Direction: dir,
		Speed:     r.cfg.ProjectileSpeed,
		Lifetime:  r.cfg.ProjectileLifetime,
		Damage:    damage,
		Mask:      r.self.mask(),
	})
}

func (r *Ranged) pickMuzzle() model.Vec3 {
	if r.cfg.RandomMuzzle && r.self.Rand != nil {
		return r.cfg.Muzzles[r.self.Rand.IntN(len(r.cfg.Muzzles))]
	}
	m := r.cfg.Muzzles[r.nextMuzzle%len(r.cfg.Muzzles)]
	r.nextMuzzle++
	return m
}

// muzzleWorld converts a local muzzle offset to a world position.
func muzzleWorld(pos, forward, local model.Vec3) model.Vec3 {
	right := geo.RotateY(forward, 90)
	return pos.
		Add(right.Scale(local.X)).
		Add(model.Up.Scale(local.Y)).
		Add(forward.Scale(local.Z))
}
