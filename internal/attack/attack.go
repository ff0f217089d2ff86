package attack

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/udisondev/skirmish/internal/config"
	"github.com/udisondev/skirmish/internal/model"
	"github.com/udisondev/skirmish/internal/projectile"
	"github.com/udisondev/skirmish/internal/sched"
	"github.com/udisondev/skirmish/internal/simlog"
)

// Strategy decides when an entity may attack and applies the attack's effects.
type Strategy interface {
	Initialize(self Attacker, target model.Damageable)
	SetTarget(target model.Damageable)
	// CanAttack is a pure function of now, distance to target and sight checks.
	CanAttack(now time.Duration) bool
	// Attack re-checks CanAttack(now) and applies effects. Returns false when it did nothing.
	Attack(now time.Duration) bool
	SetDamageMultiplier(m float64)
	DamageMultiplier() float64
	Range() float64
}

// Attacker is the attacking entity as strategies see it.
type Attacker struct {
	ID        model.EntityID
	Body      model.Transform
	World     model.WorldQuery
	Scheduler *sched.Scheduler
	Launcher  projectile.Launcher
	Rand      *rand.Rand
	// TargetMask selects who attacks can hurt. Zero means LayerPlayer.
	TargetMask model.LayerMask
}

func (a Attacker) mask() model.LayerMask {
	if a.TargetMask == model.LayerNone {
		return model.LayerPlayer
	}
	return a.TargetMask
}

// New builds a strategy from config.
func New(cfg config.AttackConfig) (Strategy, error) {
	switch cfg.Kind {
	case config.AttackMelee:
		return NewMelee(meleeConfig(cfg)), nil
	case config.AttackRanged:
		return NewRanged(rangedConfig(cfg)), nil
	case config.AttackLobbed:
		return NewLobbed(lobbedConfig(cfg)), nil
	case config.AttackComposite:
		if cfg.Melee == nil || cfg.Ranged == nil {
			return nil, fmt.Errorf("building composite attack: %w", config.ErrInvalidValue)
		}
		ranged, err := New(*cfg.Ranged)
		if err != nil {
			return nil, fmt.Errorf("building composite ranged: %w", err)
		}
		return NewComposite(NewMelee(meleeConfig(*cfg.Melee)), ranged, cfg.MeleeRadius), nil
	default:
		return nil, fmt.Errorf("building attack: %w", config.ErrUnknownAttack)
	}
}

func meleeConfig(cfg config.AttackConfig) MeleeConfig {
	return MeleeConfig{
		Damage:             cfg.Damage,
		Cooldown:           cfg.Cooldown,
		Range:              cfg.Range,
		Radius:             cfg.Radius,
		AttackAngle:        cfg.AttackAngle,
		OriginOffset:       cfg.OriginOffset,
		Knockback:          cfg.Knockback,
		KnockUp:            cfg.KnockUp,
		RequireLineOfSight: cfg.RequireLineOfSight,
	}
}

func rangedConfig(cfg config.AttackConfig) RangedConfig {
	return RangedConfig{
		Damage:             cfg.Damage,
		Cooldown:           cfg.Cooldown,
		Range:              cfg.Range,
		ProjectileSpeed:    cfg.ProjectileSpeed,
		ProjectileLifetime: cfg.ProjectileLifetime,
		Spread:             cfg.Spread,
		Muzzles:            config.Vecs(cfg.Muzzles),
		RandomMuzzle:       cfg.RandomMuzzle,
		BurstCount:         cfg.BurstCount,
		BurstDelay:         cfg.BurstDelay,
		RequireLineOfSight: cfg.RequireLineOfSight,
	}
}

func lobbedConfig(cfg config.AttackConfig) LobbedConfig {
	return LobbedConfig{
		Damage:           cfg.Damage,
		Cooldown:         cfg.Cooldown,
		Range:            cfg.Range,
		FlightTime:       cfg.FlightTime,
		ArcHeight:        cfg.ArcHeight,
		SplashRadius:     cfg.SplashRadius,
		Fragments:        cfg.Fragments,
		FragmentDamage:   cfg.FragmentDamage,
		FragmentSpeed:    cfg.FragmentSpeed,
		FragmentLifetime: cfg.FragmentLifetime,
	}
}

// base holds cooldown, target and multiplier state shared by the single strategies.
type base struct {
	self   Attacker
	target model.Damageable

	cooldown   time.Duration
	rng        float64
	requireLOS bool

	lastAttack  time.Duration
	hasAttacked bool
	multiplier  float64

	missing simlog.Once
}

func newBase(cooldown time.Duration, rng float64, requireLOS bool) base {
	return base{cooldown: cooldown, rng: rng, requireLOS: requireLOS, multiplier: 1}
}

func (b *base) Initialize(self Attacker, target model.Damageable) {
	b.self = self
	b.target = target
	if self.Body == nil {
		b.missing.Warn("attack has no body", "entityID", self.ID)
	}
}

func (b *base) SetTarget(target model.Damageable) {
	b.target = target
}

func (b *base) SetDamageMultiplier(m float64) {
	b.multiplier = max(m, 0)
}

func (b *base) DamageMultiplier() float64 {
	return b.multiplier
}

func (b *base) Range() float64 {
	return b.rng
}

// LastAttack returns when the last attack (burst start) fired.
func (b *base) LastAttack() (time.Duration, bool) {
	return b.lastAttack, b.hasAttacked
}

// ready is the shared CanAttack gate: body, live target, cooldown, range, sight.
func (b *base) ready(now time.Duration) bool {
	if b.self.Body == nil || b.target == nil || b.target.IsDead() {
		return false
	}
	if b.hasAttacked && now-b.lastAttack < b.cooldown {
		return false
	}
	pos := b.self.Body.Position()
	targetPos := b.target.Position()
	if pos.Distance(targetPos) > b.rng {
		return false
	}
	if b.requireLOS && !hasLineOfSight(b.self.World, pos, targetPos) {
		return false
	}
	return true
}

func (b *base) markFired(now time.Duration) {
	b.lastAttack = now
	b.hasAttacked = true
}

// hasLineOfSight reports whether no obstacle lies between from and to.
// Without a world there is nothing to block sight.
func hasLineOfSight(world model.WorldQuery, from, to model.Vec3) bool {
	if world == nil {
		return true
	}
	delta := to.Sub(from)
	dist := delta.Len()
	if dist == 0 {
		return true
	}
	_, blocked := world.Raycast(from, delta, dist, model.LayerObstacle)
	return !blocked
}
