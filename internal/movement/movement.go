package movement

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/udisondev/skirmish/internal/config"
	"github.com/udisondev/skirmish/internal/geo"
	"github.com/udisondev/skirmish/internal/model"
	"github.com/udisondev/skirmish/internal/simlog"
)

// sampleRadius bounds destination snapping when obstacle avoidance is on.
const sampleRadius = 2.0

// Strategy moves one entity relative to its target.
type Strategy interface {
	Initialize(self Self, target model.Damageable)
	// Move advances one tick toward or around the target.
	Move(now time.Duration)
	SetTarget(target model.Damageable)
	Target() model.Damageable
	Stop()
	Resume()
	IsInRange(r float64) bool
	// DistanceToTarget returns +Inf when self, pathfinder or target is missing.
	DistanceToTarget() float64
	// NotifyAttacked is called after the owner's attack fired.
	NotifyAttacked(now time.Duration)
}

// Airborne is implemented by strategies that leave the nav surface. While
// IsJumping is true the owner keeps calling Move whatever its state, so the
// arc completes. Land ends the jump at its landing point immediately.
type Airborne interface {
	IsJumping() bool
	Land()
}

// Self is the moving entity as strategies see it.
type Self struct {
	ID         model.EntityID
	Pathfinder model.Pathfinder
	Body       model.Transform
	Rand       *rand.Rand
}

// Config holds parameters shared by every strategy.
type Config struct {
	Speed            float64
	StoppingDistance float64
	FaceTarget       bool
	AvoidObstacles   bool
	RotationSpeed    float64 // degrees per second, 0 snaps
}

// New builds a strategy from config.
func New(cfg config.MovementConfig) (Strategy, error) {
	common := Config{
		Speed:            cfg.Speed,
		StoppingDistance: cfg.StoppingDistance,
		FaceTarget:       cfg.FaceTarget,
		AvoidObstacles:   cfg.AvoidObstacles,
		RotationSpeed:    cfg.RotationSpeed,
	}

	switch cfg.Kind {
	case config.MovementDirect:
		return NewDirect(common), nil
	case config.MovementMelee:
		return NewMeleeCircling(common, MeleeConfig{
			CloseRange:         cfg.CloseRange,
			AttackRange:        cfg.AttackRange,
			CircleRadius:       cfg.CircleRadius,
			CircleIntervalMin:  cfg.CircleIntervalMin,
			CircleIntervalMax:  cfg.CircleIntervalMax,
			RetreatAfterAttack: cfg.RetreatAfterAttack,
			RetreatDistance:    cfg.RetreatDistance,
		}), nil
	case config.MovementPatrol:
		return NewPatrol(common, PatrolConfig{
			Waypoints:       config.Vecs(cfg.Waypoints),
			WaitTime:        cfg.WaitTime,
			DetectionRadius: cfg.DetectionRadius,
		}), nil
	case config.MovementJump:
		return NewJumpAttack(common, JumpConfig{
			JumpRange:    cfg.JumpRange,
			JumpCooldown: cfg.JumpCooldown,
			JumpDuration: cfg.JumpDuration,
			JumpHeight:   cfg.JumpHeight,
		}), nil
	default:
		return nil, fmt.Errorf("building movement: %w", config.ErrUnknownMovement)
	}
}

// base implements the parts of Strategy every variant shares.
type base struct {
	cfg     Config
	self    Self
	target  model.Damageable
	stopped bool

	lastMove time.Duration
	hasMoved bool

	missing simlog.Once
}

func (b *base) Initialize(self Self, target model.Damageable) {
	b.self = self
	b.target = target
	if self.Pathfinder != nil {
		self.Pathfinder.SetSpeed(b.cfg.Speed)
		self.Pathfinder.SetStoppingDistance(b.cfg.StoppingDistance)
	}
	b.ready()
}

func (b *base) SetTarget(target model.Damageable) {
	b.target = target
}

func (b *base) Target() model.Damageable {
	return b.target
}

func (b *base) Stop() {
	b.stopped = true
	if b.self.Pathfinder != nil {
		b.self.Pathfinder.Stop()
	}
}

func (b *base) Resume() {
	b.stopped = false
	if b.self.Pathfinder != nil {
		b.self.Pathfinder.Resume()
	}
}

func (b *base) IsInRange(r float64) bool {
	return b.DistanceToTarget() <= r
}

func (b *base) DistanceToTarget() float64 {
	if b.self.Body == nil || !b.hasTarget() {
		return math.Inf(1)
	}
	return b.self.Body.Position().Distance(b.target.Position())
}

func (b *base) NotifyAttacked(time.Duration) {}

// ready reports whether the entity can move at all. Logs once when it cannot.
func (b *base) ready() bool {
	if b.self.Pathfinder == nil || b.self.Body == nil {
		b.missing.Warn("movement has no pathfinder", "entityID", b.self.ID)
		return false
	}
	return true
}

func (b *base) hasTarget() bool {
	return b.target != nil && !b.target.IsDead()
}

// step returns seconds since the previous Move and records now.
func (b *base) step(now time.Duration) float64 {
	dt := 0.0
	if b.hasMoved && now > b.lastMove {
		dt = (now - b.lastMove).Seconds()
	}
	b.lastMove = now
	b.hasMoved = true
	return dt
}

// goTo requests a path to point, snapping it to the navigable surface first
// when obstacle avoidance is enabled.
func (b *base) goTo(point model.Vec3) bool {
	if b.cfg.AvoidObstacles {
		sampled, ok := b.self.Pathfinder.SamplePosition(point, sampleRadius)
		if !ok {
			return false
		}
		point = sampled
	}
	return b.self.Pathfinder.SetDestination(point)
}

// face turns the body toward point, limited by RotationSpeed.
func (b *base) face(point model.Vec3, dt float64) {
	pos := b.self.Body.Position()
	dir := point.Sub(pos).Flat()
	if dir.IsZero() {
		return
	}
	if b.cfg.RotationSpeed <= 0 {
		b.self.Body.SetForward(dir)
		return
	}
	maxDeg := b.cfg.RotationSpeed * dt
	if maxDeg <= 0 {
		return
	}
	b.self.Body.SetForward(geo.RotateTowards(b.self.Body.Forward(), dir, maxDeg))
}

// randDuration returns a uniform duration in [lo, hi].
func randDuration(r *rand.Rand, lo, hi time.Duration) time.Duration {
	if hi <= lo || r == nil {
		return lo
	}
	return lo + time.Duration(r.Int64N(int64(hi-lo)+1))
}
