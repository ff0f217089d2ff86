package ai

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/udisondev/skirmish/internal/attack"
	"github.com/udisondev/skirmish/internal/model"
	"github.com/udisondev/skirmish/internal/movement"
	"github.com/udisondev/skirmish/internal/projectile"
	"github.com/udisondev/skirmish/internal/sched"
	"github.com/udisondev/skirmish/internal/simlog"
)

var (
	// ErrNoScheduler is returned when a controller is built without a scheduler.
	ErrNoScheduler = errors.New("controller requires a scheduler")
	// ErrNoBody is returned when a controller is built without a transform.
	ErrNoBody = errors.New("controller requires a body")
)

// Deps are the collaborators a controller is built with. Resolved once.
type Deps struct {
	Pathfinder model.Pathfinder
	Body       model.Transform
	World      model.WorldQuery
	Scheduler  *sched.Scheduler
	Launcher   projectile.Launcher
	Movement   movement.Strategy
	Attack     attack.Strategy
	Presenter  model.Presenter
	Notifier   model.EliminationNotifier
	Hooks      Hooks
	Rand       *rand.Rand
	Target     model.Damageable
	// TargetMask is what this entity's attacks hit. Zero means LayerPlayer.
	TargetMask model.LayerMask
}

// Controller drives one enemy: state transitions, damage intake, attack dispatch and death.
// Mutated from the simulation goroutine only; state and health are atomic so
// other goroutines may read them.
type Controller struct {
	id  model.EntityID
	cfg Config

	pathfinder model.Pathfinder
	body       model.Transform
	world      model.WorldQuery
	scheduler  *sched.Scheduler
	movement   movement.Strategy
	attack     attack.Strategy
	presenter  *safePresenter
	notifier   model.EliminationNotifier
	hooks      Hooks
	rand       *rand.Rand
	target     model.Damageable

	state       atomic.Int32
	healthBits  atomic.Uint64
	isRunning   atomic.Bool
	isDead      atomic.Bool
	isRemoved   atomic.Bool
	transitions atomic.Int32

	isAttacking  bool
	isFlashing   bool
	retreatArmed bool
	retreatDone  bool
	// retreatPlanned is false when the pathfinder rejected the retreat point.
	retreatPlanned bool
	enraged      bool
	nextRoll     time.Duration
	attacks      int

	noMovement simlog.Once
	noAttack   simlog.Once
}

// New builds a controller and initialises its strategies.
func New(id model.EntityID, cfg Config, deps Deps) (*Controller, error) {
	if deps.Scheduler == nil {
		return nil, fmt.Errorf("building controller %d: %w", id, ErrNoScheduler)
	}
	if deps.Body == nil {
		return nil, fmt.Errorf("building controller %d: %w", id, ErrNoBody)
	}
	if cfg.MaxHealth <= 0 {
		return nil, fmt.Errorf("building controller %d: max health %v", id, cfg.MaxHealth)
	}
	if cfg.MissDelay <= 0 {
		cfg.MissDelay = defaultMissDelay
	}

	c := &Controller{
		id:           id,
		cfg:          cfg,
		pathfinder:   deps.Pathfinder,
		body:         deps.Body,
		world:        deps.World,
		scheduler:    deps.Scheduler,
		movement:     deps.Movement,
		attack:       deps.Attack,
		presenter:    newSafePresenter(deps.Presenter, id),
		notifier:     deps.Notifier,
		hooks:        deps.Hooks,
		rand:         deps.Rand,
		target:       deps.Target,
		retreatArmed: true,
	}
	if c.rand == nil {
		c.rand = rand.New(rand.NewPCG(uint64(id), 0))
	}
	c.setHealth(cfg.MaxHealth)
	c.state.Store(int32(cfg.DefaultState))

	if c.movement != nil {
		c.movement.Initialize(movement.Self{
			ID:         id,
			Pathfinder: deps.Pathfinder,
			Body:       deps.Body,
			Rand:       c.rand,
		}, deps.Target)
	}
	if c.attack != nil {
		c.attack.Initialize(attack.Attacker{
			ID:         id,
			Body:       deps.Body,
			World:      deps.World,
			Scheduler:  deps.Scheduler,
			Launcher:   deps.Launcher,
			Rand:       c.rand,
			TargetMask: deps.TargetMask,
		}, deps.Target)
	}

	return c, nil
}

// ID returns the entity ID.
func (c *Controller) ID() model.EntityID {
	return c.id
}

// Name returns the archetype name.
func (c *Controller) Name() string {
	return c.cfg.Name
}

// Config returns the controller parameters.
func (c *Controller) Config() Config {
	return c.cfg
}

// Position returns the body position.
func (c *Controller) Position() model.Vec3 {
	return c.body.Position()
}

// Body returns the entity transform.
func (c *Controller) Body() model.Transform {
	return c.body
}

// Movement returns the movement strategy (may be nil).
func (c *Controller) Movement() movement.Strategy {
	return c.movement
}

// Attack returns the attack strategy (may be nil).
func (c *Controller) Attack() attack.Strategy {
	return c.attack
}

// Scheduler returns the scheduler the controller uses for delayed actions.
func (c *Controller) Scheduler() *sched.Scheduler {
	return c.scheduler
}

// Target returns the current target.
func (c *Controller) Target() model.Damageable {
	return c.target
}

// SetTarget changes the target for the controller and both strategies.
func (c *Controller) SetTarget(target model.Damageable) {
	c.target = target
	if c.movement != nil {
		c.movement.SetTarget(target)
	}
	if c.attack != nil {
		c.attack.SetTarget(target)
	}
}

// State returns the active state.
func (c *Controller) State() model.EnemyState {
	return model.EnemyState(c.state.Load())
}

// Transitions returns how many state changes happened.
func (c *Controller) Transitions() int {
	return int(c.transitions.Load())
}

// CurrentHealth returns health clamped to [0, MaxHealth].
func (c *Controller) CurrentHealth() float64 {
	return min(max(c.health(), 0), c.cfg.MaxHealth)
}

// MaxHealth returns the configured maximum health.
func (c *Controller) MaxHealth() float64 {
	return c.cfg.MaxHealth
}

// IsDead reports whether the controller entered StateDead.
func (c *Controller) IsDead() bool {
	return c.isDead.Load()
}

// IsRemoved reports whether the dead entity was disposed.
func (c *Controller) IsRemoved() bool {
	return c.isRemoved.Load()
}

// IsAttacking reports whether an attack is in flight (including wind-up).
func (c *Controller) IsAttacking() bool {
	return c.isAttacking
}

// IsFlashing reports whether the hit flash window is open.
func (c *Controller) IsFlashing() bool {
	return c.isFlashing
}

// Attacks returns how many attacks resolved.
func (c *Controller) Attacks() int {
	return c.attacks
}

// PresenterDisabled reports whether presentation cues were turned off after a failure.
func (c *Controller) PresenterDisabled() bool {
	return c.presenter.Disabled()
}

// Cue plays a presentation cue through the failure-isolating boundary.
func (c *Controller) Cue(cue string) {
	c.presenter.trigger(cue)
}

// Start enables ticking.
func (c *Controller) Start() {
	if c.IsDead() {
		return
	}
	c.isRunning.Store(true)
	c.enterBehaviour(c.State())

	slog.Info("enemy spawned",
		"entityID", c.id,
		"archetype", c.cfg.Name,
		"position", c.Position(),
		"state", c.State())
}

// Stop disables ticking and halts movement.
func (c *Controller) Stop() {
	c.isRunning.Store(false)
	if c.movement != nil {
		c.movement.Stop()
	}
}

// Tick runs one simulation step: transitions first, then per-state behaviour.
func (c *Controller) Tick() {
	if !c.isRunning.Load() || c.IsDead() {
		return
	}

	now := c.scheduler.Now()
	// A jump in progress finishes whatever state the controller is in.
	airborne := c.airborne()
	if airborne {
		c.movement.Move(now)
	}
	dist := c.distanceToTarget()

	if c.State() == model.StateRetreating {
		if !c.retreatComplete() {
			return
		}
		c.retreatDone = false
	}
	c.setState(c.stateFor(dist))

	switch c.State() {
	case model.StateIdle:
		if c.canSee() {
			c.faceTarget()
		}
	case model.StatePatrolling, model.StateChasing:
		if !airborne {
			c.move(now)
		}
	case model.StateAttacking:
		c.tickAttack(now, airborne)
	}
}

// airborne reports whether the movement strategy is mid-jump.
func (c *Controller) airborne() bool {
	a, ok := c.movement.(movement.Airborne)
	return ok && a.IsJumping()
}

// land finishes an active jump on the spot of its landing point.
func (c *Controller) land() {
	if a, ok := c.movement.(movement.Airborne); ok && a.IsJumping() {
		a.Land()
	}
}

// stateFor maps distance to a state using the two radii.
func (c *Controller) stateFor(dist float64) model.EnemyState {
	switch {
	case dist <= c.cfg.AttackRange:
		return model.StateAttacking
	case dist <= c.cfg.DetectionRange:
		return model.StateChasing
	default:
		return c.cfg.DefaultState
	}
}

func (c *Controller) tickAttack(now time.Duration, airborne bool) {
	if c.cfg.AttackWhileMoving && !airborne {
		c.move(now)
	}
	c.faceTarget()
	if airborne {
		return
	}

	if c.attack == nil {
		c.noAttack.Warn("enemy has no attack strategy", "entityID", c.id)
		return
	}
	if c.isAttacking || now < c.nextRoll || !c.attack.CanAttack(now) || !c.willResolve(now) {
		return
	}
	if c.cfg.RequireLineOfSight && !c.canSee() {
		return
	}
	if c.rand.Float64() >= c.cfg.HitChance {
		c.nextRoll = now + c.cfg.MissDelay
		if simlog.IsDebugEnabled() {
			slog.Debug("enemy attack roll missed", "entityID", c.id, "retryAt", c.nextRoll)
		}
		return
	}
	c.PerformAttack()
}

// PerformAttack dispatches one attack. Ignored while another attack is in
// flight; the guard covers the whole wind-up. Returns whether an attack was dispatched.
func (c *Controller) PerformAttack() bool {
	if c.IsDead() || c.isAttacking || c.attack == nil {
		return false
	}
	if !c.willResolve(c.scheduler.Now()) {
		return false
	}
	if c.hooks.PreAttack != nil && !c.hooks.PreAttack(c) {
		return false
	}

	c.isAttacking = true
	c.presenter.trigger(c.cfg.Cues.Attack)

	if c.cfg.AttackWindup > 0 {
		c.scheduler.After(c.id, c.cfg.AttackWindup, c.resolveAttack)
		return true
	}
	c.resolveAttack()
	return true
}

// willResolve reports whether the child a selecting strategy would use is ready,
// so the attack cue and guard are not spent on an attack that does nothing.
func (c *Controller) willResolve(now time.Duration) bool {
	sel, ok := c.attack.(attack.Selector)
	if !ok {
		return true
	}
	return sel.Selected().CanAttack(now)
}

func (c *Controller) resolveAttack() {
	defer func() { c.isAttacking = false }()
	if c.IsDead() {
		return
	}

	now := c.scheduler.Now()
	if !c.attack.Attack(now) {
		return
	}
	c.attacks++
	if c.movement != nil {
		c.movement.NotifyAttacked(now)
	}
}

// TakeDamage applies damage. No-op when dead or invulnerable during a flash.
func (c *Controller) TakeDamage(amount float64) {
	if c.IsDead() || amount <= 0 {
		return
	}
	if c.isFlashing && c.cfg.InvulnerableWhileFlashing {
		return
	}

	health := c.health() - amount
	c.setHealth(health)
	c.presenter.trigger(c.cfg.Cues.Hit)
	c.startFlash()

	if simlog.IsDebugEnabled() {
		slog.Debug("enemy took damage", "entityID", c.id, "amount", amount, "health", health)
	}

	if health <= 0 {
		c.Die()
		return
	}
	c.checkEnrage()
	c.checkRetreat()
}

// Heal restores health up to MaxHealth. Rising above the retreat threshold re-arms retreat.
func (c *Controller) Heal(amount float64) {
	if c.IsDead() || amount <= 0 {
		return
	}
	health := min(c.health()+amount, c.cfg.MaxHealth)
	c.setHealth(health)
	if health > c.retreatHealth() {
		c.retreatArmed = true
	}
}

func (c *Controller) startFlash() {
	if c.cfg.FlashDuration <= 0 || c.isFlashing {
		return
	}
	c.isFlashing = true
	c.scheduler.After(c.id, c.cfg.FlashDuration, func() {
		c.isFlashing = false
	})
}

func (c *Controller) checkEnrage() {
	if c.enraged || c.cfg.EnrageThreshold <= 0 {
		return
	}
	if c.health() > c.cfg.MaxHealth*c.cfg.EnrageThreshold/100 {
		return
	}
	c.enraged = true
	if c.hooks.OnEnrage != nil {
		c.hooks.OnEnrage(c)
	}
}

func (c *Controller) retreatHealth() float64 {
	return c.cfg.MaxHealth * c.cfg.RetreatHealthThreshold / 100
}

func (c *Controller) checkRetreat() {
	if !c.cfg.RetreatEnabled || !c.retreatArmed || c.State() == model.StateRetreating {
		return
	}
	if c.health() > c.retreatHealth() {
		return
	}
	c.retreatArmed = false
	c.retreatDone = false
	c.setState(model.StateRetreating)

	if c.cfg.RetreatDuration > 0 {
		c.scheduler.After(c.id, c.cfg.RetreatDuration, func() {
			c.retreatDone = true
		})
	}
}

// retreatComplete reports whether the retreat maneuver finished: timer fired,
// or without a timer, the retreat path was walked.
func (c *Controller) retreatComplete() bool {
	if c.cfg.RetreatDuration > 0 {
		return c.retreatDone
	}
	if c.pathfinder == nil || !c.retreatPlanned {
		return true
	}
	if c.pathfinder.IsPathPending() {
		return false
	}
	// +Inf after planning means no path exists; there is nothing left to walk.
	remaining := c.pathfinder.RemainingDistance()
	return math.IsInf(remaining, 1) || remaining <= 0.1
}

// retreatPoint is RetreatDistance away from the target, snapped to the nav surface.
func (c *Controller) retreatPoint() (model.Vec3, bool) {
	pos := c.Position()
	away := model.Vec3{}
	if c.target != nil {
		away = pos.Sub(c.target.Position()).Flat()
	}
	if away.IsZero() {
		away = c.body.Forward().Flat().Scale(-1)
	}
	if away.IsZero() {
		away = model.Vec3{Z: -1}
	}
	point := pos.Add(away.Normalize().Scale(c.cfg.RetreatDistance))
	if sampled, ok := c.pathfinder.SamplePosition(point, max(c.cfg.RetreatDistance, 1)); ok {
		return sampled, true
	}
	return point, false
}

// Die moves the controller to StateDead. Idempotent.
func (c *Controller) Die() {
	if !c.isDead.CompareAndSwap(false, true) {
		return
	}

	c.setState(model.StateDead)
	c.isRunning.Store(false)
	c.isAttacking = false
	cancelled := c.scheduler.CancelOwner(c.id)
	c.land()

	if c.movement != nil {
		c.movement.Stop()
	}
	if c.pathfinder != nil {
		c.pathfinder.Stop()
	}
	c.presenter.trigger(c.cfg.Cues.Death)
	if c.hooks.OnDeath != nil {
		c.hooks.OnDeath(c)
	}

	c.scheduler.After(c.id, c.cfg.DeathRemovalDelay, c.dispose)

	slog.Info("enemy died",
		"entityID", c.id,
		"archetype", c.cfg.Name,
		"cancelledTasks", cancelled,
		"removalDelay", c.cfg.DeathRemovalDelay)
}

// Remove disposes the entity immediately, killing it first if needed.
func (c *Controller) Remove() {
	c.Die()
	c.scheduler.CancelOwner(c.id)
	c.dispose()
}

func (c *Controller) dispose() {
	if !c.isRemoved.CompareAndSwap(false, true) {
		return
	}
	if c.hooks.OnRemoved != nil {
		c.hooks.OnRemoved(c)
	}
	if c.notifier != nil {
		c.notifier.NotifyEliminated(c.id)
	}
	if simlog.IsDebugEnabled() {
		slog.Debug("enemy removed", "entityID", c.id)
	}
}

// setState switches state, runs the entry behaviour and the hook.
func (c *Controller) setState(next model.EnemyState) {
	prev := c.State()
	if prev == next || prev == model.StateDead {
		return
	}
	c.state.Store(int32(next))
	c.transitions.Add(1)

	if prev == model.StateAttacking && !c.cfg.AttackWhileMoving && c.movement != nil {
		c.movement.Resume()
	}
	c.enterBehaviour(next)

	if c.hooks.OnStateChange != nil {
		c.hooks.OnStateChange(c, prev, next)
	}
	if simlog.IsDebugEnabled() {
		slog.Debug("enemy state changed",
			"entityID", c.id,
			"from", prev,
			"to", next)
	}
}

// enterBehaviour runs the one-shot part of entering a state.
func (c *Controller) enterBehaviour(s model.EnemyState) {
	switch s {
	case model.StateIdle:
		if c.movement != nil {
			c.movement.Stop()
		}
		c.presenter.trigger(c.cfg.Cues.Idle)
	case model.StatePatrolling, model.StateChasing:
		if c.movement != nil {
			c.movement.Resume()
		}
		c.presenter.trigger(c.cfg.Cues.Move)
	case model.StateAttacking:
		if !c.cfg.AttackWhileMoving && c.movement != nil {
			c.movement.Stop()
		}
	case model.StateRetreating:
		c.presenter.trigger(c.cfg.Cues.Retreat)
		if c.pathfinder == nil {
			return
		}
		c.land()
		point, _ := c.retreatPoint()
		c.pathfinder.Resume()
		c.retreatPlanned = c.pathfinder.SetDestination(point)
		if !c.retreatPlanned && simlog.IsDebugEnabled() {
			slog.Debug("retreat point rejected", "entityID", c.id, "point", point)
		}
	}
}

func (c *Controller) move(now time.Duration) {
	if c.movement == nil {
		c.noMovement.Warn("enemy has no movement strategy", "entityID", c.id)
		return
	}
	c.movement.Move(now)
}

func (c *Controller) faceTarget() {
	if c.target == nil || c.target.IsDead() {
		return
	}
	dir := c.target.Position().Sub(c.Position()).Flat()
	if !dir.IsZero() {
		c.body.SetForward(dir)
	}
}

// canSee reports whether no obstacle blocks the line to the target.
func (c *Controller) canSee() bool {
	if c.target == nil || c.target.IsDead() {
		return false
	}
	if c.world == nil {
		return true
	}
	from := c.Position()
	delta := c.target.Position().Sub(from)
	dist := delta.Len()
	if dist == 0 {
		return true
	}
	_, blocked := c.world.Raycast(from, delta, dist, model.LayerObstacle)
	return !blocked
}

func (c *Controller) distanceToTarget() float64 {
	if c.target == nil || c.target.IsDead() {
		return math.Inf(1)
	}
	return c.Position().Distance(c.target.Position())
}

func (c *Controller) health() float64 {
	return math.Float64frombits(c.healthBits.Load())
}

func (c *Controller) setHealth(h float64) {
	c.healthBits.Store(math.Float64bits(h))
}
