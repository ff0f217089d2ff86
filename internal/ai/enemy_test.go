package ai

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/skirmish/internal/attack"
	"github.com/udisondev/skirmish/internal/config"
	"github.com/udisondev/skirmish/internal/model"
	"github.com/udisondev/skirmish/internal/movement"
	"github.com/udisondev/skirmish/internal/projectile"
	"github.com/udisondev/skirmish/internal/sched"
	"github.com/udisondev/skirmish/internal/testutil"
)

const (
	enemyID  model.EntityID = 0x20000001
	playerID model.EntityID = 0x10000001
)

// stubAttack is always ready unless Blocked; counts resolved attacks.
type stubAttack struct {
	Blocked bool
	calls   int
	target  model.Damageable
	mult    float64
}

func (s *stubAttack) Initialize(_ attack.Attacker, target model.Damageable) { s.target = target }
func (s *stubAttack) SetTarget(target model.Damageable)                     { s.target = target }
func (s *stubAttack) CanAttack(time.Duration) bool                          { return !s.Blocked }
func (s *stubAttack) SetDamageMultiplier(m float64)                         { s.mult = m }
func (s *stubAttack) DamageMultiplier() float64                             { return s.mult }
func (s *stubAttack) Range() float64                                        { return 2 }

func (s *stubAttack) Attack(now time.Duration) bool {
	if !s.CanAttack(now) {
		return false
	}
	s.calls++
	return true
}

type rig struct {
	clock     *sched.ManualClock
	sched     *sched.Scheduler
	world     *testutil.FakeWorld
	path      *testutil.FakePathfinder
	body      *testutil.Dummy
	player    *testutil.Dummy
	presenter *testutil.RecordingPresenter
	elims     *testutil.EliminationLog
	attack    *stubAttack
}

func baseConfig() Config {
	return Config{
		Name:              "grunt",
		MaxHealth:         100,
		DetectionRange:    10,
		AttackRange:       2,
		DefaultState:      model.StateIdle,
		DeathRemovalDelay: time.Second,
		HitChance:         1,
		Cues:              config.DefaultCues(),
	}
}

// newRig places the enemy at the origin and the player at playerPos.
func newRig(t testing.TB, playerPos model.Vec3) *rig {
	t.Helper()
	clock := sched.NewManualClock()
	r := &rig{
		clock:     clock,
		sched:     sched.NewScheduler(clock),
		world:     testutil.NewFakeWorld(),
		path:      testutil.NewFakePathfinder(),
		body:      testutil.NewDummy(enemyID, model.Vec3{}, 100),
		player:    testutil.NewDummy(playerID, playerPos, 100),
		presenter: testutil.NewRecordingPresenter(),
		elims:     &testutil.EliminationLog{},
		attack:    &stubAttack{},
	}
	r.world.Add(r.player, model.LayerPlayer)
	return r
}

func (r *rig) build(t testing.TB, cfg Config, hooks Hooks) *Controller {
	t.Helper()
	return r.buildWith(t, cfg, hooks, movement.NewDirect(movement.Config{Speed: 3}))
}

func (r *rig) buildWith(t testing.TB, cfg Config, hooks Hooks, mv movement.Strategy) *Controller {
	t.Helper()
	c, err := New(enemyID, cfg, Deps{
		Pathfinder: r.path,
		Body:       r.body,
		World:      r.world,
		Scheduler:  r.sched,
		Movement:   mv,
		Attack:     r.attack,
		Presenter:  r.presenter,
		Notifier:   r.elims,
		Hooks:      hooks,
		Rand:       rand.New(rand.NewPCG(1, 2)),
		Target:     r.player,
	})
	require.NoError(t, err)
	c.Start()
	return c
}

func (r *rig) advance(d time.Duration) {
	r.sched.Advance(r.clock.Advance(d))
}

func TestNew_RequiresCollaborators(t *testing.T) {
	clock := sched.NewManualClock()

	_, err := New(enemyID, baseConfig(), Deps{Body: testutil.NewDummy(enemyID, model.Vec3{}, 1)})
	require.ErrorIs(t, err, ErrNoScheduler)

	_, err = New(enemyID, baseConfig(), Deps{Scheduler: sched.NewScheduler(clock)})
	require.ErrorIs(t, err, ErrNoBody)
}

func TestController_DistanceBands(t *testing.T) {
	tests := []struct {
		name         string
		defaultState model.EnemyState
		playerAt     model.Vec3
		want         model.EnemyState
	}{
		{"far stays idle", model.StateIdle, model.Vec3{Z: 20}, model.StateIdle},
		{"far stays patrolling", model.StatePatrolling, model.Vec3{Z: 20}, model.StatePatrolling},
		{"detected chases", model.StateIdle, model.Vec3{Z: 8}, model.StateChasing},
		{"in range attacks", model.StatePatrolling, model.Vec3{Z: 1.5}, model.StateAttacking},
		{"exactly attack range attacks", model.StateIdle, model.Vec3{Z: 2}, model.StateAttacking},
		{"exactly detection range chases", model.StateIdle, model.Vec3{Z: 10}, model.StateChasing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t, tt.playerAt)
			cfg := baseConfig()
			cfg.DefaultState = tt.defaultState
			c := r.build(t, cfg, Hooks{})

			c.Tick()
			assert.Equal(t, tt.want, c.State())
		})
	}
}

func TestController_ChaseThenLoseTarget(t *testing.T) {
	r := newRig(t, model.Vec3{Z: 8})
	c := r.build(t, baseConfig(), Hooks{})

	c.Tick()
	require.Equal(t, model.StateChasing, c.State())
	dest, ok := r.path.LastDestination()
	require.True(t, ok)
	assert.Equal(t, r.player.Position(), dest)
	assert.Equal(t, 1, r.presenter.Count("move"))

	r.player.SetPosition(model.Vec3{Z: 1})
	c.Tick()
	require.Equal(t, model.StateAttacking, c.State())
	assert.True(t, r.path.IsStopped(), "attacking halts movement")

	r.player.SetPosition(model.Vec3{Z: 30})
	c.Tick()
	assert.Equal(t, model.StateIdle, c.State())
	assert.Equal(t, 3, c.Transitions())
}

func TestController_IdleFacesVisibleTarget(t *testing.T) {
	r := newRig(t, model.Vec3{X: 20})
	r.world.BlockSight = true
	c := r.build(t, baseConfig(), Hooks{})

	c.Tick()
	require.Equal(t, model.StateIdle, c.State())
	assert.Equal(t, model.Vec3{Z: 1}, r.body.Forward(), "hidden target is not tracked")

	r.world.BlockSight = false
	c.Tick()
	assert.Equal(t, model.StateIdle, c.State())
	assert.InDelta(t, 1, r.body.Forward().Normalize().X, 1e-9)
}

func TestController_AttackOnCooldownExpiry(t *testing.T) {
	r := newRig(t, model.Vec3{Z: 1})
	c := r.build(t, baseConfig(), Hooks{})

	c.Tick()
	require.Equal(t, model.StateAttacking, c.State())
	assert.Equal(t, 1, r.attack.calls)
	assert.Equal(t, 1, r.presenter.Count("attack"))
	assert.Equal(t, model.Vec3{Z: 1}, r.body.Forward().Normalize())

	r.attack.Blocked = true
	c.Tick()
	assert.Equal(t, 1, r.attack.calls, "strategy not ready")

	r.attack.Blocked = false
	c.Tick()
	assert.Equal(t, 2, r.attack.calls)
}

func TestController_HitChance(t *testing.T) {
	r := newRig(t, model.Vec3{Z: 1})
	cfg := baseConfig()
	cfg.HitChance = 0
	c := r.build(t, cfg, Hooks{})

	for range 20 {
		c.Tick()
		r.advance(time.Second)
	}
	assert.Zero(t, r.attack.calls, "zero hit chance never attacks")
}

func TestController_MissWaitsBeforeNextRoll(t *testing.T) {
	r := newRig(t, model.Vec3{Z: 1})
	cfg := baseConfig()
	cfg.HitChance = 0
	cfg.MissDelay = time.Second
	c := r.build(t, cfg, Hooks{})

	c.Tick()
	assert.Equal(t, time.Second, c.nextRoll)

	r.advance(500 * time.Millisecond)
	c.Tick()
	assert.Equal(t, time.Second, c.nextRoll, "no roll before the miss delay")

	r.advance(500 * time.Millisecond)
	c.Tick()
	assert.Equal(t, 2*time.Second, c.nextRoll)
}

func TestController_LineOfSightGate(t *testing.T) {
	r := newRig(t, model.Vec3{Z: 1})
	cfg := baseConfig()
	cfg.RequireLineOfSight = true
	c := r.build(t, cfg, Hooks{})

	r.world.BlockSight = true
	c.Tick()
	assert.Equal(t, model.StateAttacking, c.State())
	assert.Zero(t, r.attack.calls)

	r.world.BlockSight = false
	c.Tick()
	assert.Equal(t, 1, r.attack.calls)
}

func TestController_PerformAttackGuardCoversWindup(t *testing.T) {
	r := newRig(t, model.Vec3{Z: 1})
	cfg := baseConfig()
	cfg.AttackWindup = 300 * time.Millisecond
	c := r.build(t, cfg, Hooks{})

	require.True(t, c.PerformAttack())
	assert.True(t, c.IsAttacking())
	assert.False(t, c.PerformAttack(), "second dispatch during wind-up is ignored")

	r.advance(299 * time.Millisecond)
	assert.Zero(t, r.attack.calls)
	assert.True(t, c.IsAttacking())

	r.advance(time.Millisecond)
	assert.Equal(t, 1, r.attack.calls)
	assert.False(t, c.IsAttacking())
	assert.Equal(t, 1, c.Attacks())

	assert.True(t, c.PerformAttack())
}

func TestController_PreAttackHookSuppresses(t *testing.T) {
	r := newRig(t, model.Vec3{Z: 1})
	allow := false
	c := r.build(t, baseConfig(), Hooks{
		PreAttack: func(*Controller) bool { return allow },
	})

	c.Tick()
	assert.Zero(t, r.attack.calls)
	assert.False(t, c.IsAttacking())

	allow = true
	c.Tick()
	assert.Equal(t, 1, r.attack.calls)
}

func TestController_RetreatTriggeredOnce(t *testing.T) {
	r := newRig(t, model.Vec3{Z: 20})
	cfg := baseConfig()
	cfg.RetreatEnabled = true
	cfg.RetreatHealthThreshold = 25
	cfg.RetreatDistance = 6
	cfg.RetreatDuration = 2 * time.Second
	c := r.build(t, cfg, Hooks{})

	c.TakeDamage(80)
	assert.Equal(t, 20.0, c.CurrentHealth())
	require.Equal(t, model.StateRetreating, c.State())
	assert.Equal(t, 1, r.presenter.Count("retreat"))
	dest, ok := r.path.LastDestination()
	require.True(t, ok)
	assert.InDelta(t, -6, dest.Z, 1e-9, "retreat moves away from the target")

	c.TakeDamage(5)
	assert.Equal(t, 15.0, c.CurrentHealth())
	assert.Equal(t, model.StateRetreating, c.State())
	assert.Equal(t, 1, r.presenter.Count("retreat"), "retreat is not re-triggered")
	assert.Equal(t, 1, c.Transitions())

	c.Tick()
	assert.Equal(t, model.StateRetreating, c.State(), "retreat lasts its duration")

	r.advance(2 * time.Second)
	c.Tick()
	assert.Equal(t, model.StateIdle, c.State())
}

func TestController_HealRearmsRetreat(t *testing.T) {
	r := newRig(t, model.Vec3{Z: 20})
	cfg := baseConfig()
	cfg.RetreatEnabled = true
	cfg.RetreatHealthThreshold = 25
	cfg.RetreatDuration = time.Second
	c := r.build(t, cfg, Hooks{})

	c.TakeDamage(80)
	r.advance(time.Second)
	c.Tick()
	require.Equal(t, model.StateIdle, c.State())

	c.TakeDamage(1)
	assert.Equal(t, model.StateIdle, c.State(), "one-shot until health rises")

	c.Heal(500)
	assert.Equal(t, 100.0, c.CurrentHealth(), "heal is clamped to max")

	c.TakeDamage(80)
	assert.Equal(t, model.StateRetreating, c.State())
	assert.Equal(t, 2, r.presenter.Count("retreat"))
}

func TestController_RetreatWithoutTimerEndsOnArrival(t *testing.T) {
	r := newRig(t, model.Vec3{Z: 1})
	cfg := baseConfig()
	cfg.RetreatEnabled = true
	cfg.RetreatHealthThreshold = 50
	cfg.RetreatDistance = 4
	c := r.build(t, cfg, Hooks{})

	r.path.Pending = true
	c.TakeDamage(60)
	require.Equal(t, model.StateRetreating, c.State())

	c.Tick()
	assert.Equal(t, model.StateRetreating, c.State(), "path still planning")

	r.path.Pending = false
	r.path.Remaining = 3
	c.Tick()
	assert.Equal(t, model.StateRetreating, c.State(), "path not walked yet")

	r.path.Remaining = 0
	c.Tick()
	assert.Equal(t, model.StateAttacking, c.State(), "re-evaluated against current distance")
}

func TestController_RetreatEndsWhenNoPathExists(t *testing.T) {
	r := newRig(t, model.Vec3{Z: 1})
	cfg := baseConfig()
	cfg.RetreatEnabled = true
	cfg.RetreatHealthThreshold = 25
	cfg.RetreatDistance = 4
	c := r.build(t, cfg, Hooks{})

	// Planned and failed: not pending, nothing to walk.
	r.path.Pending = false
	r.path.Remaining = math.Inf(1)
	c.TakeDamage(80)
	require.Equal(t, model.StateRetreating, c.State())

	c.Tick()
	assert.Equal(t, model.StateAttacking, c.State())

	r.advance(time.Second)
	c.Tick()
	assert.Positive(t, c.Attacks(), "fights back instead of cowering")
}

func TestController_RetreatEndsWhenDestinationRejected(t *testing.T) {
	r := newRig(t, model.Vec3{Z: 1})
	cfg := baseConfig()
	cfg.RetreatEnabled = true
	cfg.RetreatHealthThreshold = 25
	c := r.build(t, cfg, Hooks{})

	r.path.Reject = true
	c.TakeDamage(80)
	require.Equal(t, model.StateRetreating, c.State())

	c.Tick()
	assert.Equal(t, model.StateAttacking, c.State())
}

type shotLog struct{ n int }

func (s *shotLog) Launch(projectile.Straight) model.EntityID {
	s.n++
	return model.EntityID(0x30000000 + s.n)
}

func (s *shotLog) Lob(projectile.Lobbed) model.EntityID { return 0 }

func TestController_CompositeWaitsForChosenChild(t *testing.T) {
	r := newRig(t, model.Vec3{Z: 1})
	composite := attack.NewComposite(
		attack.NewMelee(attack.MeleeConfig{Damage: 10, Cooldown: time.Second, Range: 2, Radius: 2, AttackAngle: 360}),
		attack.NewRanged(attack.RangedConfig{
			Damage:             5,
			Cooldown:           100 * time.Millisecond,
			Range:              10,
			ProjectileSpeed:    10,
			ProjectileLifetime: time.Second,
			Muzzles:            []model.Vec3{{}},
			BurstCount:         1,
		}),
		2,
	)
	shots := &shotLog{}
	c, err := New(enemyID, baseConfig(), Deps{
		Pathfinder: r.path,
		Body:       r.body,
		World:      r.world,
		Scheduler:  r.sched,
		Launcher:   shots,
		Movement:   movement.NewDirect(movement.Config{Speed: 3}),
		Attack:     composite,
		Presenter:  r.presenter,
		Rand:       rand.New(rand.NewPCG(1, 2)),
		Target:     r.player,
	})
	require.NoError(t, err)
	c.Start()

	r.advance(50 * time.Millisecond)
	c.Tick()
	require.Equal(t, 1, c.Attacks(), "melee swing")

	for range 10 {
		r.advance(50 * time.Millisecond)
		c.Tick()
	}
	require.True(t, composite.CanAttack(r.clock.Now()), "ranged child is ready")
	assert.Equal(t, 1, r.presenter.Count("attack"), "no cue while melee cools down")
	assert.False(t, c.IsAttacking())
	assert.False(t, c.PerformAttack())
	assert.Zero(t, shots.n)

	r.advance(time.Second)
	c.Tick()
	assert.Equal(t, 2, c.Attacks())
	assert.Equal(t, 2, r.presenter.Count("attack"))
	assert.Equal(t, 80.0, r.player.CurrentHealth())
}

func leaperJump() *movement.JumpAttack {
	return movement.NewJumpAttack(
		movement.Config{Speed: 4, StoppingDistance: 1, FaceTarget: true},
		movement.JumpConfig{
			JumpRange:    6,
			JumpCooldown: 4 * time.Second,
			JumpDuration: 600 * time.Millisecond,
			JumpHeight:   2,
		},
	)
}

func TestController_JumpLandsAfterEnteringAttackRange(t *testing.T) {
	r := newRig(t, model.Vec3{Z: 5})
	jump := leaperJump()
	c := r.buildWith(t, baseConfig(), Hooks{}, jump)

	sawAttacking := false
	for range 60 {
		r.advance(50 * time.Millisecond)
		c.Tick()
		if jump.IsJumping() {
			sawAttacking = sawAttacking || c.State() == model.StateAttacking
			assert.Zero(t, c.Attacks(), "no attacks while airborne")
		}
	}

	assert.True(t, sawAttacking, "attack range reached mid-flight")
	require.False(t, jump.IsJumping())
	assert.Equal(t, model.Vec3{Z: 4}, r.body.Position())
	assert.Contains(t, r.path.Warps, model.Vec3{Z: 4})
	assert.Equal(t, model.StateAttacking, c.State())
	assert.True(t, r.path.IsStopped(), "attacking keeps the pathfinder stopped after landing")
	assert.Positive(t, c.Attacks())
}

func TestController_JumpLandsAfterLosingTarget(t *testing.T) {
	r := newRig(t, model.Vec3{Z: 5})
	jump := leaperJump()
	c := r.buildWith(t, baseConfig(), Hooks{}, jump)

	r.advance(50 * time.Millisecond)
	c.Tick()
	require.True(t, jump.IsJumping())

	r.player.TakeDamage(1000)
	for range 20 {
		r.advance(50 * time.Millisecond)
		c.Tick()
	}

	assert.Equal(t, model.StateIdle, c.State())
	assert.False(t, jump.IsJumping())
	assert.Equal(t, model.Vec3{Z: 4}, r.body.Position())
	assert.True(t, r.path.IsStopped())
}

func TestController_DeathMidJumpLands(t *testing.T) {
	r := newRig(t, model.Vec3{Z: 5})
	jump := leaperJump()
	c := r.buildWith(t, baseConfig(), Hooks{}, jump)

	r.advance(50 * time.Millisecond)
	c.Tick()
	r.advance(300 * time.Millisecond)
	c.Tick()
	require.True(t, jump.IsJumping())
	require.Positive(t, r.body.Position().Y)

	c.Die()
	assert.False(t, jump.IsJumping())
	assert.Equal(t, model.Vec3{Z: 4}, r.body.Position())
}

func TestController_DeathHappensOnce(t *testing.T) {
	hits := []float64{30, 30, 30, 30, 30, 1000}

	r := newRig(t, model.Vec3{Z: 20})
	deaths := 0
	removed := 0
	var states []model.EnemyState
	c := r.build(t, baseConfig(), Hooks{
		OnDeath:   func(*Controller) { deaths++ },
		OnRemoved: func(*Controller) { removed++ },
		OnStateChange: func(_ *Controller, _, to model.EnemyState) {
			states = append(states, to)
		},
	})

	for _, h := range hits {
		c.TakeDamage(h)
		assert.LessOrEqual(t, c.CurrentHealth(), c.MaxHealth())
	}

	assert.True(t, c.IsDead())
	assert.Zero(t, c.CurrentHealth())
	assert.Equal(t, model.StateDead, c.State())
	assert.Equal(t, 1, deaths)
	assert.Equal(t, []model.EnemyState{model.StateDead}, states)
	assert.Equal(t, 1, r.presenter.Count("death"))

	c.Die()
	c.Tick()
	assert.Equal(t, model.StateDead, c.State(), "dead is terminal")
	assert.Equal(t, 1, deaths)

	assert.False(t, c.IsRemoved(), "entity persists during the removal delay")
	r.advance(time.Second)
	assert.True(t, c.IsRemoved())
	assert.Equal(t, []model.EntityID{enemyID}, r.elims.IDs())

	c.Remove()
	assert.Equal(t, 1, removed)
	assert.Len(t, r.elims.IDs(), 1)
}

func TestController_DeathCancelsDelayedActions(t *testing.T) {
	r := newRig(t, model.Vec3{Z: 1})
	cfg := baseConfig()
	cfg.AttackWindup = 300 * time.Millisecond
	cfg.FlashDuration = time.Second
	c := r.build(t, cfg, Hooks{})

	require.True(t, c.PerformAttack())
	c.TakeDamage(10)
	require.Equal(t, 2, r.sched.Pending(enemyID))

	c.Die()
	assert.Equal(t, 1, r.sched.Pending(enemyID), "only the removal remains")
	assert.True(t, r.path.IsStopped())

	r.advance(time.Second)
	assert.Zero(t, r.attack.calls, "wind-up never resolves after death")
	assert.Equal(t, []model.EntityID{enemyID}, r.elims.IDs())
}

func TestController_RemoveIsImmediate(t *testing.T) {
	r := newRig(t, model.Vec3{Z: 20})
	c := r.build(t, baseConfig(), Hooks{})

	c.Remove()
	assert.True(t, c.IsDead())
	assert.True(t, c.IsRemoved())
	assert.Zero(t, r.sched.Pending(enemyID))
	assert.Equal(t, []model.EntityID{enemyID}, r.elims.IDs())
}

func TestController_InvulnerableWhileFlashing(t *testing.T) {
	r := newRig(t, model.Vec3{Z: 20})
	cfg := baseConfig()
	cfg.FlashDuration = 200 * time.Millisecond
	cfg.InvulnerableWhileFlashing = true
	c := r.build(t, cfg, Hooks{})

	c.TakeDamage(10)
	assert.True(t, c.IsFlashing())
	c.TakeDamage(10)
	assert.Equal(t, 90.0, c.CurrentHealth())

	r.advance(200 * time.Millisecond)
	assert.False(t, c.IsFlashing())
	c.TakeDamage(10)
	assert.Equal(t, 80.0, c.CurrentHealth())
}

func TestController_EnrageHookFiresOnce(t *testing.T) {
	r := newRig(t, model.Vec3{Z: 20})
	cfg := baseConfig()
	cfg.EnrageThreshold = 40
	enraged := 0
	c := r.build(t, cfg, Hooks{OnEnrage: func(*Controller) { enraged++ }})

	c.TakeDamage(50)
	assert.Zero(t, enraged)
	c.TakeDamage(15)
	assert.Equal(t, 1, enraged)
	c.TakeDamage(15)
	assert.Equal(t, 1, enraged)
}

func TestController_PresenterFailureDisablesHook(t *testing.T) {
	t.Run("error", func(t *testing.T) {
		r := newRig(t, model.Vec3{Z: 20})
		r.presenter.Err = testutil.ErrSimulated
		c := r.build(t, baseConfig(), Hooks{})

		assert.Equal(t, 1, r.presenter.Calls, "idle cue failed on start")
		assert.True(t, c.PresenterDisabled())

		c.TakeDamage(10)
		r.player.SetPosition(model.Vec3{Z: 5})
		c.Tick()
		assert.Equal(t, 1, r.presenter.Calls, "disabled hook is not retried")
		assert.Equal(t, 90.0, c.CurrentHealth())
		assert.Equal(t, model.StateChasing, c.State())
	})

	t.Run("panic", func(t *testing.T) {
		r := newRig(t, model.Vec3{Z: 20})
		r.presenter.PanicOn = "hit"
		c := r.build(t, baseConfig(), Hooks{})

		assert.NotPanics(t, func() { c.TakeDamage(10) })
		assert.True(t, c.PresenterDisabled())
		assert.Equal(t, 90.0, c.CurrentHealth())

		calls := r.presenter.Calls
		c.TakeDamage(10)
		assert.Equal(t, calls, r.presenter.Calls)
	})
}

func TestConfigFromArchetype(t *testing.T) {
	for name, arch := range config.DefaultArchetypes() {
		t.Run(name, func(t *testing.T) {
			cfg := ConfigFromArchetype(name, arch)
			assert.Equal(t, name, cfg.Name)
			assert.Equal(t, arch.MaxHealth, cfg.MaxHealth)
			assert.Contains(t, []model.EnemyState{model.StateIdle, model.StatePatrolling}, cfg.DefaultState)
			if arch.Boss != nil {
				assert.Equal(t, arch.Boss.EnrageThreshold, cfg.EnrageThreshold)
			}
		})
	}
}
