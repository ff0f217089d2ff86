package movement

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/skirmish/internal/config"
	"github.com/udisondev/skirmish/internal/geo"
	"github.com/udisondev/skirmish/internal/model"
	"github.com/udisondev/skirmish/internal/nav"
	"github.com/udisondev/skirmish/internal/testutil"
)

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

// agentSelf wires an open-field nav agent as both pathfinder and body.
func agentSelf(pos model.Vec3) (Self, *nav.Agent) {
	a := nav.NewAgent(0x20000001, nil, pos)
	return Self{ID: a.ID(), Pathfinder: a, Body: a, Rand: newRand()}, a
}

// fakeSelf wires a recording pathfinder and a dummy body moved by the test.
func fakeSelf(pos model.Vec3) (Self, *testutil.FakePathfinder, *testutil.Dummy) {
	pf := testutil.NewFakePathfinder()
	body := testutil.NewDummy(0x20000001, pos, 100)
	return Self{ID: body.ID(), Pathfinder: pf, Body: body, Rand: newRand()}, pf, body
}

func TestNew(t *testing.T) {
	for _, kind := range []string{config.MovementDirect, config.MovementMelee, config.MovementPatrol, config.MovementJump} {
		s, err := New(config.MovementConfig{Kind: kind, Speed: 3})
		require.NoError(t, err, kind)
		assert.NotNil(t, s)
	}

	_, err := New(config.MovementConfig{Kind: "swim"})
	assert.ErrorIs(t, err, config.ErrUnknownMovement)
}

func TestDistanceToTarget_MissingPieces(t *testing.T) {
	target := testutil.NewDummy(0x10000001, model.NewVec3(3, 0, 4), 100)

	t.Run("no target", func(t *testing.T) {
		d := NewDirect(Config{})
		self, _ := agentSelf(model.Vec3{})
		d.Initialize(self, nil)
		assert.True(t, math.IsInf(d.DistanceToTarget(), 1))
		assert.False(t, d.IsInRange(1000))
		d.Move(0)
	})

	t.Run("no pathfinder", func(t *testing.T) {
		d := NewDirect(Config{})
		d.Initialize(Self{}, target)
		assert.True(t, math.IsInf(d.DistanceToTarget(), 1))
		d.Move(0)
		d.Stop()
		d.Resume()
	})

	t.Run("dead target", func(t *testing.T) {
		dead := testutil.NewDummy(0x10000002, model.Vec3{}, 10)
		dead.TakeDamage(10)
		d := NewDirect(Config{})
		self, _ := agentSelf(model.Vec3{})
		d.Initialize(self, dead)
		assert.True(t, math.IsInf(d.DistanceToTarget(), 1))
	})

	t.Run("valid", func(t *testing.T) {
		d := NewDirect(Config{})
		self, _ := agentSelf(model.Vec3{})
		d.Initialize(self, target)
		assert.InDelta(t, 5.0, d.DistanceToTarget(), 1e-9)
		assert.True(t, d.IsInRange(5))
		assert.False(t, d.IsInRange(4.9))
	})
}

func TestDirect_ChasesAndFaces(t *testing.T) {
	target := testutil.NewDummy(0x10000001, model.NewVec3(10, 0, 0), 100)
	self, agent := agentSelf(model.Vec3{})

	d := NewDirect(Config{Speed: 4, StoppingDistance: 1, FaceTarget: true})
	d.Initialize(self, target)
	assert.Equal(t, 4.0, agent.Speed())

	d.Move(0)
	dest, ok := agent.Destination()
	require.True(t, ok)
	assert.Equal(t, target.Position(), dest)
	assert.InDelta(t, 1.0, agent.Forward().X, 1e-9)

	agent.Update(1)
	assert.InDelta(t, 4.0, agent.Position().X, 1e-9)

	target.SetPosition(model.NewVec3(10, 0, 10))
	d.Move(time.Second)
	dest, _ = agent.Destination()
	assert.Equal(t, target.Position(), dest)
}

func TestDirect_StoppedIgnoresMove(t *testing.T) {
	target := testutil.NewDummy(0x10000001, model.NewVec3(10, 0, 0), 100)
	self, pf, _ := fakeSelf(model.Vec3{})

	d := NewDirect(Config{})
	d.Initialize(self, target)
	d.Stop()
	d.Move(0)
	assert.True(t, pf.IsStopped())
	assert.Empty(t, pf.Destinations)

	d.Resume()
	d.Move(time.Second)
	assert.Len(t, pf.Destinations, 1)
}

func TestDirect_RotationSpeedLimitsTurn(t *testing.T) {
	target := testutil.NewDummy(0x10000001, model.NewVec3(10, 0, 0), 100)
	self, _, body := fakeSelf(model.Vec3{})

	d := NewDirect(Config{FaceTarget: true, RotationSpeed: 45})
	d.Initialize(self, target)

	d.Move(0) // first tick has no elapsed time
	assert.InDelta(t, 0.0, geo.Yaw(body.Forward()), 1e-9)

	d.Move(time.Second)
	assert.InDelta(t, 45.0, geo.Yaw(body.Forward()), 1e-6)
}

func meleeStrategy() *MeleeCircling {
	return NewMeleeCircling(Config{Speed: 3}, MeleeConfig{
		CloseRange:         2,
		AttackRange:        3,
		CircleRadius:       3,
		CircleIntervalMin:  time.Second,
		CircleIntervalMax:  time.Second,
		RetreatAfterAttack: 500 * time.Millisecond,
		RetreatDistance:    4,
	})
}

func TestMeleeCircling_HoldsCirclePointForInterval(t *testing.T) {
	target := testutil.NewDummy(0x10000001, model.NewVec3(1, 0, 0), 100)
	self, pf, _ := fakeSelf(model.Vec3{})

	m := meleeStrategy()
	m.Initialize(self, target)

	m.Move(0)
	require.True(t, m.IsCircling())
	first := m.CircleAngle()
	dest, _ := pf.LastDestination()
	assert.InDelta(t, 3.0, dest.Distance(target.Position()), 1e-9, "point lies on the ring")

	m.Move(500 * time.Millisecond)
	assert.Equal(t, first, m.CircleAngle(), "held until the interval expires")

	m.Move(time.Second)
	assert.NotEqual(t, first, m.CircleAngle(), "recomputed after the interval")
}

func TestMeleeCircling_BandsApproachDirectly(t *testing.T) {
	target := testutil.NewDummy(0x10000001, model.NewVec3(2.5, 0, 0), 100)
	self, pf, body := fakeSelf(model.Vec3{})

	m := meleeStrategy()
	m.Initialize(self, target)

	m.Move(0)
	assert.False(t, m.IsCircling())
	dest, _ := pf.LastDestination()
	assert.Equal(t, target.Position(), dest)
	assert.InDelta(t, 1.0, body.Forward().X, 1e-9, "medium band squares up even without FaceTarget")

	target.SetPosition(model.NewVec3(0, 0, 20))
	m.Move(100 * time.Millisecond)
	dest, _ = pf.LastDestination()
	assert.Equal(t, target.Position(), dest)
}

func TestMeleeCircling_RetreatAfterAttack(t *testing.T) {
	target := testutil.NewDummy(0x10000001, model.NewVec3(1, 0, 0), 100)
	self, pf, _ := fakeSelf(model.Vec3{})

	m := meleeStrategy()
	m.Initialize(self, target)

	m.NotifyAttacked(time.Second)
	require.True(t, m.IsRetreating(time.Second))
	dest, _ := pf.LastDestination()
	assert.Equal(t, model.NewVec3(-4, 0, 0), dest, "directly away from the target")

	requests := len(pf.Destinations)
	target.SetPosition(model.NewVec3(0, 0, 1))
	m.Move(1200 * time.Millisecond)
	assert.Len(t, pf.Destinations, requests, "new destinations ignored during the window")

	m.Move(1500 * time.Millisecond)
	assert.False(t, m.IsRetreating(1500*time.Millisecond))
	assert.Greater(t, len(pf.Destinations), requests)
}

func TestPatrol_DwellAndWrap(t *testing.T) {
	a := model.NewVec3(0, 0, 0)
	b := model.NewVec3(5, 0, 0)
	self, pf, body := fakeSelf(a)

	p := NewPatrol(Config{}, PatrolConfig{
		Waypoints:       []model.Vec3{a, b},
		WaitTime:        time.Second,
		DetectionRadius: 5,
	})
	p.Initialize(self, nil)

	p.Move(0)
	assert.True(t, p.IsWaiting(), "already standing on the first waypoint")
	assert.Equal(t, []model.Vec3{a}, pf.Destinations)

	p.Move(500 * time.Millisecond)
	assert.Equal(t, 0, p.Index())

	p.Move(time.Second)
	assert.Equal(t, 1, p.Index())
	assert.Equal(t, []model.Vec3{a, b}, pf.Destinations)
	assert.False(t, p.IsWaiting())

	body.SetPosition(b)
	p.Move(1200 * time.Millisecond)
	assert.True(t, p.IsWaiting())

	p.Move(2200 * time.Millisecond)
	assert.Equal(t, 0, p.Index(), "wraps to the first waypoint")
	assert.Equal(t, []model.Vec3{a, b, a}, pf.Destinations)
}

func TestPatrol_DetectionPreemptsAndResumes(t *testing.T) {
	a := model.NewVec3(0, 0, 0)
	b := model.NewVec3(10, 0, 0)
	self, pf, _ := fakeSelf(model.NewVec3(3, 0, 0))
	target := testutil.NewDummy(0x10000001, model.NewVec3(3, 0, 20), 100)

	p := NewPatrol(Config{}, PatrolConfig{
		Waypoints:       []model.Vec3{a, b},
		DetectionRadius: 5,
	})
	p.Initialize(self, target)

	p.Move(0)
	assert.False(t, p.IsChasing())
	assert.Equal(t, 0, p.Index())

	target.SetPosition(model.NewVec3(3, 0, 2))
	p.Move(100 * time.Millisecond)
	assert.True(t, p.IsChasing())
	dest, _ := pf.LastDestination()
	assert.Equal(t, target.Position(), dest)

	target.SetPosition(model.NewVec3(3, 0, 30))
	p.Move(200 * time.Millisecond)
	assert.False(t, p.IsChasing())
	assert.Equal(t, 0, p.Index(), "resumes at the same index")
	dest, _ = pf.LastDestination()
	assert.Equal(t, a, dest)
}

func TestPatrol_EmptyWaypointsIdles(t *testing.T) {
	self, pf, _ := fakeSelf(model.Vec3{})

	p := NewPatrol(Config{}, PatrolConfig{})
	p.Initialize(self, nil)

	for i := range 5 {
		p.Move(time.Duration(i) * 100 * time.Millisecond)
	}
	assert.Empty(t, pf.Destinations)
	assert.Equal(t, 0, p.Index())
}

func TestJumpAttack_JumpCycle(t *testing.T) {
	target := testutil.NewDummy(0x10000001, model.NewVec3(4, 0, 0), 100)
	self, pf, body := fakeSelf(model.Vec3{})

	j := NewJumpAttack(Config{StoppingDistance: 1}, JumpConfig{
		JumpRange:    5,
		JumpCooldown: 3 * time.Second,
		JumpDuration: time.Second,
		JumpHeight:   2,
	})
	j.Initialize(self, target)

	j.Move(0)
	require.True(t, j.IsJumping())
	assert.True(t, pf.IsStopped(), "pathfinder suspended while airborne")
	assert.Equal(t, model.NewVec3(3, 0, 0), j.LandingPoint())

	j.Move(500 * time.Millisecond)
	assert.InDelta(t, 1.5, body.Position().X, 1e-9)
	assert.InDelta(t, 2.0, body.Position().Y, 1e-9, "apex at mid flight")

	j.Move(time.Second)
	assert.False(t, j.IsJumping())
	assert.Equal(t, model.NewVec3(3, 0, 0), body.Position())
	assert.Equal(t, []model.Vec3{{X: 3}}, pf.Warps)
	assert.False(t, pf.IsStopped())

	j.Move(1100 * time.Millisecond)
	assert.False(t, j.IsJumping(), "cooldown not elapsed")
	dest, _ := pf.LastDestination()
	assert.Equal(t, target.Position(), dest)

	j.Move(3 * time.Second)
	assert.True(t, j.IsJumping(), "cooldown counted from the previous jump start")
}

func TestJumpAttack_StopMidJumpDefersToLanding(t *testing.T) {
	target := testutil.NewDummy(0x10000001, model.NewVec3(4, 0, 0), 100)
	self, pf, body := fakeSelf(model.Vec3{})

	j := NewJumpAttack(Config{StoppingDistance: 1}, JumpConfig{JumpRange: 5, JumpDuration: time.Second, JumpHeight: 2})
	j.Initialize(self, target)
	j.Move(0)
	require.True(t, j.IsJumping())

	j.Stop()
	j.Move(500 * time.Millisecond)
	assert.True(t, j.IsJumping(), "arc continues after Stop")
	assert.InDelta(t, 2.0, body.Position().Y, 1e-9)

	j.Move(time.Second)
	assert.False(t, j.IsJumping())
	assert.Equal(t, model.NewVec3(3, 0, 0), body.Position())
	assert.True(t, pf.IsStopped(), "stop holds after landing")

	j.Move(1100 * time.Millisecond)
	assert.Len(t, pf.Destinations, 0, "stopped strategy does not pursue")

	j.Resume()
	assert.False(t, pf.IsStopped())
}

func TestJumpAttack_LandSnapsToLandingPoint(t *testing.T) {
	target := testutil.NewDummy(0x10000001, model.NewVec3(4, 0, 0), 100)
	self, pf, body := fakeSelf(model.Vec3{})

	j := NewJumpAttack(Config{StoppingDistance: 1}, JumpConfig{JumpRange: 5, JumpDuration: time.Second, JumpHeight: 2})
	j.Initialize(self, target)
	j.Move(0)
	j.Move(300 * time.Millisecond)
	require.Positive(t, body.Position().Y)

	var a Airborne = j
	a.Land()
	assert.False(t, j.IsJumping())
	assert.Equal(t, model.NewVec3(3, 0, 0), body.Position())
	assert.Equal(t, []model.Vec3{{X: 3}}, pf.Warps)
	assert.False(t, pf.IsStopped())
}

func TestJumpAttack_OutOfRangePursues(t *testing.T) {
	target := testutil.NewDummy(0x10000001, model.NewVec3(20, 0, 0), 100)
	self, pf, _ := fakeSelf(model.Vec3{})

	j := NewJumpAttack(Config{}, JumpConfig{JumpRange: 5, JumpDuration: time.Second})
	j.Initialize(self, target)

	j.Move(0)
	assert.False(t, j.IsJumping())
	assert.Len(t, pf.Destinations, 1)
}
