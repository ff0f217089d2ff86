package movement

import (
	"log/slog"
	"time"

	"github.com/udisondev/skirmish/internal/geo"
	"github.com/udisondev/skirmish/internal/model"
	"github.com/udisondev/skirmish/internal/simlog"
)

// MeleeConfig configures melee circling.
type MeleeConfig struct {
	CloseRange         float64 // below this distance the entity circles
	AttackRange        float64
	CircleRadius       float64
	CircleIntervalMin  time.Duration
	CircleIntervalMax  time.Duration
	RetreatAfterAttack time.Duration
	RetreatDistance    float64
}

// MeleeCircling closes in on the target and, once very close, strafes around it on
// a ring instead of standing still. After each attack it backs off for a short window.
type MeleeCircling struct {
	base
	melee MeleeConfig

	circling    bool
	circleAngle float64 // degrees around the target
	nextCircle  time.Duration

	retreatUntil time.Duration
	retreating   bool
}

// NewMeleeCircling creates a melee circling strategy.
func NewMeleeCircling(cfg Config, melee MeleeConfig) *MeleeCircling {
	return &MeleeCircling{base: base{cfg: cfg}, melee: melee}
}

// Move picks the behaviour for the current distance band.
func (m *MeleeCircling) Move(now time.Duration) {
	dt := m.step(now)
	if m.stopped || !m.ready() || !m.hasTarget() {
		return
	}

	targetPos := m.target.Position()

	if m.IsRetreating(now) {
		if m.cfg.FaceTarget {
			m.face(targetPos, dt)
		}
		return
	}
	m.retreating = false

	dist := m.DistanceToTarget()
	switch {
	case dist < m.melee.CloseRange:
		if !m.circling || now >= m.nextCircle {
			m.pickCircleAngle(now)
		}
		m.goTo(m.circlePoint(targetPos))
		m.face(targetPos, dt)
	case dist <= m.melee.AttackRange:
		// Within reach: keep squaring up to the target while approaching.
		m.circling = false
		m.goTo(targetPos)
		m.face(targetPos, dt)
	default:
		m.circling = false
		m.goTo(targetPos)
		if m.cfg.FaceTarget {
			m.face(targetPos, dt)
		}
	}
}

// NotifyAttacked starts the retreat-after-attack window.
func (m *MeleeCircling) NotifyAttacked(now time.Duration) {
	if m.melee.RetreatAfterAttack <= 0 || !m.ready() || !m.hasTarget() {
		return
	}

	pos := m.self.Body.Position()
	away := pos.Sub(m.target.Position()).Flat().Normalize()
	if away.IsZero() {
		away = m.self.Body.Forward().Scale(-1)
	}

	m.retreating = true
	m.retreatUntil = now + m.melee.RetreatAfterAttack
	m.circling = false
	m.self.Pathfinder.Resume()
	m.goTo(pos.Add(away.Scale(m.melee.RetreatDistance)))

	if simlog.IsDebugEnabled() {
		slog.Debug("retreat after attack",
			"entityID", m.self.ID,
			"until", m.retreatUntil)
	}
}

// IsRetreating reports whether the post-attack window is active at now.
func (m *MeleeCircling) IsRetreating(now time.Duration) bool {
	return m.retreating && now < m.retreatUntil
}

// IsCircling reports whether the entity holds a circle point.
func (m *MeleeCircling) IsCircling() bool {
	return m.circling
}

// CircleAngle returns the held angle around the target in degrees.
func (m *MeleeCircling) CircleAngle() float64 {
	return m.circleAngle
}

func (m *MeleeCircling) pickCircleAngle(now time.Duration) {
	angle := 0.0
	if m.self.Rand != nil {
		angle = m.self.Rand.Float64() * 360
	}
	m.circling = true
	m.circleAngle = angle
	m.nextCircle = now + randDuration(m.self.Rand, m.melee.CircleIntervalMin, m.melee.CircleIntervalMax)
}

func (m *MeleeCircling) circlePoint(center model.Vec3) model.Vec3 {
	return center.Add(geo.FromYaw(m.circleAngle).Scale(m.melee.CircleRadius))
}
