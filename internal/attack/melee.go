package attack

import (
	"log/slog"
	"time"

	"github.com/udisondev/skirmish/internal/geo"
	"github.com/udisondev/skirmish/internal/model"
	"github.com/udisondev/skirmish/internal/simlog"
)

// MeleeConfig configures a melee swing.
type MeleeConfig struct {
	Damage             float64
	Cooldown           time.Duration
	Range              float64
	Radius             float64
	AttackAngle        float64 // full cone angle in degrees, geo.UnlimitedAngle hits all around
	OriginOffset       float64 // swing centre distance in front of the attacker
	Knockback          float64
	KnockUp            float64
	RequireLineOfSight bool
}

// Melee hits every damageable inside a sphere in front of the attacker that also lies
// within the forward cone.
type Melee struct {
	base
	cfg MeleeConfig
}

// NewMelee creates a melee strategy.
func NewMelee(cfg MeleeConfig) *Melee {
	return &Melee{base: newBase(cfg.Cooldown, cfg.Range, cfg.RequireLineOfSight), cfg: cfg}
}

// CanAttack reports whether a swing is allowed at now.
func (m *Melee) CanAttack(now time.Duration) bool {
	return m.ready(now)
}

// Attack swings once. Each distinct damageable in the cone takes damage once.
func (m *Melee) Attack(now time.Duration) bool {
	if !m.CanAttack(now) {
		return false
	}
	m.markFired(now)

	pos := m.self.Body.Position()
	forward := m.self.Body.Forward()
	origin := pos.Add(forward.Scale(m.cfg.OriginOffset))
	damage := m.cfg.Damage * m.multiplier

	if m.self.World == nil {
		m.missing.Warn("melee attack has no world query", "entityID", m.self.ID)
		return true
	}

	hit := make(map[model.EntityID]struct{})
	for _, target := range m.self.World.OverlapSphere(origin, m.cfg.Radius, m.self.mask()) {
		id := target.ID()
		if id == m.self.ID {
			continue
		}
		if _, dup := hit[id]; dup {
			continue
		}
		targetPos := target.Position()
		// The sphere is centred on origin, the cone starts at the attacker.
		if !geo.WithinCone(pos, forward, targetPos, m.cfg.AttackAngle) {
			continue
		}
		hit[id] = struct{}{}

		target.TakeDamage(damage)
		m.push(target, pos, targetPos)
	}

	if simlog.IsDebugEnabled() {
		slog.Debug("melee attack",
			"entityID", m.self.ID,
			"damage", damage,
			"hits", len(hit))
	}
	return true
}

// push applies outward and upward knockback to targets that accept impulses.
func (m *Melee) push(target model.Damageable, from, to model.Vec3) {
	if m.cfg.Knockback <= 0 && m.cfg.KnockUp <= 0 {
		return
	}
	imp, ok := target.(model.Impulsable)
	if !ok {
		return
	}
	out := to.Sub(from).Flat().Normalize()
	imp.ApplyImpulse(out.Scale(m.cfg.Knockback).Add(model.Up.Scale(m.cfg.KnockUp)))
}
