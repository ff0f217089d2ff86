// Package boss layers special attack sequences and enrage on top of an enemy controller.
package boss

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/udisondev/skirmish/internal/ai"
	"github.com/udisondev/skirmish/internal/attack"
	"github.com/udisondev/skirmish/internal/config"
	"github.com/udisondev/skirmish/internal/fsm"
	"github.com/udisondev/skirmish/internal/model"
)

// Presentation cues played by the boss layer.
const (
	cueEnrage  = "enrage"
	cueSpecial = "special"
)

// ErrNotComposite is returned when the controller's attack is not an *attack.Composite.
var ErrNotComposite = errors.New("boss requires a composite attack")

// Boss drives a controller with a state machine alongside it:
// engage -> special_melee | special_ranged -> engage, enraged once, dead at the end.
// It is registered with the TickManager in place of the controller.
type Boss struct {
	cfg       config.BossConfig
	ctrl      *ai.Controller
	composite *attack.Composite
	machine   *fsm.Machine

	engage        *engageState
	enragedSt     *enragedState
	specialMelee  *specialState
	specialRanged *specialState
	dead          *deadState

	lastSpecial   time.Duration
	specials      int
	enraged       bool
	enragePending bool
}

// New builds the boss layer. Call Hooks before building the controller, then Attach.
func New(cfg config.BossConfig) *Boss {
	b := &Boss{cfg: cfg, machine: fsm.New()}
	b.engage = &engageState{name: "engage"}
	b.enragedSt = &enragedState{b: b}
	b.specialMelee = &specialState{b: b, melee: true, steps: max(cfg.SpecialMeleeHits, 1)}
	b.specialRanged = &specialState{b: b, steps: max(cfg.SpecialRangedVolley, 1)}
	b.dead = &deadState{}

	m := b.machine
	m.AddAnyTransition(b.dead, func() bool { return b.ctrl != nil && b.ctrl.IsDead() })
	m.AddAnyTransition(b.enragedSt, func() bool { return b.enragePending && !b.enraged })

	for _, fighting := range []fsm.State{b.engage, b.enragedSt} {
		m.AddTransition(fighting, b.specialMelee, func() bool { return b.specialDue() && b.inMeleeRadius() })
		m.AddTransition(fighting, b.specialRanged, func() bool { return b.specialDue() && !b.inMeleeRadius() })
	}
	for _, sp := range []*specialState{b.specialMelee, b.specialRanged} {
		m.AddTransition(sp, b.enragedSt, func() bool { return sp.finished() && b.enraged })
		m.AddTransition(sp, b.engage, func() bool { return sp.finished() && !b.enraged })
	}

	m.OnChange = func(from, to fsm.State) {
		if b.ctrl == nil {
			return
		}
		slog.Info("boss phase changed",
			"entityID", b.ctrl.ID(),
			"from", stateName(from),
			"to", stateName(to),
			"damageMultiplier", b.DamageMultiplier())
	}
	return b
}

// Hooks wraps base so the boss can veto controller attacks during specials
// and learn about enrage. The base hooks still run.
func (b *Boss) Hooks(base ai.Hooks) ai.Hooks {
	hooks := base
	hooks.PreAttack = func(c *ai.Controller) bool {
		if b.inSpecial() || b.machine.Current() == b.dead {
			return false
		}
		if base.PreAttack != nil {
			return base.PreAttack(c)
		}
		return true
	}
	hooks.OnEnrage = func(c *ai.Controller) {
		b.enragePending = true
		if base.OnEnrage != nil {
			base.OnEnrage(c)
		}
	}
	return hooks
}

// Attach binds the controller built with Hooks.
func (b *Boss) Attach(c *ai.Controller) error {
	comp, ok := c.Attack().(*attack.Composite)
	if !ok {
		return fmt.Errorf("attaching boss %d: %w", c.ID(), ErrNotComposite)
	}
	b.ctrl = c
	b.composite = comp
	return nil
}

// Controller returns the wrapped controller.
func (b *Boss) Controller() *ai.Controller {
	return b.ctrl
}

// ID returns the controller's entity ID.
func (b *Boss) ID() model.EntityID {
	return b.ctrl.ID()
}

// Phase returns the current boss state name.
func (b *Boss) Phase() string {
	return stateName(b.machine.Current())
}

// Specials returns how many special sequences started.
func (b *Boss) Specials() int {
	return b.specials
}

// IsEnraged reports whether enrage has been applied.
func (b *Boss) IsEnraged() bool {
	return b.enraged
}

// DamageMultiplier returns the composite's current multiplier.
func (b *Boss) DamageMultiplier() float64 {
	if b.composite == nil {
		return 1
	}
	return b.composite.DamageMultiplier()
}

// Start starts the controller and enters engage.
func (b *Boss) Start() {
	b.ctrl.Start()
	b.lastSpecial = b.now()
	_ = b.machine.SetState(b.engage)
}

// Stop stops the controller.
func (b *Boss) Stop() {
	b.ctrl.Stop()
}

// Tick evaluates the boss machine, then ticks the controller.
func (b *Boss) Tick() {
	b.machine.Tick()
	b.ctrl.Tick()
}

// compound multiplies the damage multiplier by f, capped at MaxDamageMultiplier.
func (b *Boss) compound(f float64) {
	if f <= 0 {
		return
	}
	m := b.composite.DamageMultiplier() * f
	if b.cfg.MaxDamageMultiplier > 0 {
		m = min(m, b.cfg.MaxDamageMultiplier)
	}
	b.composite.SetDamageMultiplier(m)
}

func (b *Boss) now() time.Duration {
	return b.ctrl.Scheduler().Now()
}

func (b *Boss) inSpecial() bool {
	cur := b.machine.Current()
	return cur == b.specialMelee || cur == b.specialRanged
}

// specialDue is true when the interval elapsed and a live target is within reach.
func (b *Boss) specialDue() bool {
	if b.cfg.SpecialInterval <= 0 || b.now()-b.lastSpecial < b.cfg.SpecialInterval {
		return false
	}
	target := b.ctrl.Target()
	if target == nil || target.IsDead() {
		return false
	}
	return b.ctrl.Position().Distance(target.Position()) <= b.composite.Range()
}

func (b *Boss) inMeleeRadius() bool {
	target := b.ctrl.Target()
	if target == nil {
		return false
	}
	return b.ctrl.Position().Distance(target.Position()) <= b.composite.MeleeRadius()
}

func stateName(s fsm.State) string {
	if n, ok := s.(fsm.Named); ok {
		return n.Name()
	}
	return "none"
}
