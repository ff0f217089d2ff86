package attack

import (
	"time"

	"github.com/udisondev/skirmish/internal/model"
)

// Selector is implemented by strategies whose Attack delegates to one child.
// Selected is the child Attack would use right now.
type Selector interface {
	Selected() Strategy
}

// Composite pairs a melee and a ranged strategy. Attack picks melee when the target is
// within MeleeRadius, ranged otherwise. MeleeOnly and RangedOnly bypass the choice for
// scripted sequences.
type Composite struct {
	melee       *Melee
	ranged      Strategy
	meleeRadius float64

	self   Attacker
	target model.Damageable
}

// NewComposite creates a composite strategy.
func NewComposite(melee *Melee, ranged Strategy, meleeRadius float64) *Composite {
	return &Composite{melee: melee, ranged: ranged, meleeRadius: meleeRadius}
}

// Initialize initializes both children.
func (c *Composite) Initialize(self Attacker, target model.Damageable) {
	c.self = self
	c.target = target
	c.melee.Initialize(self, target)
	c.ranged.Initialize(self, target)
}

// SetTarget retargets both children.
func (c *Composite) SetTarget(target model.Damageable) {
	c.target = target
	c.melee.SetTarget(target)
	c.ranged.SetTarget(target)
}

// CanAttack is true when either child is ready.
func (c *Composite) CanAttack(now time.Duration) bool {
	return c.melee.CanAttack(now) || c.ranged.CanAttack(now)
}

// Attack uses melee inside MeleeRadius, ranged outside.
func (c *Composite) Attack(now time.Duration) bool {
	return c.Selected().Attack(now)
}

// Selected returns melee inside MeleeRadius, ranged outside.
func (c *Composite) Selected() Strategy {
	if c.inMeleeRadius() {
		return c.melee
	}
	return c.ranged
}

// MeleeOnly forces a melee attack.
func (c *Composite) MeleeOnly(now time.Duration) bool {
	return c.melee.Attack(now)
}

// RangedOnly forces a ranged attack.
func (c *Composite) RangedOnly(now time.Duration) bool {
	return c.ranged.Attack(now)
}

// SetDamageMultiplier propagates to both children.
func (c *Composite) SetDamageMultiplier(m float64) {
	c.melee.SetDamageMultiplier(m)
	c.ranged.SetDamageMultiplier(m)
}

// DamageMultiplier returns the shared multiplier.
func (c *Composite) DamageMultiplier() float64 {
	return c.melee.DamageMultiplier()
}

// Range is the longer of the two children's ranges.
func (c *Composite) Range() float64 {
	return max(c.melee.Range(), c.ranged.Range())
}

// MeleeRadius is the distance under which Attack picks melee.
func (c *Composite) MeleeRadius() float64 {
	return c.meleeRadius
}

// Melee returns the melee child.
func (c *Composite) Melee() *Melee {
	return c.melee
}

// Ranged returns the ranged child.
func (c *Composite) Ranged() Strategy {
	return c.ranged
}

func (c *Composite) inMeleeRadius() bool {
	if c.self.Body == nil || c.target == nil || c.target.IsDead() {
		return false
	}
	return c.self.Body.Position().Distance(c.target.Position()) <= c.meleeRadius
}
