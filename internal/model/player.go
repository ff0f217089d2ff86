package model

import "sync"

// Player is the hostile target enemies hunt.
// Position and facing are owned by whoever moves the player (input, scripted circuit);
// enemies only read them.
type Player struct {
	id   EntityID
	name string

	mu            sync.RWMutex
	position      Vec3
	forward       Vec3
	velocity      Vec3
	currentHealth float64
	maxHealth     float64
	damageTaken   float64
	hits          int

	deathOnce sync.Once
	onDeath   func(*Player)
}

// NewPlayer creates a player at full health facing +Z.
func NewPlayer(id EntityID, name string, pos Vec3, maxHealth float64) *Player {
	return &Player{
		id:            id,
		name:          name,
		position:      pos,
		forward:       Vec3{Z: 1},
		currentHealth: maxHealth,
		maxHealth:     maxHealth,
	}
}

// ID returns the player's entity ID.
func (p *Player) ID() EntityID {
	return p.id
}

// Name returns the player's name.
func (p *Player) Name() string {
	return p.name
}

// SetOnDeath registers a callback invoked once when health reaches zero.
func (p *Player) SetOnDeath(fn func(*Player)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onDeath = fn
}

// TakeDamage reduces health (clamped at 0). Dead players ignore damage.
func (p *Player) TakeDamage(amount float64) {
	if amount <= 0 {
		return
	}

	p.mu.Lock()
	if p.currentHealth <= 0 {
		p.mu.Unlock()
		return
	}
	p.currentHealth = max(p.currentHealth-amount, 0)
	p.damageTaken += amount
	p.hits++
	dead := p.currentHealth <= 0
	onDeath := p.onDeath
	p.mu.Unlock()

	if dead {
		p.deathOnce.Do(func() {
			if onDeath != nil {
				onDeath(p)
			}
		})
	}
}

// Heal restores health up to maxHealth. Dead players stay dead.
func (p *Player) Heal(amount float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.currentHealth <= 0 || amount <= 0 {
		return
	}
	p.currentHealth = min(p.currentHealth+amount, p.maxHealth)
}

// CurrentHealth returns current health.
func (p *Player) CurrentHealth() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.currentHealth
}

// MaxHealth returns maximum health.
func (p *Player) MaxHealth() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.maxHealth
}

// IsDead reports whether health reached zero.
func (p *Player) IsDead() bool {
	return p.CurrentHealth() <= 0
}

// DamageTaken returns total damage received.
func (p *Player) DamageTaken() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.damageTaken
}

// Hits returns the number of damage events received.
func (p *Player) Hits() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.hits
}

// Position returns a copy of the player position.
func (p *Player) Position() Vec3 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.position
}

// SetPosition moves the player.
func (p *Player) SetPosition(pos Vec3) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.position = pos
}

// Forward returns the facing direction.
func (p *Player) Forward() Vec3 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.forward
}

// SetForward sets the facing direction. Zero vectors are ignored.
func (p *Player) SetForward(dir Vec3) {
	dir = dir.Flat().Normalize()
	if dir.IsZero() {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.forward = dir
}

// ApplyImpulse adds knockback velocity.
func (p *Player) ApplyImpulse(impulse Vec3) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.velocity = p.velocity.Add(impulse)
}

// Velocity returns accumulated knockback velocity.
func (p *Player) Velocity() Vec3 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.velocity
}

// Integrate applies knockback velocity for dt seconds with linear damping.
func (p *Player) Integrate(dt, damping float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.velocity.IsZero() {
		return
	}
	p.position = p.position.Add(p.velocity.Scale(dt))
	if p.position.Y < 0 {
		p.position.Y = 0
	}
	p.velocity = p.velocity.Scale(max(0, 1-damping*dt))
	if p.velocity.LenSq() < 1e-6 {
		p.velocity = Vec3{}
	}
}
