package attack

import (
	"log/slog"
	"time"

	"github.com/udisondev/skirmish/internal/geo"
	"github.com/udisondev/skirmish/internal/model"
	"github.com/udisondev/skirmish/internal/projectile"
	"github.com/udisondev/skirmish/internal/simlog"
)

// LobbedConfig configures an arcing area attack.
type LobbedConfig struct {
	Damage           float64
	Cooldown         time.Duration
	Range            float64
	FlightTime       time.Duration
	ArcHeight        float64
	SplashRadius     float64
	Fragments        int
	FragmentDamage   float64
	FragmentSpeed    float64
	FragmentLifetime time.Duration
}

// Lobbed throws a projectile at the point the target stood on at launch. On landing it
// deals splash damage and scatters fragments in independent random directions.
type Lobbed struct {
	base
	cfg LobbedConfig
}

// NewLobbed creates a lobbed strategy.
func NewLobbed(cfg LobbedConfig) *Lobbed {
	return &Lobbed{base: newBase(cfg.Cooldown, cfg.Range, false), cfg: cfg}
}

// CanAttack reports whether a throw is allowed at now.
func (l *Lobbed) CanAttack(now time.Duration) bool {
	if l.self.Launcher == nil {
		l.missing.Warn("lobbed attack has no launcher", "entityID", l.self.ID)
		return false
	}
	return l.ready(now)
}

// Attack throws one projectile.
func (l *Lobbed) Attack(now time.Duration) bool {
	if !l.CanAttack(now) {
		return false
	}
	l.markFired(now)

	captured := l.target.Position()
	damage := l.cfg.Damage * l.multiplier
	fragmentDamage := l.cfg.FragmentDamage * l.multiplier

	l.self.Launcher.Lob(projectile.Lobbed{
		Owner:      l.self.ID,
		Start:      l.self.Body.Position(),
		Target:     captured,
		FlightTime: l.cfg.FlightTime,
		Height:     l.cfg.ArcHeight,
		OnImpact: func(p model.Vec3) {
			l.impact(p, damage, fragmentDamage)
		},
	})

	if simlog.IsDebugEnabled() {
		slog.Debug("lobbed attack",
			"entityID", l.self.ID,
			"target", captured,
			"damage", damage)
	}
	return true
}

func (l *Lobbed) impact(p model.Vec3, damage, fragmentDamage float64) {
	if l.self.World != nil && l.cfg.SplashRadius > 0 {
		for _, target := range l.self.World.OverlapSphere(p, l.cfg.SplashRadius, l.self.mask()) {
			if target.ID() == l.self.ID {
				continue
			}
			target.TakeDamage(damage)
		}
	}

	for range l.cfg.Fragments {
		yaw := 0.0
		if l.self.Rand != nil {
			yaw = l.self.Rand.Float64() * 360
		}
		l.self.Launcher.Launch(projectile.Straight{
			Owner:     l.self.ID,
			Origin:    p,
			Direction: geo.FromYaw(yaw),
			Speed:     l.cfg.FragmentSpeed,
			Lifetime:  l.cfg.FragmentLifetime,
			Damage:    fragmentDamage,
			Mask:      l.self.mask(),
		})
	}
}
