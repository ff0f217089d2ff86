package ai

import (
	"time"

	"github.com/udisondev/skirmish/internal/config"
	"github.com/udisondev/skirmish/internal/model"
)

// defaultMissDelay is how long the controller waits before rolling again after a miss.
const defaultMissDelay = 500 * time.Millisecond

// Config holds per-entity controller parameters.
type Config struct {
	Name string

	MaxHealth      float64
	DetectionRange float64
	AttackRange    float64
	DefaultState   model.EnemyState // StateIdle or StatePatrolling

	RetreatEnabled         bool
	RetreatHealthThreshold float64 // percent of MaxHealth
	RetreatDistance        float64
	RetreatDuration        time.Duration

	FlashDuration             time.Duration
	InvulnerableWhileFlashing bool
	DeathRemovalDelay         time.Duration

	AttackWindup       time.Duration
	HitChance          float64 // 0..1
	MissDelay          time.Duration
	RequireLineOfSight bool
	AttackWhileMoving  bool

	// EnrageThreshold fires Hooks.OnEnrage once when health drops to this
	// percent of MaxHealth. Zero disables it.
	EnrageThreshold float64

	Cues config.Cues
}

// ConfigFromArchetype converts an archetype into controller parameters.
func ConfigFromArchetype(name string, a config.Archetype) Config {
	state, ok := model.ParseEnemyState(a.DefaultState)
	if !ok || (state != model.StateIdle && state != model.StatePatrolling) {
		state = model.StateIdle
	}

	cfg := Config{
		Name:                      name,
		MaxHealth:                 a.MaxHealth,
		DetectionRange:            a.DetectionRange,
		AttackRange:               a.AttackRange,
		DefaultState:              state,
		RetreatEnabled:            a.RetreatEnabled,
		RetreatHealthThreshold:    a.RetreatHealthThreshold,
		RetreatDistance:           a.RetreatDistance,
		RetreatDuration:           a.RetreatDuration,
		FlashDuration:             a.FlashDuration,
		InvulnerableWhileFlashing: a.InvulnerableWhileFlashing,
		DeathRemovalDelay:         a.DeathRemovalDelay,
		AttackWindup:              a.AttackWindup,
		HitChance:                 a.HitChance,
		RequireLineOfSight:        a.RequireLineOfSight,
		AttackWhileMoving:         a.AttackWhileMoving,
		Cues:                      a.Cues,
	}
	if a.Boss != nil {
		cfg.EnrageThreshold = a.Boss.EnrageThreshold
	}
	return cfg
}
