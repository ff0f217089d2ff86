package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var (
	// ErrUnknownMovement is returned for an unrecognised movement kind.
	ErrUnknownMovement = errors.New("unknown movement kind")
	// ErrUnknownAttack is returned for an unrecognised attack kind.
	ErrUnknownAttack = errors.New("unknown attack kind")
	// ErrInvalidValue is returned for out-of-range numeric parameters.
	ErrInvalidValue = errors.New("invalid value")
)

// Movement kinds.
const (
	MovementDirect = "direct"
	MovementMelee  = "melee"
	MovementPatrol = "patrol"
	MovementJump   = "jump"
)

// Attack kinds.
const (
	AttackMelee     = "melee"
	AttackRanged    = "ranged"
	AttackLobbed    = "lobbed"
	AttackComposite = "composite"
)

// Cues names the presentation cues an archetype plays. Empty cues are skipped.
type Cues struct {
	Idle    string `yaml:"idle"`
	Move    string `yaml:"move"`
	Attack  string `yaml:"attack"`
	Hit     string `yaml:"hit"`
	Retreat string `yaml:"retreat"`
	Death   string `yaml:"death"`
}

// DefaultCues returns the standard cue names.
func DefaultCues() Cues {
	return Cues{
		Idle:    "idle",
		Move:    "move",
		Attack:  "attack",
		Hit:     "hit",
		Retreat: "retreat",
		Death:   "death",
	}
}

// Archetype describes one kind of enemy.
type Archetype struct {
	MaxHealth      float64 `yaml:"max_health"`
	DetectionRange float64 `yaml:"detection_range"`
	AttackRange    float64 `yaml:"attack_range"`
	DefaultState   string  `yaml:"default_state"` // idle | patrolling

	RetreatEnabled         bool          `yaml:"retreat_enabled"`
	RetreatHealthThreshold float64       `yaml:"retreat_health_threshold"` // percent of max health
	RetreatDistance        float64       `yaml:"retreat_distance"`
	RetreatDuration        time.Duration `yaml:"retreat_duration"`

	FlashDuration             time.Duration `yaml:"flash_duration"`
	InvulnerableWhileFlashing bool          `yaml:"invulnerable_while_flashing"`
	DeathRemovalDelay         time.Duration `yaml:"death_removal_delay"`

	AttackWindup       time.Duration `yaml:"attack_windup"`
	HitChance          float64       `yaml:"hit_chance"` // 0..1
	RequireLineOfSight bool          `yaml:"require_line_of_sight"`
	AttackWhileMoving  bool          `yaml:"attack_while_moving"`

	Cues     Cues           `yaml:"cues"`
	Movement MovementConfig `yaml:"movement"`
	Attack   AttackConfig   `yaml:"attack"`
	Boss     *BossConfig    `yaml:"boss,omitempty"`
}

// MovementConfig configures a movement strategy. Fields are grouped by kind.
type MovementConfig struct {
	Kind string `yaml:"kind"`

	Speed            float64 `yaml:"speed"`
	StoppingDistance float64 `yaml:"stopping_distance"`
	FaceTarget       bool    `yaml:"face_target"`
	AvoidObstacles   bool    `yaml:"avoid_obstacles"`
	RotationSpeed    float64 `yaml:"rotation_speed"` // degrees per second, 0 snaps

	// melee
	CloseRange         float64       `yaml:"close_range"`
	AttackRange        float64       `yaml:"attack_range"`
	CircleRadius       float64       `yaml:"circle_radius"`
	CircleIntervalMin  time.Duration `yaml:"circle_interval_min"`
	CircleIntervalMax  time.Duration `yaml:"circle_interval_max"`
	RetreatAfterAttack time.Duration `yaml:"retreat_after_attack"`
	RetreatDistance    float64       `yaml:"retreat_distance"`

	// patrol
	Waypoints       []Point       `yaml:"waypoints"`
	WaitTime        time.Duration `yaml:"wait_time"`
	DetectionRadius float64       `yaml:"detection_radius"`

	// jump
	JumpRange    float64       `yaml:"jump_range"`
	JumpCooldown time.Duration `yaml:"jump_cooldown"`
	JumpDuration time.Duration `yaml:"jump_duration"`
	JumpHeight   float64       `yaml:"jump_height"`
}

// AttackConfig configures an attack strategy. Fields are grouped by kind.
type AttackConfig struct {
	Kind string `yaml:"kind"`

	Damage             float64       `yaml:"damage"`
	Cooldown           time.Duration `yaml:"cooldown"`
	Range              float64       `yaml:"range"`
	RequireLineOfSight bool          `yaml:"require_line_of_sight"`

	// melee
	Radius       float64 `yaml:"radius"`
	AttackAngle  float64 `yaml:"attack_angle"` // degrees, 360 = all around
	OriginOffset float64 `yaml:"origin_offset"`
	Knockback    float64 `yaml:"knockback"`
	KnockUp      float64 `yaml:"knock_up"`

	// ranged
	ProjectileSpeed    float64       `yaml:"projectile_speed"`
	ProjectileLifetime time.Duration `yaml:"projectile_lifetime"`
	Spread             float64       `yaml:"spread"`  // degrees
	Muzzles            []Point       `yaml:"muzzles"` // local offsets: x right, y up, z forward
	RandomMuzzle       bool          `yaml:"random_muzzle"`
	BurstCount         int           `yaml:"burst_count"`
	BurstDelay         time.Duration `yaml:"burst_delay"`

	// lobbed
	FlightTime       time.Duration `yaml:"flight_time"`
	ArcHeight        float64       `yaml:"arc_height"`
	SplashRadius     float64       `yaml:"splash_radius"`
	Fragments        int           `yaml:"fragments"`
	FragmentDamage   float64       `yaml:"fragment_damage"`
	FragmentSpeed    float64       `yaml:"fragment_speed"`
	FragmentLifetime time.Duration `yaml:"fragment_lifetime"`

	// composite
	Melee       *AttackConfig `yaml:"melee,omitempty"`
	Ranged      *AttackConfig `yaml:"ranged,omitempty"`
	MeleeRadius float64       `yaml:"melee_radius"`
}

// BossConfig layers special attacks and enrage on top of an archetype.
type BossConfig struct {
	EnrageThreshold     float64       `yaml:"enrage_threshold"` // percent of max health
	EnrageMultiplier    float64       `yaml:"enrage_multiplier"`
	SpecialMultiplier   float64       `yaml:"special_multiplier"`
	MaxDamageMultiplier float64       `yaml:"max_damage_multiplier"`
	SpecialInterval     time.Duration `yaml:"special_interval"`
	SpecialStepDelay    time.Duration `yaml:"special_step_delay"`
	SpecialMeleeHits    int           `yaml:"special_melee_hits"`
	SpecialRangedVolley int           `yaml:"special_ranged_volley"`
}

// Validate checks an archetype.
func (a Archetype) Validate() error {
	if a.MaxHealth <= 0 {
		return fmt.Errorf("max_health %v: %w", a.MaxHealth, ErrInvalidValue)
	}
	if a.DetectionRange < 0 || a.AttackRange < 0 {
		return fmt.Errorf("negative range: %w", ErrInvalidValue)
	}
	if a.AttackRange > a.DetectionRange {
		return fmt.Errorf("attack_range %v exceeds detection_range %v: %w",
			a.AttackRange, a.DetectionRange, ErrInvalidValue)
	}
	if a.RetreatHealthThreshold < 0 || a.RetreatHealthThreshold > 100 {
		return fmt.Errorf("retreat_health_threshold %v: %w", a.RetreatHealthThreshold, ErrInvalidValue)
	}
	if a.HitChance < 0 || a.HitChance > 1 {
		return fmt.Errorf("hit_chance %v: %w", a.HitChance, ErrInvalidValue)
	}
	switch a.DefaultState {
	case "", "idle", "patrolling":
	default:
		return fmt.Errorf("default_state %q: %w", a.DefaultState, ErrInvalidValue)
	}
	if err := a.Movement.Validate(); err != nil {
		return fmt.Errorf("movement: %w", err)
	}
	if err := a.Attack.Validate(); err != nil {
		return fmt.Errorf("attack: %w", err)
	}
	if a.Boss != nil {
		if err := a.Boss.Validate(); err != nil {
			return fmt.Errorf("boss: %w", err)
		}
		if a.Attack.Kind != AttackComposite {
			return fmt.Errorf("boss requires composite attack, got %q: %w", a.Attack.Kind, ErrInvalidValue)
		}
	}
	return nil
}

// Validate checks a movement config.
func (m MovementConfig) Validate() error {
	switch m.Kind {
	case MovementDirect, MovementMelee, MovementPatrol, MovementJump:
	default:
		return fmt.Errorf("%q: %w", m.Kind, ErrUnknownMovement)
	}
	if m.Speed < 0 || m.StoppingDistance < 0 {
		return fmt.Errorf("negative speed or stopping distance: %w", ErrInvalidValue)
	}
	if m.CircleIntervalMax < m.CircleIntervalMin {
		return fmt.Errorf("circle_interval_max below min: %w", ErrInvalidValue)
	}
	return nil
}

// Validate checks an attack config.
func (c AttackConfig) Validate() error {
	if c.Damage < 0 || c.Range < 0 || c.Cooldown < 0 {
		return fmt.Errorf("negative damage, range or cooldown: %w", ErrInvalidValue)
	}

	switch c.Kind {
	case AttackMelee:
	case AttackRanged:
		if c.BurstCount > 1 && c.Cooldown < time.Duration(c.BurstCount)*c.BurstDelay {
			slog.Warn("ranged cooldown shorter than burst",
				"cooldown", c.Cooldown,
				"burstCount", c.BurstCount,
				"burstDelay", c.BurstDelay)
		}
	case AttackLobbed:
		if c.FlightTime <= 0 {
			return fmt.Errorf("flight_time must be positive: %w", ErrInvalidValue)
		}
	case AttackComposite:
		if c.Melee == nil || c.Ranged == nil {
			return fmt.Errorf("composite needs melee and ranged: %w", ErrInvalidValue)
		}
		if c.Melee.Kind != AttackMelee {
			return fmt.Errorf("composite melee kind %q: %w", c.Melee.Kind, ErrInvalidValue)
		}
		if c.Ranged.Kind != AttackRanged && c.Ranged.Kind != AttackLobbed {
			return fmt.Errorf("composite ranged kind %q: %w", c.Ranged.Kind, ErrInvalidValue)
		}
		if err := c.Melee.Validate(); err != nil {
			return fmt.Errorf("melee: %w", err)
		}
		if err := c.Ranged.Validate(); err != nil {
			return fmt.Errorf("ranged: %w", err)
		}
	default:
		return fmt.Errorf("%q: %w", c.Kind, ErrUnknownAttack)
	}
	return nil
}

// Validate checks boss parameters.
func (b BossConfig) Validate() error {
	if b.EnrageThreshold < 0 || b.EnrageThreshold > 100 {
		return fmt.Errorf("enrage_threshold %v: %w", b.EnrageThreshold, ErrInvalidValue)
	}
	if b.EnrageMultiplier < 0 || b.SpecialMultiplier < 0 {
		return fmt.Errorf("negative multiplier: %w", ErrInvalidValue)
	}
	if b.MaxDamageMultiplier > 0 && b.MaxDamageMultiplier < 1 {
		return fmt.Errorf("max_damage_multiplier %v below 1: %w", b.MaxDamageMultiplier, ErrInvalidValue)
	}
	return nil
}
