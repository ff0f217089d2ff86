package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the config file path.
const EnvConfigPath = "SKIRMISH_CONFIG"

// ErrUnknownArchetype is returned when a spawn point names a missing archetype.
var ErrUnknownArchetype = errors.New("unknown archetype")

// Arena holds all configuration for a headless arena run.
type Arena struct {
	LogLevel     string        `yaml:"log_level"`
	TickInterval time.Duration `yaml:"tick_interval"`
	RunFor       time.Duration `yaml:"run_for"` // 0 runs until interrupted
	Seed         uint64        `yaml:"seed"`

	Database DatabaseConfig `yaml:"database"`
	Grid     GridConfig     `yaml:"grid"`
	Player   PlayerConfig   `yaml:"player"`
	Spawner  SpawnerConfig  `yaml:"spawner"`

	Archetypes map[string]Archetype `yaml:"archetypes"`
}

// GridConfig describes the navigation grid.
type GridConfig struct {
	Origin   Point   `yaml:"origin"`
	CellSize float64 `yaml:"cell_size"`
	Width    int32   `yaml:"width"`
	Depth    int32   `yaml:"depth"`
	Walls    []Rect  `yaml:"walls"`
}

// PlayerConfig describes the scripted player dummy.
type PlayerConfig struct {
	Name      string        `yaml:"name"`
	MaxHealth float64       `yaml:"max_health"`
	Speed     float64       `yaml:"speed"`
	Circuit   []Point       `yaml:"circuit"`
	Damage    float64       `yaml:"damage"`
	Range     float64       `yaml:"range"`
	Cooldown  time.Duration `yaml:"cooldown"`
}

// SpawnerConfig configures the enemy spawner.
type SpawnerConfig struct {
	MaxConcurrent int           `yaml:"max_concurrent"`
	MaxTotal      int           `yaml:"max_total"` // 0 is unlimited
	PointDelay    time.Duration `yaml:"point_delay"`
	WaveDelay     time.Duration `yaml:"wave_delay"`
	Loop          bool          `yaml:"loop"`
	Points        []SpawnPoint  `yaml:"points"`
}

// SpawnPoint is one spawn location.
type SpawnPoint struct {
	Position       Point         `yaml:"position"`
	Archetype      string        `yaml:"archetype"`
	Count          int           `yaml:"count"`
	PerEntityDelay time.Duration `yaml:"per_entity_delay"`
	SampleRadius   float64       `yaml:"sample_radius"`
}

// DefaultArena returns a complete playable configuration.
func DefaultArena() Arena {
	return Arena{
		LogLevel:     "info",
		TickInterval: 50 * time.Millisecond,
		RunFor:       60 * time.Second,
		Seed:         1,
		Database:     DefaultDatabase(),
		Grid: GridConfig{
			CellSize: 1,
			Width:    40,
			Depth:    40,
			Walls: []Rect{
				{MinX: 18, MinZ: 8, MaxX: 19, MaxZ: 20},
				{MinX: 8, MinZ: 28, MaxX: 16, MaxZ: 29},
			},
		},
		Player: PlayerConfig{
			Name:      "dummy",
			MaxHealth: 2000,
			Speed:     2.5,
			Circuit: []Point{
				{X: 10, Z: 10}, {X: 30, Z: 10}, {X: 30, Z: 30}, {X: 10, Z: 30},
			},
			Damage:   35,
			Range:    3,
			Cooldown: 600 * time.Millisecond,
		},
		Spawner: SpawnerConfig{
			MaxConcurrent: 4,
			MaxTotal:      20,
			PointDelay:    2 * time.Second,
			WaveDelay:     5 * time.Second,
			Loop:          true,
			Points: []SpawnPoint{
				{Position: Point{X: 5, Z: 5}, Archetype: "grunt", Count: 3, PerEntityDelay: 500 * time.Millisecond, SampleRadius: 2},
				{Position: Point{X: 35, Z: 5}, Archetype: "gunner", Count: 2, PerEntityDelay: 700 * time.Millisecond, SampleRadius: 2},
				{Position: Point{X: 35, Z: 35}, Archetype: "bomber", Count: 1, SampleRadius: 2},
				{Position: Point{X: 5, Z: 35}, Archetype: "leaper", Count: 2, PerEntityDelay: 500 * time.Millisecond, SampleRadius: 2},
				{Position: Point{X: 20, Z: 36}, Archetype: "sentry", Count: 1, SampleRadius: 2},
				{Position: Point{X: 20, Z: 24}, Archetype: "warden", Count: 1, SampleRadius: 3},
			},
		},
		Archetypes: DefaultArchetypes(),
	}
}

// DefaultArchetypes returns the built-in enemy roster.
func DefaultArchetypes() map[string]Archetype {
	base := func() Archetype {
		return Archetype{
			MaxHealth:              100,
			DetectionRange:         15,
			AttackRange:            2,
			DefaultState:           "idle",
			RetreatEnabled:         true,
			RetreatHealthThreshold: 25,
			RetreatDistance:        6,
			RetreatDuration:        2 * time.Second,
			FlashDuration:          150 * time.Millisecond,
			DeathRemovalDelay:      2 * time.Second,
			HitChance:              1,
			Cues:                   DefaultCues(),
		}
	}

	melee := AttackConfig{
		Kind:         AttackMelee,
		Damage:       12,
		Cooldown:     1200 * time.Millisecond,
		Range:        2,
		Radius:       1.5,
		AttackAngle:  90,
		OriginOffset: 1,
		Knockback:    2,
		KnockUp:      0.5,
	}

	grunt := base()
	grunt.AttackWindup = 300 * time.Millisecond
	grunt.Movement = MovementConfig{
		Kind:               MovementMelee,
		Speed:              3.5,
		StoppingDistance:   1,
		FaceTarget:         true,
		RotationSpeed:      360,
		CloseRange:         1.2,
		AttackRange:        2,
		CircleRadius:       2,
		CircleIntervalMin:  time.Second,
		CircleIntervalMax:  2 * time.Second,
		RetreatAfterAttack: 500 * time.Millisecond,
		RetreatDistance:    1.5,
	}
	grunt.Attack = melee

	gunner := base()
	gunner.AttackRange = 10
	gunner.HitChance = 0.8
	gunner.RequireLineOfSight = true
	gunner.Movement = MovementConfig{
		Kind:             MovementDirect,
		Speed:            3,
		StoppingDistance: 8,
		FaceTarget:       true,
	}
	gunner.Attack = AttackConfig{
		Kind:               AttackRanged,
		Damage:             6,
		Cooldown:           2 * time.Second,
		Range:              10,
		ProjectileSpeed:    18,
		ProjectileLifetime: 2 * time.Second,
		Spread:             4,
		Muzzles:            []Point{{X: 0.3, Y: 1.2, Z: 0.5}, {X: -0.3, Y: 1.2, Z: 0.5}},
		RandomMuzzle:       true,
		BurstCount:         3,
		BurstDelay:         150 * time.Millisecond,
	}

	sentry := base()
	sentry.DefaultState = "patrolling"
	sentry.AttackRange = 9
	sentry.RetreatEnabled = false
	sentry.Movement = MovementConfig{
		Kind:             MovementPatrol,
		Speed:            2,
		StoppingDistance: 0.2,
		FaceTarget:       true,
		Waypoints:        []Point{{X: 14, Z: 36}, {X: 26, Z: 36}, {X: 26, Z: 32}, {X: 14, Z: 32}},
		WaitTime:         time.Second,
		DetectionRadius:  15,
	}
	sentry.Attack = AttackConfig{
		Kind:               AttackRanged,
		Damage:             8,
		Cooldown:           1500 * time.Millisecond,
		Range:              9,
		ProjectileSpeed:    15,
		ProjectileLifetime: 2 * time.Second,
		Muzzles:            []Point{{Y: 1, Z: 0.5}},
		BurstCount:         1,
	}

	bomber := base()
	bomber.MaxHealth = 80
	bomber.AttackRange = 12
	bomber.Movement = MovementConfig{
		Kind:             MovementDirect,
		Speed:            2.5,
		StoppingDistance: 10,
		FaceTarget:       true,
	}
	bomber.Attack = AttackConfig{
		Kind:             AttackLobbed,
		Damage:           20,
		Cooldown:         3 * time.Second,
		Range:            12,
		FlightTime:       1200 * time.Millisecond,
		ArcHeight:        4,
		SplashRadius:     2.5,
		Fragments:        4,
		FragmentDamage:   4,
		FragmentSpeed:    8,
		FragmentLifetime: 500 * time.Millisecond,
	}

	leaper := base()
	leaper.MaxHealth = 70
	leaper.RetreatEnabled = false
	leaper.Movement = MovementConfig{
		Kind:             MovementJump,
		Speed:            4,
		StoppingDistance: 1,
		FaceTarget:       true,
		JumpRange:        6,
		JumpCooldown:     4 * time.Second,
		JumpDuration:     600 * time.Millisecond,
		JumpHeight:       2,
	}
	leaper.Attack = melee

	warden := base()
	warden.MaxHealth = 600
	warden.DetectionRange = 20
	warden.AttackRange = 10
	warden.RetreatEnabled = false
	warden.DeathRemovalDelay = 4 * time.Second
	warden.Movement = MovementConfig{
		Kind:             MovementDirect,
		Speed:            2.2,
		StoppingDistance: 1.5,
		FaceTarget:       true,
		RotationSpeed:    180,
	}
	wardenMelee := melee
	wardenMelee.Damage = 25
	wardenMelee.Radius = 2.5
	wardenMelee.AttackAngle = 120
	wardenMelee.Range = 3
	wardenRanged := gunner.Attack
	wardenRanged.Muzzles = []Point{{Y: 2, Z: 1}}
	wardenRanged.Damage = 10
	wardenRanged.BurstCount = 5
	wardenRanged.BurstDelay = 100 * time.Millisecond
	warden.Attack = AttackConfig{
		Kind:        AttackComposite,
		Range:       10,
		Melee:       &wardenMelee,
		Ranged:      &wardenRanged,
		MeleeRadius: 3,
	}
	warden.Boss = &BossConfig{
		EnrageThreshold:     40,
		EnrageMultiplier:    1.5,
		SpecialMultiplier:   1.1,
		MaxDamageMultiplier: 3,
		SpecialInterval:     8 * time.Second,
		SpecialStepDelay:    400 * time.Millisecond,
		SpecialMeleeHits:    3,
		SpecialRangedVolley: 2,
	}

	return map[string]Archetype{
		"grunt":  grunt,
		"gunner": gunner,
		"sentry": sentry,
		"bomber": bomber,
		"leaper": leaper,
		"warden": warden,
	}
}

// LoadArena loads the arena config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadArena(path string) (Arena, error) {
	cfg := DefaultArena()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the whole arena configuration.
func (a Arena) Validate() error {
	if a.TickInterval <= 0 {
		return fmt.Errorf("tick_interval %v: %w", a.TickInterval, ErrInvalidValue)
	}
	if a.Grid.CellSize <= 0 || a.Grid.Width <= 0 || a.Grid.Depth <= 0 {
		return fmt.Errorf("grid dimensions: %w", ErrInvalidValue)
	}
	if a.Player.MaxHealth <= 0 {
		return fmt.Errorf("player max_health %v: %w", a.Player.MaxHealth, ErrInvalidValue)
	}
	if a.Spawner.MaxConcurrent < 1 {
		return fmt.Errorf("spawner max_concurrent %d: %w", a.Spawner.MaxConcurrent, ErrInvalidValue)
	}
	if a.Spawner.MaxTotal < 0 {
		return fmt.Errorf("spawner max_total %d: %w", a.Spawner.MaxTotal, ErrInvalidValue)
	}

	for name, arch := range a.Archetypes {
		if err := arch.Validate(); err != nil {
			return fmt.Errorf("archetype %s: %w", name, err)
		}
	}

	for i, p := range a.Spawner.Points {
		if _, ok := a.Archetypes[p.Archetype]; !ok {
			return fmt.Errorf("spawn point %d archetype %q: %w", i, p.Archetype, ErrUnknownArchetype)
		}
		if p.Count < 0 || p.SampleRadius < 0 {
			return fmt.Errorf("spawn point %d: %w", i, ErrInvalidValue)
		}
	}

	return nil
}
