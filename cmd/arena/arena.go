package main

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/skirmish/internal/ai"
	"github.com/udisondev/skirmish/internal/config"
	"github.com/udisondev/skirmish/internal/db"
	"github.com/udisondev/skirmish/internal/geo"
	"github.com/udisondev/skirmish/internal/model"
	"github.com/udisondev/skirmish/internal/projectile"
	"github.com/udisondev/skirmish/internal/sched"
	"github.com/udisondev/skirmish/internal/spawn"
	"github.com/udisondev/skirmish/internal/world"
)

// arena is one fully wired simulation session.
type arena struct {
	grid        *geo.Grid
	world       *world.World
	manager     *ai.TickManager
	projectiles *projectile.Manager
	player      *model.Player
	driver      *playerDriver
	spawner     *spawn.Spawner
}

// newArena builds the grid, world, player and spawner from cfg.
// recorder may be nil.
func newArena(cfg config.Arena, recorder *db.Recorder) (*arena, error) {
	grid, err := geo.NewGrid(cfg.Grid.Origin.Vec(), cfg.Grid.CellSize, cfg.Grid.Width, cfg.Grid.Depth)
	if err != nil {
		return nil, err
	}
	for _, wall := range cfg.Grid.Walls {
		grid.BlockRect(model.Vec3{X: wall.MinX, Z: wall.MinZ}, model.Vec3{X: wall.MaxX, Z: wall.MaxZ})
	}

	ids := model.NewIDGenerator()
	clock := sched.NewManualClock()
	a := &arena{
		grid:    grid,
		world:   world.New(grid),
		manager: ai.NewTickManager(clock, sched.NewScheduler(clock)),
	}
	a.projectiles = projectile.NewManager(a.world, ids)

	circuit := config.Vecs(cfg.Player.Circuit)
	start := model.Vec3{}
	if len(circuit) > 0 {
		start = circuit[0]
	}
	a.player = model.NewPlayer(ids.NextPlayerID(), cfg.Player.Name, start, cfg.Player.MaxHealth)
	if err := a.world.Add(a.player, model.LayerPlayer); err != nil {
		return nil, fmt.Errorf("adding player: %w", err)
	}
	a.driver = newPlayerDriver(a.player, a.world, clock, cfg.Player, circuit)

	// Updaters run after controllers and agents: player, projectiles, then
	// re-bucketing so the next tick's queries see this tick's positions.
	a.manager.AddUpdater(a.driver)
	a.manager.AddUpdater(a.projectiles)
	a.manager.AddUpdater(ai.UpdaterFunc(func(float64) { a.world.Refresh() }))

	factory := spawn.NewArchetypeFactory(spawn.Env{
		Archetypes:  cfg.Archetypes,
		Grid:        grid,
		World:       a.world,
		Manager:     a.manager,
		Projectiles: a.projectiles,
		Target:      a.player,
		Presenter:   newLogPresenter,
		Seed:        cfg.Seed,
	})

	deps := spawn.Deps{
		Factory:   factory,
		Scheduler: a.manager.Scheduler(),
		IDs:       ids,
		Sampler:   grid,
	}
	if recorder != nil {
		deps.Recorder = recorder
	}
	a.spawner, err = spawn.New(spawn.ConfigFrom(cfg.Spawner), deps)
	if err != nil {
		return nil, fmt.Errorf("creating spawner: %w", err)
	}

	slog.Info("arena built",
		"grid", fmt.Sprintf("%dx%d", cfg.Grid.Width, cfg.Grid.Depth),
		"walls", len(cfg.Grid.Walls),
		"archetypes", len(cfg.Archetypes),
		"spawnPoints", len(cfg.Spawner.Points))
	return a, nil
}

// summary is printed when a run ends.
type summary struct {
	SimTime      string
	Ticks        uint64
	Spawned      int
	Eliminated   int
	Live         int
	PlayerHealth float64
	PlayerMax    float64
	PlayerKills  int
}

func (a *arena) summary() summary {
	return summary{
		SimTime:      a.manager.Clock().Now().String(),
		Ticks:        a.manager.Ticks(),
		Spawned:      a.spawner.TotalSpawned(),
		Eliminated:   a.spawner.Eliminated(),
		Live:         a.spawner.LiveCount(),
		PlayerHealth: a.player.CurrentHealth(),
		PlayerMax:    a.player.MaxHealth(),
		PlayerKills:  a.driver.Kills(),
	}
}

func (s summary) String() string {
	return fmt.Sprintf(
		"sim time %s (%d ticks): spawned %d, eliminated %d, live %d; player %.0f/%.0f hp, %d kills",
		s.SimTime, s.Ticks, s.Spawned, s.Eliminated, s.Live, s.PlayerHealth, s.PlayerMax, s.PlayerKills,
	)
}
