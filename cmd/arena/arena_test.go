package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/skirmish/internal/config"
	"github.com/udisondev/skirmish/internal/model"
)

func TestArena_DefaultRunRespectsCaps(t *testing.T) {
	cfg := config.DefaultArena()
	a, err := newArena(cfg, nil)
	require.NoError(t, err)
	a.spawner.Start()

	maxLive := 0
	for range 1200 { // one minute of simulated time
		a.manager.Tick(cfg.TickInterval)
		maxLive = max(maxLive, a.spawner.LiveCount())
		require.LessOrEqual(t, a.spawner.TotalSpawned(), cfg.Spawner.MaxTotal)
	}

	s := a.summary()
	assert.Positive(t, s.Spawned)
	assert.LessOrEqual(t, maxLive, cfg.Spawner.MaxConcurrent)
	assert.Equal(t, s.Spawned-s.Eliminated, s.Live)
	assert.Equal(t, time.Minute.String(), s.SimTime)
	assert.Equal(t, uint64(1200), s.Ticks)
	assert.Contains(t, s.String(), "spawned")
}

func TestArena_PlayerWalksCircuit(t *testing.T) {
	cfg := config.DefaultArena()
	cfg.Spawner.Points = cfg.Spawner.Points[:1]
	a, err := newArena(cfg, nil)
	require.NoError(t, err)

	start := a.player.Position()
	for range 40 {
		a.manager.Tick(cfg.TickInterval)
	}
	assert.Greater(t, a.player.Position().Distance(start), 1.0)
	assert.True(t, a.grid.IsWalkable(a.player.Position()))
}

func TestPlayerDriver_KnockbackIntoWallSnapsToFreeCell(t *testing.T) {
	cfg := config.DefaultArena()
	cfg.Player.Circuit = []config.Point{{X: 16, Z: 10}, {X: 16, Z: 15}}
	a, err := newArena(cfg, nil)
	require.NoError(t, err)

	a.manager.Tick(cfg.TickInterval)
	a.player.ApplyImpulse(model.Vec3{X: 40})

	maxZ := 0.0
	for range 100 {
		a.manager.Tick(cfg.TickInterval)
		require.True(t, a.grid.IsWalkable(a.player.Position()), "player left inside a wall at %v", a.player.Position())
		maxZ = max(maxZ, a.player.Position().Z)
	}
	assert.Greater(t, maxZ, 14.0, "circuit continues after the knockback")
}

func TestPlayerDriver_AttacksNearestInRange(t *testing.T) {
	cfg := config.DefaultArena()
	cfg.Player.Circuit = []config.Point{{X: 5, Z: 5}}
	a, err := newArena(cfg, nil)
	require.NoError(t, err)

	near := model.NewPlayer(0x20000001, "near", model.Vec3{X: 6, Z: 5}, 50)
	far := model.NewPlayer(0x20000002, "far", model.Vec3{X: 5, Z: 7.5}, 30)
	require.NoError(t, a.world.Add(near, model.LayerEnemy))
	require.NoError(t, a.world.Add(far, model.LayerEnemy))

	a.manager.Tick(cfg.TickInterval)
	assert.Equal(t, 1, near.Hits())
	assert.Zero(t, far.Hits())

	a.manager.Tick(cfg.TickInterval)
	assert.Equal(t, 1, near.Hits(), "cooldown")

	for range 20 {
		a.manager.Tick(cfg.TickInterval)
	}
	assert.True(t, near.IsDead())
	assert.Equal(t, 1, a.driver.Kills())
}

func TestRun_ShortDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arena.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: error\ntick_interval: 5ms\n"), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, run(ctx, []string{"-config", path, "-duration", "100ms"}))
}

func TestRun_BadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arena.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tick_interval: -1s\n"), 0o600))

	assert.Error(t, run(context.Background(), []string{"-config", path}))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, parseLogLevel("info"), parseLogLevel("bogus"))
}
