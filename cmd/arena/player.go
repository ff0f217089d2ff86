package main

import (
	"log/slog"
	"time"

	"github.com/udisondev/skirmish/internal/config"
	"github.com/udisondev/skirmish/internal/model"
	"github.com/udisondev/skirmish/internal/nav"
	"github.com/udisondev/skirmish/internal/sched"
	"github.com/udisondev/skirmish/internal/simlog"
	"github.com/udisondev/skirmish/internal/world"
)

const (
	knockbackDamping = 4.0
	arriveDistance   = 0.2
	// knockbackSnap bounds the search for a free cell after being knocked into a wall.
	knockbackSnap = 3.0
)

// playerDriver walks the player around its circuit on the nav grid and
// auto-attacks the nearest enemy in range. It runs as a TickManager updater.
type playerDriver struct {
	player  *model.Player
	agent   *nav.Agent
	world   *world.World
	clock   sched.Clock
	cfg     config.PlayerConfig
	circuit []model.Vec3

	next       int
	lastAttack time.Duration
	attacked   bool
	kills      int
}

func newPlayerDriver(p *model.Player, w *world.World, clock sched.Clock, cfg config.PlayerConfig, circuit []model.Vec3) *playerDriver {
	d := &playerDriver{
		player:  p,
		agent:   nav.NewAgent(p.ID(), w.Grid(), p.Position()),
		world:   w,
		clock:   clock,
		cfg:     cfg,
		circuit: circuit,
	}
	if cfg.Speed > 0 {
		d.agent.SetSpeed(cfg.Speed)
	}
	d.agent.SetStoppingDistance(0)
	if len(circuit) > 1 {
		d.next = 1
		d.agent.SetDestination(circuit[d.next])
	}
	return d
}

// Kills returns how many enemies the player finished off.
func (d *playerDriver) Kills() int {
	return d.kills
}

// Update moves the player, then attacks.
func (d *playerDriver) Update(dt float64) {
	if d.player.IsDead() {
		return
	}
	d.move(dt)
	d.attack()
}

func (d *playerDriver) move(dt float64) {
	d.player.Integrate(dt, knockbackDamping)
	if pos := d.player.Position(); pos.Flat().Distance(d.agent.Position().Flat()) > 1e-6 {
		// Knocked off the path.
		pos = d.unblock(pos)
		d.player.SetPosition(pos)
		d.agent.Warp(pos)
		if len(d.circuit) > 1 {
			d.agent.SetDestination(d.circuit[d.next])
		}
	}

	if len(d.circuit) > 1 && !d.agent.IsPathPending() && d.agent.RemainingDistance() <= arriveDistance {
		d.next = (d.next + 1) % len(d.circuit)
		d.agent.SetDestination(d.circuit[d.next])
	}

	d.agent.Update(dt)
	d.player.SetPosition(d.agent.Position())
	d.player.SetForward(d.agent.Forward())
}

// unblock moves a position knocked into a wall onto the nearest free cell,
// or back to where the agent last stood when nothing is free nearby.
func (d *playerDriver) unblock(pos model.Vec3) model.Vec3 {
	grid := d.world.Grid()
	if grid.IsWalkable(pos) {
		return pos
	}
	if free, ok := grid.NearestFree(pos, knockbackSnap); ok {
		if simlog.IsDebugEnabled() {
			slog.Debug("player knocked into wall", "at", pos, "snapped", free)
		}
		return free
	}
	return d.agent.Position()
}

func (d *playerDriver) attack() {
	if d.cfg.Damage <= 0 || d.cfg.Range <= 0 {
		return
	}
	now := d.clock.Now()
	if d.attacked && now-d.lastAttack < d.cfg.Cooldown {
		return
	}

	pos := d.player.Position()
	var (
		target model.Damageable
		best   float64
	)
	for _, e := range d.world.OverlapSphere(pos, d.cfg.Range, model.LayerEnemy) {
		dist := pos.DistanceSquared(e.Position())
		if target == nil || dist < best {
			target, best = e, dist
		}
	}
	if target == nil {
		return
	}

	d.attacked = true
	d.lastAttack = now
	target.TakeDamage(d.cfg.Damage)
	if target.IsDead() {
		d.kills++
		slog.Info("player killed enemy", "id", target.ID(), "kills", d.kills)
	} else if simlog.IsDebugEnabled() {
		slog.Debug("player hit enemy", "id", target.ID(), "health", target.CurrentHealth())
	}
}
