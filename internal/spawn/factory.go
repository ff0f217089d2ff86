package spawn

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/udisondev/skirmish/internal/ai"
	"github.com/udisondev/skirmish/internal/attack"
	"github.com/udisondev/skirmish/internal/boss"
	"github.com/udisondev/skirmish/internal/config"
	"github.com/udisondev/skirmish/internal/geo"
	"github.com/udisondev/skirmish/internal/model"
	"github.com/udisondev/skirmish/internal/movement"
	"github.com/udisondev/skirmish/internal/nav"
	"github.com/udisondev/skirmish/internal/projectile"
	"github.com/udisondev/skirmish/internal/world"
)

// Env is the simulation an archetype factory builds into.
type Env struct {
	Archetypes  map[string]config.Archetype
	Grid        *geo.Grid
	World       *world.World
	Manager     *ai.TickManager
	Projectiles *projectile.Manager
	Target      model.Damageable
	// Presenter returns the cue sink for an entity. Nil plays nothing.
	Presenter func(id model.EntityID, archetype string) model.Presenter
	Seed      uint64
}

// NewArchetypeFactory returns a Factory that builds controllers from archetype
// configs, wraps bosses, adds each entity to the world and registers it for ticking.
// A removed entity leaves the world and the tick manager before the spawner is told.
func NewArchetypeFactory(env Env) Factory {
	return func(ctx SpawnContext) (*ai.Controller, error) {
		arch, ok := env.Archetypes[ctx.Archetype]
		if !ok {
			return nil, fmt.Errorf("archetype %q: %w", ctx.Archetype, config.ErrUnknownArchetype)
		}

		mv, err := movement.New(arch.Movement)
		if err != nil {
			return nil, fmt.Errorf("archetype %q movement: %w", ctx.Archetype, err)
		}
		atk, err := attack.New(arch.Attack)
		if err != nil {
			return nil, fmt.Errorf("archetype %q attack: %w", ctx.Archetype, err)
		}

		agent := nav.NewAgent(ctx.ID, env.Grid, ctx.Position)

		hooks := ai.Hooks{
			OnRemoved: func(c *ai.Controller) {
				env.World.Remove(c.ID())
				env.Manager.Unregister(c.ID())
			},
		}
		var b *boss.Boss
		if arch.Boss != nil {
			b = boss.New(*arch.Boss)
			hooks = b.Hooks(hooks)
		}

		var launcher projectile.Launcher
		if env.Projectiles != nil {
			launcher = env.Projectiles
		}
		var presenter model.Presenter
		if env.Presenter != nil {
			presenter = env.Presenter(ctx.ID, ctx.Archetype)
		}

		ctrl, err := ai.New(ctx.ID, ai.ConfigFromArchetype(ctx.Archetype, arch), ai.Deps{
			Pathfinder: agent,
			Body:       agent,
			World:      env.World,
			Scheduler:  env.Manager.Scheduler(),
			Launcher:   launcher,
			Movement:   mv,
			Attack:     atk,
			Presenter:  presenter,
			Notifier:   ctx.Notifier,
			Hooks:      hooks,
			Rand:       rand.New(rand.NewPCG(env.Seed, uint64(ctx.ID))),
			Target:     env.Target,
			TargetMask: model.LayerPlayer,
		})
		if err != nil {
			return nil, err
		}

		var ticker ai.Ticker = ctrl
		if b != nil {
			if err := b.Attach(ctrl); err != nil {
				return nil, err
			}
			ticker = b
		}

		if err := env.World.Add(ctrl, model.LayerEnemy); err != nil {
			return nil, fmt.Errorf("adding %s %d to world: %w", ctx.Archetype, ctx.ID, err)
		}
		env.Manager.Register(ctx.ID, ticker, agent)

		slog.Debug("entity built", "id", ctx.ID, "archetype", ctx.Archetype, "boss", b != nil)
		return ctrl, nil
	}
}
