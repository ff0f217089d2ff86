package spawn

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/udisondev/skirmish/internal/ai"
	"github.com/udisondev/skirmish/internal/config"
	"github.com/udisondev/skirmish/internal/model"
	"github.com/udisondev/skirmish/internal/sched"
	"github.com/udisondev/skirmish/internal/simlog"
)

var (
	// ErrCapacityReached is returned when either population cap blocks a spawn.
	ErrCapacityReached = errors.New("spawn capacity reached")
	// ErrNoValidPosition is returned when no walkable point exists near a spawn point.
	ErrNoValidPosition = errors.New("no valid spawn position")
	// ErrNoPoints is returned for a spawner without spawn points.
	ErrNoPoints = errors.New("spawner has no points")
)

// ownerID tags the spawner's own scheduled steps.
const ownerID = ^model.EntityID(0)

// Point is one spawn location yielding up to Count entities per wave.
type Point struct {
	Position       model.Vec3
	Archetype      string
	Count          int
	PerEntityDelay time.Duration
	SampleRadius   float64
}

// Config bounds the population and paces the spawn loop.
type Config struct {
	MaxConcurrent int
	MaxTotal      int // 0 is unlimited
	PointDelay    time.Duration
	WaveDelay     time.Duration
	Loop          bool
	Points        []Point
}

// ConfigFrom converts the YAML spawner section.
func ConfigFrom(cfg config.SpawnerConfig) Config {
	out := Config{
		MaxConcurrent: cfg.MaxConcurrent,
		MaxTotal:      cfg.MaxTotal,
		PointDelay:    cfg.PointDelay,
		WaveDelay:     cfg.WaveDelay,
		Loop:          cfg.Loop,
		Points:        make([]Point, 0, len(cfg.Points)),
	}
	for _, p := range cfg.Points {
		out.Points = append(out.Points, Point{
			Position:       p.Position.Vec(),
			Archetype:      p.Archetype,
			Count:          p.Count,
			PerEntityDelay: p.PerEntityDelay,
			SampleRadius:   p.SampleRadius,
		})
	}
	return out
}

// SpawnContext is what a Factory gets to build one entity.
type SpawnContext struct {
	ID        model.EntityID
	Archetype string
	Position  model.Vec3
	Notifier  model.EliminationNotifier
}

// Factory builds and registers one entity at ctx.Position.
type Factory func(ctx SpawnContext) (*ai.Controller, error)

// Sampler finds a walkable point near a spawn point. *geo.Grid satisfies it.
type Sampler interface {
	NearestFree(p model.Vec3, radius float64) (model.Vec3, bool)
}

// Recorder receives spawn and elimination events. Must not block.
type Recorder interface {
	RecordSpawn(id model.EntityID, archetype string, at time.Duration)
	RecordElimination(id model.EntityID, archetype string, at time.Duration)
}

// Deps are the spawner's collaborators.
type Deps struct {
	Factory   Factory
	Scheduler *sched.Scheduler
	IDs       *model.IDGenerator
	Sampler   Sampler  // nil spawns at the point's exact position
	Recorder  Recorder // optional
}

type live struct {
	ctrl      *ai.Controller
	archetype string
}

// Spawner keeps a bounded population alive.
//
// The spawn loop is a chain of scheduled steps: it waits for headroom, spawns
// the current point's entities one PerEntityDelay apart, waits PointDelay, moves
// to the next point, and after the last point waits WaveDelay and starts over.
// It never blocks the simulation goroutine.
type Spawner struct {
	cfg       Config
	factory   Factory
	scheduler *sched.Scheduler
	ids       *model.IDGenerator
	sampler   Sampler
	recorder  Recorder

	mu         sync.RWMutex
	live       []live
	total      int
	eliminated int
	active     bool
	waiting    bool
	pending    sched.Handle
	point      int
	atPoint    int
	waves      int
}

// New creates a spawner. Nothing spawns until Start.
func New(cfg Config, deps Deps) (*Spawner, error) {
	if len(cfg.Points) == 0 {
		return nil, ErrNoPoints
	}
	if deps.Factory == nil || deps.Scheduler == nil {
		return nil, errors.New("spawner requires a factory and a scheduler")
	}
	if cfg.MaxConcurrent <= 0 {
		return nil, fmt.Errorf("max concurrent %d: %w", cfg.MaxConcurrent, config.ErrInvalidValue)
	}
	if deps.IDs == nil {
		deps.IDs = model.NewIDGenerator()
	}
	return &Spawner{
		cfg:       cfg,
		factory:   deps.Factory,
		scheduler: deps.Scheduler,
		ids:       deps.IDs,
		sampler:   deps.Sampler,
		recorder:  deps.Recorder,
	}, nil
}

// Start activates the loop. The first step runs on the next scheduler advance.
func (s *Spawner) Start() {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.mu.Unlock()

	slog.Info("spawner started",
		"points", len(s.cfg.Points),
		"maxConcurrent", s.cfg.MaxConcurrent,
		"maxTotal", s.cfg.MaxTotal)
	s.schedule(0)
}

// Stop halts the loop. Live entities stay.
func (s *Spawner) Stop() {
	s.mu.Lock()
	wasActive := s.active
	s.active = false
	s.waiting = false
	h := s.pending
	s.pending = 0
	s.mu.Unlock()

	if h != 0 {
		s.scheduler.Cancel(h)
	}
	if wasActive {
		slog.Info("spawner stopped", "spawned", s.TotalSpawned(), "live", s.LiveCount())
	}
}

// Active reports whether the spawn loop is running.
func (s *Spawner) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Live returns a snapshot of live entities in spawn order.
func (s *Spawner) Live() []*ai.Controller {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*ai.Controller, len(s.live))
	for i, l := range s.live {
		out[i] = l.ctrl
	}
	return out
}

// LiveCount returns the number of live entities.
func (s *Spawner) LiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.live)
}

// TotalSpawned returns the lifetime spawn count. It never decreases.
func (s *Spawner) TotalSpawned() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Eliminated returns how many entities reported elimination.
func (s *Spawner) Eliminated() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eliminated
}

// Waves returns how many full passes over the points completed.
func (s *Spawner) Waves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.waves
}

// NotifyEliminated drops id from the live list and wakes a loop waiting for headroom.
func (s *Spawner) NotifyEliminated(id model.EntityID) {
	s.mu.Lock()
	idx := -1
	for i, l := range s.live {
		if l.ctrl.ID() == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		if simlog.IsDebugEnabled() {
			slog.Debug("elimination for unknown entity", "id", id)
		}
		return
	}
	archetype := s.live[idx].archetype
	s.live = append(s.live[:idx], s.live[idx+1:]...)
	s.eliminated++
	wake := s.active && s.waiting
	s.waiting = false
	s.mu.Unlock()

	if s.recorder != nil {
		s.recorder.RecordElimination(id, archetype, s.scheduler.Now())
	}
	if simlog.IsDebugEnabled() {
		slog.Debug("entity eliminated", "id", id, "archetype", archetype, "live", s.LiveCount())
	}
	if wake {
		s.schedule(0)
	}
}

// ClearAll force-removes every live entity. The lifetime counter is untouched.
func (s *Spawner) ClearAll() int {
	victims := s.Live()
	for _, c := range victims {
		// Remove reports back through NotifyEliminated.
		c.Remove()
	}

	// Entities built without this spawner as notifier would linger otherwise.
	s.mu.Lock()
	s.live = s.live[:0]
	s.mu.Unlock()

	slog.Info("spawner cleared", "removed", len(victims), "totalSpawned", s.TotalSpawned())
	return len(victims)
}

// Spawn builds one entity at p now, gated by both caps.
func (s *Spawner) Spawn(p Point) (*ai.Controller, error) {
	s.mu.RLock()
	full := s.capacityReachedLocked()
	s.mu.RUnlock()
	if full {
		return nil, ErrCapacityReached
	}

	pos := p.Position
	if s.sampler != nil {
		sampled, ok := s.sampler.NearestFree(p.Position, p.SampleRadius)
		if !ok {
			return nil, fmt.Errorf("spawning %s at %v: %w", p.Archetype, p.Position, ErrNoValidPosition)
		}
		pos = sampled
	}

	id := s.ids.NextEnemyID()
	ctrl, err := s.factory(SpawnContext{
		ID:        id,
		Archetype: p.Archetype,
		Position:  pos,
		Notifier:  s,
	})
	if err != nil {
		return nil, fmt.Errorf("spawning %s: %w", p.Archetype, err)
	}

	s.mu.Lock()
	s.live = append(s.live, live{ctrl: ctrl, archetype: p.Archetype})
	s.total++
	total := s.total
	s.mu.Unlock()

	if s.recorder != nil {
		s.recorder.RecordSpawn(id, p.Archetype, s.scheduler.Now())
	}
	slog.Info("spawn slot filled",
		"id", id,
		"archetype", p.Archetype,
		"position", pos,
		"total", total)
	return ctrl, nil
}

func (s *Spawner) capacityReachedLocked() bool {
	return len(s.live) >= s.cfg.MaxConcurrent || s.totalReachedLocked()
}

func (s *Spawner) totalReachedLocked() bool {
	return s.cfg.MaxTotal > 0 && s.total >= s.cfg.MaxTotal
}

func (s *Spawner) schedule(delay time.Duration) {
	h := s.scheduler.After(ownerID, delay, s.step)
	s.mu.Lock()
	s.pending = h
	s.mu.Unlock()
}

// step is one turn of the spawn loop.
func (s *Spawner) step() {
	s.mu.Lock()
	s.pending = 0
	if !s.active {
		s.mu.Unlock()
		return
	}
	if s.totalReachedLocked() {
		s.active = false
		total := s.total
		s.mu.Unlock()
		slog.Info("spawner reached lifetime cap", "total", total)
		return
	}
	if len(s.live) >= s.cfg.MaxConcurrent {
		s.waiting = true
		s.mu.Unlock()
		return
	}
	p := s.cfg.Points[s.point]
	s.mu.Unlock()

	if p.Count > 0 {
		if _, err := s.Spawn(p); err != nil {
			slog.Warn("spawn failed", "archetype", p.Archetype, "position", p.Position, "error", err)
		}
	}

	s.mu.Lock()
	s.atPoint++
	delay := p.PerEntityDelay
	if s.atPoint >= p.Count {
		s.atPoint = 0
		s.point++
		delay = s.cfg.PointDelay
		if s.point >= len(s.cfg.Points) {
			s.point = 0
			s.waves++
			delay = s.cfg.WaveDelay
			if !s.cfg.Loop {
				s.active = false
				s.mu.Unlock()
				slog.Info("spawner finished wave", "waves", s.Waves())
				return
			}
		}
	}
	s.mu.Unlock()

	s.schedule(delay)
}
