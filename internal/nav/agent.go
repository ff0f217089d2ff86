package nav

import (
	"log/slog"
	"math"
	"sync"

	"github.com/udisondev/skirmish/internal/geo"
	"github.com/udisondev/skirmish/internal/model"
	"github.com/udisondev/skirmish/internal/simlog"
)

const (
	// DefaultSpeed in units per second.
	DefaultSpeed = 3.5

	// repathThreshold: a new destination closer than this to the current one
	// retargets the last waypoint instead of replanning.
	repathThreshold = 0.25

	// sampleCells bounds SetDestination snapping, in cells.
	sampleCells = 2
)

// Agent is a grid navigation agent. It implements model.Pathfinder and model.Transform.
// Paths are planned lazily in Update, so IsPathPending is observable between
// SetDestination and the next Update.
type Agent struct {
	id   model.EntityID
	grid *geo.Grid // nil: open field, straight-line moves

	mu               sync.Mutex
	position         model.Vec3
	forward          model.Vec3
	velocity         model.Vec3
	speed            float64
	stoppingDistance float64
	destination      model.Vec3
	hasDestination   bool
	pending          bool
	path             []model.Vec3
	stopped          bool
}

// NewAgent creates an agent at pos facing +Z.
func NewAgent(id model.EntityID, grid *geo.Grid, pos model.Vec3) *Agent {
	return &Agent{
		id:       id,
		grid:     grid,
		position: pos,
		forward:  model.Vec3{Z: 1},
		speed:    DefaultSpeed,
	}
}

// ID returns the owner entity ID.
func (a *Agent) ID() model.EntityID {
	return a.id
}

// SetDestination requests a path to point. Returns false when no navigable
// point exists near it.
func (a *Agent) SetDestination(point model.Vec3) bool {
	if a.grid != nil && !a.grid.IsWalkable(point) {
		snapped, ok := a.grid.NearestFree(point, a.grid.CellSize()*sampleCells)
		if !ok {
			return false
		}
		point = snapped
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.hasDestination && !a.pending && len(a.path) > 0 &&
		a.destination.Distance(point) < repathThreshold {
		a.destination = point
		a.path[len(a.path)-1] = point
		return true
	}

	a.destination = point
	a.hasDestination = true
	a.pending = true
	a.path = nil
	return true
}

// Destination returns the current destination.
func (a *Agent) Destination() (model.Vec3, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.destination, a.hasDestination
}

// RemainingDistance returns the path length left. +Inf while the path is pending
// or when planning failed, 0 without a destination.
func (a *Agent) RemainingDistance() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.remainingLocked()
}

func (a *Agent) remainingLocked() float64 {
	if !a.hasDestination {
		return 0
	}
	if a.pending || a.path == nil {
		return math.Inf(1)
	}
	return geo.PathLength(a.position, a.path)
}

// IsPathPending reports whether a requested path has not been planned yet.
func (a *Agent) IsPathPending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending
}

// Stop halts movement but keeps the path.
func (a *Agent) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
	a.velocity = model.Vec3{}
}

// Resume continues along the path.
func (a *Agent) Resume() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = false
}

// IsStopped reports whether the agent is halted.
func (a *Agent) IsStopped() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stopped
}

// SamplePosition returns the nearest walkable point within radius.
func (a *Agent) SamplePosition(point model.Vec3, radius float64) (model.Vec3, bool) {
	if a.grid == nil {
		return point, true
	}
	return a.grid.NearestFree(point, radius)
}

// Warp teleports the agent and drops its path.
func (a *Agent) Warp(point model.Vec3) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.position = point
	a.velocity = model.Vec3{}
	a.path = nil
	a.pending = false
	a.hasDestination = false
}

// SetSpeed sets movement speed in units per second.
func (a *Agent) SetSpeed(speed float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.speed = max(speed, 0)
}

// Speed returns movement speed.
func (a *Agent) Speed() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.speed
}

// SetStoppingDistance sets how close to the destination the agent halts.
func (a *Agent) SetStoppingDistance(d float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stoppingDistance = max(d, 0)
}

// Position returns current position.
func (a *Agent) Position() model.Vec3 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.position
}

// SetPosition moves the agent without touching its path (jumps, knockback).
func (a *Agent) SetPosition(p model.Vec3) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.position = p
}

// Forward returns the facing direction (flat, unit length).
func (a *Agent) Forward() model.Vec3 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.forward
}

// SetForward sets facing. Zero or vertical vectors are ignored.
func (a *Agent) SetForward(dir model.Vec3) {
	dir = dir.Flat().Normalize()
	if dir.IsZero() {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.forward = dir
}

// Velocity returns the velocity of the last Update.
func (a *Agent) Velocity() model.Vec3 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.velocity
}

// Update plans a pending path and advances along it for dt seconds.
func (a *Agent) Update(dt float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pending {
		a.planLocked()
	}

	a.velocity = model.Vec3{}
	if a.stopped || dt <= 0 || len(a.path) == 0 {
		return
	}

	remaining := geo.PathLength(a.position, a.path)
	budget := min(a.speed*dt, remaining-a.stoppingDistance)
	if budget <= 0 {
		return
	}

	start := a.position
	for budget > 0 && len(a.path) > 0 {
		seg := a.path[0].Sub(a.position)
		segLen := seg.Len()
		if segLen <= budget {
			a.position = a.path[0]
			a.path = a.path[1:]
			budget -= segLen
			continue
		}
		a.position = a.position.Add(seg.Scale(budget / segLen))
		budget = 0
	}

	moved := a.position.Sub(start)
	a.velocity = moved.Scale(1 / dt)
	if dir := moved.Flat().Normalize(); !dir.IsZero() {
		a.forward = dir
	}
}

func (a *Agent) planLocked() {
	a.pending = false

	if a.grid == nil {
		a.path = []model.Vec3{a.destination}
		return
	}

	path := a.grid.FindPath(a.position, a.destination)
	if path == nil {
		if simlog.IsDebugEnabled() {
			slog.Debug("no path to destination",
				"entityID", a.id,
				"from", a.position,
				"to", a.destination)
		}
		return
	}
	a.path = path
}
