package movement

import (
	"log/slog"
	"time"

	"github.com/udisondev/skirmish/internal/model"
	"github.com/udisondev/skirmish/internal/simlog"
)

// defaultArrivalTolerance is used when the stopping distance is smaller.
const defaultArrivalTolerance = 0.3

// PatrolConfig configures waypoint patrol.
type PatrolConfig struct {
	Waypoints       []model.Vec3
	WaitTime        time.Duration
	DetectionRadius float64
}

// Patrol walks an ordered waypoint loop, dwelling at each point. A target inside
// DetectionRadius preempts the patrol; the loop resumes at the same index once the
// target leaves.
type Patrol struct {
	base
	patrol PatrolConfig

	index       int
	destSet     bool
	waiting     bool
	waitUntil   time.Duration
	chasing     bool
	emptyPoints simlog.Once
}

// NewPatrol creates a patrol strategy.
func NewPatrol(cfg Config, patrol PatrolConfig) *Patrol {
	return &Patrol{base: base{cfg: cfg}, patrol: patrol}
}

// Move patrols or chases.
func (p *Patrol) Move(now time.Duration) {
	dt := p.step(now)
	if p.stopped || !p.ready() {
		return
	}

	if p.hasTarget() && p.DistanceToTarget() <= p.patrol.DetectionRadius {
		if !p.chasing && simlog.IsDebugEnabled() {
			slog.Debug("patrol preempted", "entityID", p.self.ID, "index", p.index)
		}
		p.chasing = true
		dest := p.target.Position()
		p.goTo(dest)
		if p.cfg.FaceTarget {
			p.face(dest, dt)
		}
		return
	}

	if len(p.patrol.Waypoints) == 0 {
		p.emptyPoints.Warn("patrol has no waypoints", "entityID", p.self.ID)
		if p.chasing {
			p.chasing = false
			p.self.Pathfinder.Warp(p.self.Body.Position())
		}
		return
	}

	if p.chasing {
		p.chasing = false
		p.waiting = false
		p.destSet = false
	}

	if p.waiting {
		if now < p.waitUntil {
			return
		}
		p.waiting = false
		p.index = (p.index + 1) % len(p.patrol.Waypoints)
		p.destSet = false
	}

	wp := p.patrol.Waypoints[p.index]
	if !p.destSet {
		p.destSet = p.goTo(wp)
		if !p.destSet {
			// Unreachable waypoint: skip it.
			p.index = (p.index + 1) % len(p.patrol.Waypoints)
			return
		}
	}

	if p.arrived(wp) {
		p.waiting = true
		p.waitUntil = now + p.patrol.WaitTime
		return
	}

	if p.cfg.FaceTarget {
		p.face(wp, dt)
	}
}

// Index returns the current waypoint index.
func (p *Patrol) Index() int {
	return p.index
}

// IsChasing reports whether a detected target preempted the patrol.
func (p *Patrol) IsChasing() bool {
	return p.chasing
}

// IsWaiting reports whether the entity dwells at a waypoint.
func (p *Patrol) IsWaiting() bool {
	return p.waiting
}

func (p *Patrol) arrived(wp model.Vec3) bool {
	tolerance := max(p.cfg.StoppingDistance, defaultArrivalTolerance)
	return p.self.Body.Position().Flat().Distance(wp.Flat()) <= tolerance+1e-6
}
