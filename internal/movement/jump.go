package movement

import (
	"log/slog"
	"time"

	"github.com/udisondev/skirmish/internal/geo"
	"github.com/udisondev/skirmish/internal/model"
	"github.com/udisondev/skirmish/internal/simlog"
)

// JumpConfig configures jump attacks.
type JumpConfig struct {
	JumpRange    float64
	JumpCooldown time.Duration
	JumpDuration time.Duration
	JumpHeight   float64
}

// JumpAttack pursues directly and, when close enough and off cooldown, leaps at the
// target along a ballistic arc. The pathfinder is suspended while airborne.
type JumpAttack struct {
	base
	jump JumpConfig

	jumping   bool
	jumpStart time.Duration
	lastJump  time.Duration
	hasJumped bool
	from, to  model.Vec3
}

// NewJumpAttack creates a jump attack strategy.
func NewJumpAttack(cfg Config, jump JumpConfig) *JumpAttack {
	return &JumpAttack{base: base{cfg: cfg}, jump: jump}
}

// Move advances an active jump or pursues the target.
func (j *JumpAttack) Move(now time.Duration) {
	dt := j.step(now)
	if !j.ready() {
		return
	}

	if j.jumping {
		j.advanceJump(now)
		return
	}

	if j.stopped || !j.hasTarget() {
		return
	}

	targetPos := j.target.Position()
	if j.canJump(now) && j.DistanceToTarget() <= j.jump.JumpRange {
		j.startJump(now, targetPos)
		return
	}

	j.goTo(targetPos)
	if j.cfg.FaceTarget {
		j.face(targetPos, dt)
	}
}

// Stop halts pursuit. Mid-jump the pathfinder is already stopped and the
// arc still completes; the stop holds after landing.
func (j *JumpAttack) Stop() {
	if !j.jumping {
		j.base.Stop()
		return
	}
	j.stopped = true
}

// Resume re-enables pursuit. Mid-jump the pathfinder resumes on landing.
func (j *JumpAttack) Resume() {
	if !j.jumping {
		j.base.Resume()
		return
	}
	j.stopped = false
}

// Land finishes an active jump at its landing point.
func (j *JumpAttack) Land() {
	if j.jumping {
		j.finishJump()
	}
}

// IsJumping reports whether the entity is airborne.
func (j *JumpAttack) IsJumping() bool {
	return j.jumping
}

// LandingPoint returns where the current or last jump lands.
func (j *JumpAttack) LandingPoint() model.Vec3 {
	return j.to
}

func (j *JumpAttack) canJump(now time.Duration) bool {
	return !j.hasJumped || now-j.lastJump >= j.jump.JumpCooldown
}

func (j *JumpAttack) startJump(now time.Duration, targetPos model.Vec3) {
	pos := j.self.Body.Position()
	dir := targetPos.Sub(pos).Flat()
	dist := dir.Len()

	// Land short of the target by the stopping distance.
	land := targetPos
	if dist > 0 {
		land = pos.Add(dir.Scale((dist - min(j.cfg.StoppingDistance, dist)) / dist))
		land.Y = targetPos.Y
	}
	if sampled, ok := j.self.Pathfinder.SamplePosition(land, sampleRadius); ok {
		land = sampled
	}

	j.self.Pathfinder.Stop()
	j.self.Body.SetForward(dir)
	j.jumping = true
	j.hasJumped = true
	j.jumpStart = now
	j.lastJump = now
	j.from = pos
	j.to = land

	if simlog.IsDebugEnabled() {
		slog.Debug("jump started",
			"entityID", j.self.ID,
			"from", pos,
			"to", land)
	}

	if j.jump.JumpDuration <= 0 {
		j.advanceJump(now)
	}
}

func (j *JumpAttack) advanceJump(now time.Duration) {
	t := 1.0
	if j.jump.JumpDuration > 0 {
		t = float64(now-j.jumpStart) / float64(j.jump.JumpDuration)
	}

	if t < 1 {
		j.self.Body.SetPosition(geo.Parabola(j.from, j.to, j.jump.JumpHeight, t))
		return
	}

	j.finishJump()
}

func (j *JumpAttack) finishJump() {
	j.jumping = false
	j.self.Body.SetPosition(j.to)
	j.self.Pathfinder.Warp(j.to)
	if !j.stopped {
		j.self.Pathfinder.Resume()
	}
	if simlog.IsDebugEnabled() {
		slog.Debug("jump landed", "entityID", j.self.ID, "at", j.to)
	}
}
