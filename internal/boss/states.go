package boss

import (
	"time"

	"github.com/udisondev/skirmish/internal/fsm"
)

// engageState lets the controller fight on its own.
type engageState struct {
	fsm.Base
	name string
}

func (s *engageState) Name() string { return s.name }

// enragedState applies the enrage multiplier on first entry, then fights like engage.
type enragedState struct {
	fsm.Base
	b *Boss
}

func (s *enragedState) Name() string { return "enraged" }

func (s *enragedState) OnEnter() {
	s.b.enragePending = false
	if s.b.enraged {
		return
	}
	s.b.enraged = true
	s.b.compound(s.b.cfg.EnrageMultiplier)
	s.b.ctrl.Cue(cueEnrage)
}

// specialState runs a scripted sequence of forced melee hits or ranged volleys,
// one every SpecialStepDelay. The controller's own attacks are suppressed meanwhile.
type specialState struct {
	fsm.Base
	b     *Boss
	melee bool

	steps     int
	done      int
	nextStep  time.Duration
	enteredAt time.Duration
}

func (s *specialState) Name() string {
	if s.melee {
		return "special_melee"
	}
	return "special_ranged"
}

func (s *specialState) OnEnter() {
	now := s.b.now()
	s.done = 0
	s.nextStep = now
	s.enteredAt = now
	s.b.specials++
	s.b.compound(s.b.cfg.SpecialMultiplier)
	s.b.ctrl.Cue(cueSpecial)
}

func (s *specialState) Update() {
	now := s.b.now()
	if s.done >= s.steps || now < s.nextStep {
		return
	}

	var fired bool
	if s.melee {
		fired = s.b.composite.MeleeOnly(now)
	} else {
		fired = s.b.composite.RangedOnly(now)
	}
	if fired {
		s.done++
		s.nextStep = now + s.b.cfg.SpecialStepDelay
	}
}

func (s *specialState) OnExit() {
	s.b.lastSpecial = s.b.now()
}

// finished is true once every step fired, the target is gone, or the sequence
// ran longer than one special interval.
func (s *specialState) finished() bool {
	if s.done >= s.steps {
		return true
	}
	target := s.b.ctrl.Target()
	if target == nil || target.IsDead() {
		return true
	}
	return s.b.now()-s.enteredAt >= s.b.cfg.SpecialInterval
}

// deadState is terminal.
type deadState struct {
	fsm.Base
}

func (s *deadState) Name() string { return "dead" }
