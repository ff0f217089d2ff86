package ai

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/udisondev/skirmish/internal/model"
)

// Hooks customise a controller per archetype without subclassing.
// Every field is optional.
type Hooks struct {
	// PreAttack runs before an attack is dispatched. Returning false skips the attack.
	PreAttack func(c *Controller) bool
	// OnEnrage runs once when health first drops to Config.EnrageThreshold.
	OnEnrage func(c *Controller)
	// OnDeath runs once, right after the controller enters StateDead.
	OnDeath func(c *Controller)
	// OnStateChange runs on every state transition.
	OnStateChange func(c *Controller, from, to model.EnemyState)
	// OnRemoved runs once when the dead entity is disposed, before the notifier.
	OnRemoved func(c *Controller)
}

// safePresenter shields the simulation from presentation failures.
// The first error or panic disables it for the owning entity.
type safePresenter struct {
	presenter model.Presenter
	owner     model.EntityID
	disabled  atomic.Bool
}

func newSafePresenter(p model.Presenter, owner model.EntityID) *safePresenter {
	return &safePresenter{presenter: p, owner: owner}
}

func (s *safePresenter) trigger(cue string) {
	if s.presenter == nil || cue == "" || s.disabled.Load() {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			s.disable(cue, fmt.Errorf("presenter panic: %v", r))
		}
	}()

	if err := s.presenter.Trigger(cue); err != nil {
		s.disable(cue, err)
	}
}

func (s *safePresenter) disable(cue string, err error) {
	if s.disabled.CompareAndSwap(false, true) {
		slog.Warn("presentation hook failed, disabling for entity",
			"entityID", s.owner,
			"cue", cue,
			"error", err)
	}
}

// Disabled reports whether presentation was turned off after a failure.
func (s *safePresenter) Disabled() bool {
	return s.disabled.Load()
}
