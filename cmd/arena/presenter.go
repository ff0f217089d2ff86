package main

import (
	"log/slog"

	"github.com/udisondev/skirmish/internal/model"
	"github.com/udisondev/skirmish/internal/simlog"
)

// logPresenter stands in for animation and audio in a headless run.
type logPresenter struct {
	id        model.EntityID
	archetype string
}

func newLogPresenter(id model.EntityID, archetype string) model.Presenter {
	return &logPresenter{id: id, archetype: archetype}
}

func (p *logPresenter) Trigger(cue string) error {
	if simlog.IsDebugEnabled() {
		slog.Debug("cue", "id", p.id, "archetype", p.archetype, "cue", cue)
	}
	return nil
}
