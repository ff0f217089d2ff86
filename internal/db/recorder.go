package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/udisondev/skirmish/internal/model"
)

// finalFlushTimeout bounds the flush Run performs on shutdown.
const finalFlushTimeout = 5 * time.Second

// EventWriter persists a batch of events. *EncounterRepository implements it.
type EventWriter interface {
	InsertEvents(ctx context.Context, sessionID int64, events []Event) error
}

// Recorder buffers spawner events in memory and writes them in batches.
// Record* never block on the database; Flush and Run do the I/O.
type Recorder struct {
	writer    EventWriter
	sessionID int64

	mu      sync.Mutex
	buf     []Event
	written int
}

// NewRecorder creates a recorder for one session.
func NewRecorder(writer EventWriter, sessionID int64) *Recorder {
	return &Recorder{
		writer:    writer,
		sessionID: sessionID,
		buf:       make([]Event, 0, 64),
	}
}

// RecordSpawn buffers a spawn event.
func (r *Recorder) RecordSpawn(id model.EntityID, archetype string, at time.Duration) {
	r.record(Event{EntityID: id, Archetype: archetype, Kind: EventSpawn, SimTime: at})
}

// RecordElimination buffers an elimination event.
func (r *Recorder) RecordElimination(id model.EntityID, archetype string, at time.Duration) {
	r.record(Event{EntityID: id, Archetype: archetype, Kind: EventElimination, SimTime: at})
}

func (r *Recorder) record(e Event) {
	r.mu.Lock()
	r.buf = append(r.buf, e)
	r.mu.Unlock()
}

// Pending returns the number of buffered, unwritten events.
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buf)
}

// Written returns the number of events flushed successfully.
func (r *Recorder) Written() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.written
}

// Flush writes the buffer. On failure the events go back to the front of the
// buffer and are retried by the next Flush.
func (r *Recorder) Flush(ctx context.Context) error {
	r.mu.Lock()
	batch := r.buf
	r.buf = make([]Event, 0, cap(batch))
	r.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	if err := r.writer.InsertEvents(ctx, r.sessionID, batch); err != nil {
		r.mu.Lock()
		r.buf = append(batch, r.buf...)
		r.mu.Unlock()
		return fmt.Errorf("flushing %d events: %w", len(batch), err)
	}

	r.mu.Lock()
	r.written += len(batch)
	r.mu.Unlock()

	slog.Debug("encounter events flushed", "sessionID", r.sessionID, "count", len(batch))
	return nil
}

// Run flushes every interval until ctx is done, then flushes once more.
// Flush errors are logged and retried, they do not stop the loop.
func (r *Recorder) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("recorder flush interval %v must be positive", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("encounter recorder started", "sessionID", r.sessionID, "interval", interval)

	for {
		select {
		case <-ctx.Done():
			final, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalFlushTimeout)
			err := r.Flush(final)
			cancel()
			if err != nil {
				slog.Error("final flush failed", "sessionID", r.sessionID, "pending", r.Pending(), "error", err)
			}
			slog.Info("encounter recorder stopped", "sessionID", r.sessionID, "written", r.Written())
			return ctx.Err()

		case <-ticker.C:
			if err := r.Flush(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Warn("flush failed, will retry", "sessionID", r.sessionID, "error", err)
			}
		}
	}
}
