package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/skirmish/internal/model"
)

// ErrSessionNotFound is returned when finishing a session that does not exist.
var ErrSessionNotFound = errors.New("encounter session not found")

// EventKind classifies an encounter event.
type EventKind string

const (
	EventSpawn       EventKind = "spawn"
	EventElimination EventKind = "elimination"
)

// Event is one spawner lifecycle event.
type Event struct {
	EntityID  model.EntityID
	Archetype string
	Kind      EventKind
	SimTime   time.Duration
}

// EncounterRepository stores arena sessions and their events.
type EncounterRepository struct {
	pool *pgxpool.Pool
}

// NewEncounterRepository creates a new encounter repository
func NewEncounterRepository(pool *pgxpool.Pool) *EncounterRepository {
	return &EncounterRepository{pool: pool}
}

// CreateSession opens a session row and returns its ID.
func (r *EncounterRepository) CreateSession(ctx context.Context, seed uint64) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO encounter_sessions (seed) VALUES ($1) RETURNING id`,
		int64(seed),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating encounter session: %w", err)
	}
	return id, nil
}

// FinishSession stamps finished_at and the final counters.
func (r *EncounterRepository) FinishSession(ctx context.Context, sessionID int64, spawned, eliminated int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE encounter_sessions
		 SET finished_at = now(), total_spawned = $2, total_eliminated = $3
		 WHERE id = $1`,
		sessionID, spawned, eliminated,
	)
	if err != nil {
		return fmt.Errorf("finishing session %d: %w", sessionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("finishing session %d: %w", sessionID, ErrSessionNotFound)
	}
	return nil
}

// InsertEvents writes events in one batch inside a transaction.
func (r *EncounterRepository) InsertEvents(ctx context.Context, sessionID int64, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction for session %d: %w", sessionID, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	batch := &pgx.Batch{}
	for _, e := range events {
		batch.Queue(
			`INSERT INTO encounter_events (session_id, entity_id, archetype, kind, sim_time_ms)
			 VALUES ($1, $2, $3, $4, $5)`,
			sessionID, int64(e.EntityID), e.Archetype, string(e.Kind), e.SimTime.Milliseconds(),
		)
	}
	br := tx.SendBatch(ctx, batch)
	for range events {
		if _, err := br.Exec(); err != nil {
			br.Close() //nolint:errcheck
			return fmt.Errorf("insert event batch for session %d: %w", sessionID, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close event batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit events for session %d: %w", sessionID, err)
	}
	return nil
}

// CountEvents counts a session's events of one kind.
func (r *EncounterRepository) CountEvents(ctx context.Context, sessionID int64, kind EventKind) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM encounter_events WHERE session_id = $1 AND kind = $2`,
		sessionID, string(kind),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting %s events for session %d: %w", kind, sessionID, err)
	}
	return n, nil
}

// SessionTotals returns the counters written by FinishSession.
func (r *EncounterRepository) SessionTotals(ctx context.Context, sessionID int64) (spawned, eliminated int, finished bool, err error) {
	var finishedAt *time.Time
	err = r.pool.QueryRow(ctx,
		`SELECT total_spawned, total_eliminated, finished_at FROM encounter_sessions WHERE id = $1`,
		sessionID,
	).Scan(&spawned, &eliminated, &finishedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, false, fmt.Errorf("loading session %d: %w", sessionID, ErrSessionNotFound)
	}
	if err != nil {
		return 0, 0, false, fmt.Errorf("loading session %d: %w", sessionID, err)
	}
	return spawned, eliminated, finishedAt != nil, nil
}
