package sched

import (
	"cmp"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/udisondev/skirmish/internal/model"
)

// Handle identifies a scheduled action. Zero is never issued.
type Handle uint64

// task is a delayed action owned by one entity.
type task struct {
	handle Handle
	owner  model.EntityID
	due    time.Duration
	fn     func()
}

// Scheduler runs delayed actions (attack wind-ups, flashes, spawn delays) when
// simulated time reaches their due time. Actions never block; cancellation
// removes the entry.
type Scheduler struct {
	clock Clock

	mu      sync.Mutex
	next    Handle
	tasks   map[Handle]*task
	byOwner map[model.EntityID]map[Handle]struct{}
}

// NewScheduler creates a scheduler reading due times from clock.
func NewScheduler(clock Clock) *Scheduler {
	return &Scheduler{
		clock:   clock,
		tasks:   make(map[Handle]*task),
		byOwner: make(map[model.EntityID]map[Handle]struct{}),
	}
}

// Now returns the scheduler's current time.
func (s *Scheduler) Now() time.Duration {
	return s.clock.Now()
}

// After schedules fn to run delay after now. Negative delays count as zero.
// fn runs from Advance, never synchronously from After.
func (s *Scheduler) After(owner model.EntityID, delay time.Duration, fn func()) Handle {
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	t := &task{
		handle: s.next,
		owner:  owner,
		due:    s.clock.Now() + delay,
		fn:     fn,
	}
	s.tasks[t.handle] = t

	owned, ok := s.byOwner[owner]
	if !ok {
		owned = make(map[Handle]struct{})
		s.byOwner[owner] = owned
	}
	owned[t.handle] = struct{}{}

	return t.handle
}

// Cancel removes a scheduled action. Returns false if it already ran or was cancelled.
func (s *Scheduler) Cancel(h Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(h)
}

// CancelOwner removes every pending action of an owner and returns how many were removed.
func (s *Scheduler) CancelOwner(owner model.EntityID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	owned := s.byOwner[owner]
	n := 0
	for h := range owned {
		if s.removeLocked(h) {
			n++
		}
	}
	delete(s.byOwner, owner)

	if n > 0 {
		slog.Debug("scheduled actions cancelled", "owner", owner, "count", n)
	}
	return n
}

// Pending returns the number of actions waiting for an owner.
func (s *Scheduler) Pending(owner model.EntityID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byOwner[owner])
}

// Len returns total pending actions.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Advance runs every action due at or before now, ordered by due time and then by
// scheduling order. Actions scheduled by callbacks during this call wait for the next
// Advance. Returns the number of actions run.
func (s *Scheduler) Advance(now time.Duration) int {
	s.mu.Lock()
	due := make([]*task, 0, 8)
	for _, t := range s.tasks {
		if t.due <= now {
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	if len(due) == 0 {
		return 0
	}

	slices.SortFunc(due, func(a, b *task) int {
		if c := cmp.Compare(a.due, b.due); c != 0 {
			return c
		}
		return cmp.Compare(a.handle, b.handle)
	})

	ran := 0
	for _, t := range due {
		// An earlier callback may have cancelled this one.
		s.mu.Lock()
		live := s.removeLocked(t.handle)
		s.mu.Unlock()
		if !live {
			continue
		}
		t.fn()
		ran++
	}

	return ran
}

func (s *Scheduler) removeLocked(h Handle) bool {
	t, ok := s.tasks[h]
	if !ok {
		return false
	}
	delete(s.tasks, h)
	if owned, ok := s.byOwner[t.owner]; ok {
		delete(owned, h)
		if len(owned) == 0 {
			delete(s.byOwner, t.owner)
		}
	}
	return true
}
