package ai

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/skirmish/internal/model"
	"github.com/udisondev/skirmish/internal/sched"
	"github.com/udisondev/skirmish/internal/simlog"
)

// registration pairs a ticker with the navigation agent that moves it.
type registration struct {
	ticker Ticker
	agent  Updater
}

// TickManager drives the simulation: clock, scheduler, controllers, agents, projectiles.
type TickManager struct {
	clock     *sched.ManualClock
	scheduler *sched.Scheduler

	mu       sync.Mutex
	order    []model.EntityID
	entries  map[model.EntityID]registration
	updaters []Updater

	stopCh          chan struct{}
	stopOnce        sync.Once
	controllerCount atomic.Int32 // cached count of controllers (O(1) access)
	ticks           atomic.Uint64
}

// NewTickManager creates a tick manager over a simulated clock and its scheduler.
func NewTickManager(clock *sched.ManualClock, scheduler *sched.Scheduler) *TickManager {
	return &TickManager{
		clock:     clock,
		scheduler: scheduler,
		entries:   make(map[model.EntityID]registration),
		stopCh:    make(chan struct{}),
	}
}

// Clock returns the simulated clock.
func (m *TickManager) Clock() *sched.ManualClock {
	return m.clock
}

// Scheduler returns the delayed-action scheduler.
func (m *TickManager) Scheduler() *sched.Scheduler {
	return m.scheduler
}

// Register adds a ticker, with an optional navigation agent, and starts it.
// Tickers run in registration order. Re-registering an ID replaces the entry in place.
func (m *TickManager) Register(id model.EntityID, ticker Ticker, agent Updater) {
	m.mu.Lock()
	if _, ok := m.entries[id]; !ok {
		m.order = append(m.order, id)
		m.controllerCount.Add(1)
	}
	m.entries[id] = registration{ticker: ticker, agent: agent}
	m.mu.Unlock()

	ticker.Start()

	if simlog.IsDebugEnabled() {
		slog.Debug("controller registered", "entityID", id)
	}
}

// Unregister removes and stops a ticker.
func (m *TickManager) Unregister(id model.EntityID) {
	m.mu.Lock()
	reg, ok := m.entries[id]
	if ok {
		delete(m.entries, id)
		m.order = slices.DeleteFunc(m.order, func(e model.EntityID) bool { return e == id })
		m.controllerCount.Add(-1)
	}
	m.mu.Unlock()

	if !ok {
		return
	}
	reg.ticker.Stop()

	if simlog.IsDebugEnabled() {
		slog.Debug("controller unregistered", "entityID", id)
	}
}

// AddUpdater adds a per-tick updater run after controllers and agents
// (projectiles, world refresh, scripted actors), in the order added.
func (m *TickManager) AddUpdater(u Updater) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updaters = append(m.updaters, u)
}

// Tick advances the simulation by dt: clock, due scheduled actions,
// controllers in registration order, navigation agents, then updaters.
func (m *TickManager) Tick(dt time.Duration) {
	now := m.clock.Advance(dt)
	ran := m.scheduler.Advance(now)

	m.mu.Lock()
	regs := make([]registration, 0, len(m.order))
	for _, id := range m.order {
		regs = append(regs, m.entries[id])
	}
	updaters := slices.Clone(m.updaters)
	m.mu.Unlock()

	for _, r := range regs {
		r.ticker.Tick()
	}

	secs := dt.Seconds()
	for _, r := range regs {
		if r.agent != nil {
			r.agent.Update(secs)
		}
	}
	for _, u := range updaters {
		u.Update(secs)
	}

	n := m.ticks.Add(1)
	if simlog.IsDebugEnabled() {
		slog.Debug("simulation tick completed",
			"tick", n,
			"now", now,
			"controllers", len(regs),
			"scheduled", ran)
	}
}

// Start drives Tick from a wall-clock ticker (blocks until context is canceled).
func (m *TickManager) Start(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("tick interval %v must be positive", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("tick manager started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("tick manager stopping", "ticks", m.Ticks())
			return ctx.Err()

		case <-m.stopCh:
			slog.Info("tick manager stopped", "ticks", m.Ticks())
			return nil

		case <-ticker.C:
			m.Tick(interval)
		}
	}
}

// Stop stops the tick loop. Safe to call more than once.
func (m *TickManager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// Count returns number of registered controllers (O(1) cached count).
func (m *TickManager) Count() int {
	return int(m.controllerCount.Load())
}

// Ticks returns how many ticks ran.
func (m *TickManager) Ticks() uint64 {
	return m.ticks.Load()
}

// Get returns the ticker registered under id.
func (m *TickManager) Get(id model.EntityID) (Ticker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.entries[id]
	if !ok {
		return nil, fmt.Errorf("ticker not found for entityID %d", id)
	}
	return reg.ticker, nil
}
