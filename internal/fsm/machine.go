// Package fsm is a tick-polled finite-state machine with guarded transitions.
//
// Each Tick evaluates any-state transitions first, then the current state's own
// transitions, each list in registration order; the first satisfied predicate
// wins. Firing a transition calls OnExit on the old state, OnEnter on the new
// one, then the new state's Update. A transition to the current state is a no-op.
package fsm

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/skirmish/internal/simlog"
)

// ErrUnknownState is returned by SetState for a nil or never-registered state.
var ErrUnknownState = errors.New("unknown state")

// State is one machine state. Implementations must be comparable
// (typically pointers to per-machine singletons).
type State interface {
	OnEnter()
	Update()
	FixedUpdate()
	OnExit()
}

// Named is optionally implemented by states for readable logs.
type Named interface {
	Name() string
}

// Predicate guards a transition.
type Predicate func() bool

type transition struct {
	to   State
	pred Predicate
}

// Machine is not safe for concurrent use; it is driven from the simulation goroutine.
type Machine struct {
	current     State
	anyState    []transition
	transitions map[State][]transition
	known       map[State]struct{}

	changing bool
	queued   []State
	changes  int

	// OnChange, when set, observes every completed state change.
	OnChange func(from, to State)
}

// New creates an empty machine with no current state.
func New() *Machine {
	return &Machine{
		transitions: make(map[State][]transition),
		known:       make(map[State]struct{}),
	}
}

// AddState registers states that have no transitions of their own.
func (m *Machine) AddState(states ...State) {
	for _, s := range states {
		if s != nil {
			m.known[s] = struct{}{}
		}
	}
}

// AddTransition registers from -> to, taken when pred is true while from is current.
func (m *Machine) AddTransition(from, to State, pred Predicate) {
	m.AddState(from, to)
	m.transitions[from] = append(m.transitions[from], transition{to: to, pred: pred})
}

// AddAnyTransition registers a transition to `to` evaluated from every state.
// Any-transitions take priority over state-local ones.
func (m *Machine) AddAnyTransition(to State, pred Predicate) {
	m.AddState(to)
	m.anyState = append(m.anyState, transition{to: to, pred: pred})
}

// Current returns the active state (nil before the first SetState).
func (m *Machine) Current() State {
	return m.current
}

// Changes returns how many state changes completed.
func (m *Machine) Changes() int {
	return m.changes
}

// SetState switches to s. Called from inside OnEnter or OnExit, the switch is
// queued and applied after the running change completes.
func (m *Machine) SetState(s State) error {
	if s == nil {
		return fmt.Errorf("set state: %w", ErrUnknownState)
	}
	if _, ok := m.known[s]; !ok {
		return fmt.Errorf("set state %s: %w", name(s), ErrUnknownState)
	}

	if m.changing {
		m.queued = append(m.queued, s)
		return nil
	}

	m.change(s)
	for len(m.queued) > 0 {
		next := m.queued[0]
		m.queued = m.queued[1:]
		m.change(next)
	}
	return nil
}

func (m *Machine) change(next State) {
	prev := m.current
	if prev == next {
		return
	}

	m.changing = true
	if prev != nil {
		prev.OnExit()
	}
	m.current = next
	next.OnEnter()
	m.changing = false
	m.changes++

	if m.OnChange != nil {
		m.OnChange(prev, next)
	}
	if simlog.IsDebugEnabled() {
		slog.Debug("fsm state changed", "from", name(prev), "to", name(next))
	}
}

// Tick evaluates transitions, then runs the current state's Update.
func (m *Machine) Tick() {
	if m.current == nil {
		return
	}
	if next, ok := m.evaluate(); ok && next != m.current {
		// next is known: it came from a registered transition.
		_ = m.SetState(next)
	}
	m.current.Update()
}

// FixedTick runs the current state's FixedUpdate. No transitions are evaluated.
func (m *Machine) FixedTick() {
	if m.current == nil {
		return
	}
	m.current.FixedUpdate()
}

// evaluate returns the target of the first satisfied transition.
func (m *Machine) evaluate() (State, bool) {
	for _, t := range m.anyState {
		if t.pred() {
			return t.to, true
		}
	}
	for _, t := range m.transitions[m.current] {
		if t.pred() {
			return t.to, true
		}
	}
	return nil, false
}

func name(s State) string {
	if s == nil {
		return "<nil>"
	}
	if n, ok := s.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", s)
}

// Base is a no-op State to embed; override only the hooks you need.
type Base struct{}

func (Base) OnEnter()     {}
func (Base) Update()      {}
func (Base) FixedUpdate() {}
func (Base) OnExit()      {}
