package fsm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// probe records lifecycle calls as "<name>.<hook>".
type probe struct {
	name    string
	log     *[]string
	onEnter func()
}

func (p *probe) Name() string { return p.name }

func (p *probe) OnEnter() {
	*p.log = append(*p.log, p.name+".enter")
	if p.onEnter != nil {
		p.onEnter()
	}
}
func (p *probe) Update()      { *p.log = append(*p.log, p.name+".update") }
func (p *probe) FixedUpdate() { *p.log = append(*p.log, p.name+".fixed") }
func (p *probe) OnExit()      { *p.log = append(*p.log, p.name+".exit") }

func states(log *[]string, names ...string) []*probe {
	out := make([]*probe, len(names))
	for i, n := range names {
		out[i] = &probe{name: n, log: log}
	}
	return out
}

func always() bool { return true }
func never() bool  { return false }

func TestMachine_AnyTransitionTakesPriority(t *testing.T) {
	var log []string
	s := states(&log, "A", "B", "C")
	a, b, c := s[0], s[1], s[2]

	m := New()
	m.AddTransition(a, b, always)
	m.AddAnyTransition(c, func() bool { return m.Current() == a })
	require.NoError(t, m.SetState(a))
	log = nil

	m.Tick()

	assert.Same(t, c, m.Current())
	assert.Equal(t, []string{"A.exit", "C.enter", "C.update"}, log)
	assert.NotContains(t, log, "B.enter")
}

func TestMachine_FirstRegisteredWins(t *testing.T) {
	var log []string
	s := states(&log, "A", "B", "C", "D")
	a, b, c, d := s[0], s[1], s[2], s[3]

	t.Run("state transitions", func(t *testing.T) {
		m := New()
		m.AddTransition(a, b, always)
		m.AddTransition(a, c, always)
		require.NoError(t, m.SetState(a))

		m.Tick()
		assert.Same(t, b, m.Current())
	})

	t.Run("any transitions", func(t *testing.T) {
		m := New()
		m.AddState(a)
		m.AddAnyTransition(d, always)
		m.AddAnyTransition(c, always)
		require.NoError(t, m.SetState(a))

		m.Tick()
		assert.Same(t, d, m.Current())
	})
}

func TestMachine_NoTransitionRunsCurrentUpdate(t *testing.T) {
	var log []string
	s := states(&log, "A", "B")
	a, b := s[0], s[1]

	m := New()
	m.AddTransition(a, b, never)
	require.NoError(t, m.SetState(a))
	log = nil

	m.Tick()
	m.FixedTick()

	assert.Same(t, a, m.Current())
	assert.Equal(t, []string{"A.update", "A.fixed"}, log)
}

func TestMachine_SelfTransitionIsNoop(t *testing.T) {
	var log []string
	s := states(&log, "A", "B")
	a, b := s[0], s[1]

	m := New()
	m.AddAnyTransition(a, always)
	m.AddTransition(a, b, always)
	require.NoError(t, m.SetState(a))
	log = nil

	m.Tick()

	assert.Same(t, a, m.Current(), "first satisfied transition targets the current state")
	assert.Equal(t, []string{"A.update"}, log)
	assert.Equal(t, 1, m.Changes())
}

func TestMachine_TransitionsAreStateLocal(t *testing.T) {
	var log []string
	s := states(&log, "A", "B", "C")
	a, b, c := s[0], s[1], s[2]

	m := New()
	m.AddTransition(a, b, always)
	m.AddTransition(c, a, always)
	require.NoError(t, m.SetState(b))

	m.Tick()
	assert.Same(t, b, m.Current(), "B has no outgoing transitions")
}

func TestMachine_SetStateFromOnEnterIsQueued(t *testing.T) {
	var log []string
	s := states(&log, "A", "B", "C")
	a, b, c := s[0], s[1], s[2]

	m := New()
	m.AddState(a, b, c)
	b.onEnter = func() { require.NoError(t, m.SetState(c)) }
	require.NoError(t, m.SetState(a))
	log = nil

	var changes [][2]string
	m.OnChange = func(from, to State) {
		changes = append(changes, [2]string{name(from), name(to)})
	}

	require.NoError(t, m.SetState(b))

	assert.Same(t, c, m.Current())
	assert.Equal(t, []string{"A.exit", "B.enter", "B.exit", "C.enter"}, log)
	assert.Equal(t, [][2]string{{"A", "B"}, {"B", "C"}}, changes)
}

func TestMachine_UnknownState(t *testing.T) {
	var log []string
	s := states(&log, "A", "B")

	m := New()
	m.AddState(s[0])

	assert.ErrorIs(t, m.SetState(nil), ErrUnknownState)
	assert.ErrorIs(t, m.SetState(s[1]), ErrUnknownState)
	assert.Nil(t, m.Current())

	assert.NotPanics(t, m.Tick)
	assert.NotPanics(t, m.FixedTick)
}

func TestMachine_BaseState(t *testing.T) {
	type idle struct{ Base }
	st := &idle{}

	m := New()
	m.AddState(st)
	require.NoError(t, m.SetState(st))
	assert.NotPanics(t, m.Tick)
	assert.Equal(t, "*fsm.idle", name(st))
}
