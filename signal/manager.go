package signal

import (
	"log/slog"
	"sync"
	"time"
)

// Transition describes one completed Step.
type Transition struct {
	From  LogicalState
	To    LogicalState
	Mode  Mode
	Color Color
	Delay time.Duration
}

// Manager owns the mode and the StateMachine and bridges every new state
// to the Actuator. All methods are safe for concurrent use. The actuator
// and the transition listener run with the Manager locked and must not
// call back into it.
type Manager struct {
	mu         sync.Mutex
	sm         *StateMachine
	actuator   Actuator
	mode       Mode
	delays     Delays
	stepDelay  time.Duration
	onStep     func(Transition)
	lastResult Transition
}

// NewManager returns a Manager in (Off, Normal). Nothing is actuated
// until the first Step.
func NewManager(actuator Actuator, delays Delays) *Manager {
	m := &Manager{
		sm:       NewStateMachine(),
		actuator: actuator,
		mode:     Normal,
		delays:   delays,
	}
	m.sm.Observe(m.stateChanged)
	return m
}

// Step advances the signal by one transition and returns how long the
// caller should wait before stepping again. Step itself never waits.
func (m *Manager) Step() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	from := m.sm.State()
	next, delay, ok := Next(m.mode, from, m.delays)
	if !ok {
		slog.Error("No transition for mode and state, keeping state", "mode", m.mode, "state", from)
		return m.delays.Short
	}

	m.lastResult = Transition{From: from, To: next, Mode: m.mode, Color: ColorOf(next)}
	m.stepDelay = delay
	m.sm.TransitionTo(next)
	m.onLogicalStateChanged(next)
	return delay
}

// SwitchMode flips between Normal and Emergency. The new mode is used
// from the next Step on; the state and the lamps are left alone.
func (m *Manager) SwitchMode() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = m.mode.Toggled()
	slog.Info("Mode switched", "mode", m.mode, "state", m.sm.State())
}

func (m *Manager) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

func (m *Manager) State() LogicalState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sm.State()
}

// LastTransition returns the result of the most recent Step. It is the
// zero Transition before the first Step.
func (m *Manager) LastTransition() Transition {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastResult
}

// SetDelays replaces the delay table used from the next Step on.
func (m *Manager) SetDelays(d Delays) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays = d
}

func (m *Manager) Delays() Delays {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.delays
}

// OnTransition registers the single listener called after every Step's
// state change, before the lamps are switched. nil removes it.
func (m *Manager) OnTransition(fn func(Transition)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStep = fn
}

// stateChanged is the StateMachine observer. It runs inside Step.
func (m *Manager) stateChanged(sm *StateMachine, newState LogicalState) {
	m.lastResult.To = sm.State()
	m.lastResult.Delay = m.stepDelay
	if m.onStep != nil {
		m.onStep(m.lastResult)
	}
}

// onLogicalStateChanged issues exactly one actuator command for newState.
func (m *Manager) onLogicalStateChanged(newState LogicalState) {
	Actuate(m.actuator, ColorOf(newState))
}
