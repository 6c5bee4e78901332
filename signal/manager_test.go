package signal

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingActuator struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingActuator) record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recordingActuator) ShowGreen()  { r.record("green") }
func (r *recordingActuator) ShowYellow() { r.record("yellow") }
func (r *recordingActuator) ShowRed()    { r.record("red") }
func (r *recordingActuator) AllOff()     { r.record("off") }

func (r *recordingActuator) getCalls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ret := make([]string, len(r.calls))
	copy(ret, r.calls)
	return ret
}

var callColor = map[string]Color{"green": Green, "yellow": Yellow, "red": Red, "off": None}

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

func TestNewManager(t *testing.T) {
	act := &recordingActuator{}
	m := NewManager(act, DefaultDelays())

	assert.Equal(t, Off, m.State())
	assert.Equal(t, Normal, m.Mode())
	assert.Empty(t, act.getCalls(), "construction must not actuate")
}

func TestManager_NormalCycle(t *testing.T) {
	act := &recordingActuator{}
	m := NewManager(act, DefaultDelays())

	wantStates := []LogicalState{Open, Closing, Closed, Open, Closing, Closed, Open}
	wantDelays := []time.Duration{ms(1000), ms(2000), ms(4000), ms(4000), ms(2000), ms(4000), ms(4000)}

	for i := range wantStates {
		delay := m.Step()
		assert.Equal(t, wantStates[i], m.State(), "state after step %d", i+1)
		assert.Equal(t, wantDelays[i], delay, "delay of step %d", i+1)
	}
	assert.Equal(t, []string{"green", "yellow", "red", "green", "yellow", "red", "green"}, act.getCalls())
}

func TestManager_EmergencyCycle(t *testing.T) {
	act := &recordingActuator{}
	m := NewManager(act, DefaultDelays())
	m.SwitchMode()

	wantStates := []LogicalState{Closing, Off, Closing, Off, Closing}
	for i, want := range wantStates {
		assert.Equal(t, ms(2000), m.Step(), "delay of step %d", i+1)
		assert.Equal(t, want, m.State(), "state after step %d", i+1)
	}
	assert.Equal(t, []string{"yellow", "off", "yellow", "off", "yellow"}, act.getCalls())
}

func TestManager_EmergencyFromAnyLitState(t *testing.T) {
	for _, steps := range []int{1, 2, 3} {
		act := &recordingActuator{}
		m := NewManager(act, DefaultDelays())
		for i := 0; i < steps; i++ {
			m.Step()
		}
		require.NotEqual(t, Off, m.State())

		m.SwitchMode()
		assert.Equal(t, ms(2000), m.Step())
		assert.Equal(t, Off, m.State())
		calls := act.getCalls()
		assert.Equal(t, "off", calls[len(calls)-1])
	}
}

func TestManager_SwitchModeTwiceRestoresMode(t *testing.T) {
	act := &recordingActuator{}
	m := NewManager(act, DefaultDelays())
	m.Step()
	m.Step()
	before := m.State()
	callsBefore := len(act.getCalls())

	m.SwitchMode()
	assert.Equal(t, Emergency, m.Mode())
	assert.Equal(t, before, m.State(), "switching mode must not change the state")
	m.SwitchMode()
	assert.Equal(t, Normal, m.Mode())
	assert.Equal(t, before, m.State())
	assert.Len(t, act.getCalls(), callsBefore, "switching mode must not actuate")
}

func TestManager_Scenario(t *testing.T) {
	act := &recordingActuator{}
	m := NewManager(act, DefaultDelays())

	assert.Equal(t, ms(1000), m.Step())
	assert.Equal(t, Open, m.State())
	assert.Equal(t, []string{"green"}, act.getCalls())

	assert.Equal(t, ms(2000), m.Step())
	assert.Equal(t, Closing, m.State())
	assert.Equal(t, []string{"green", "yellow"}, act.getCalls())

	m.SwitchMode()
	assert.Equal(t, ms(2000), m.Step())
	assert.Equal(t, Off, m.State())
	assert.Equal(t, []string{"green", "yellow", "off"}, act.getCalls())
}

func TestManager_OneCommandPerTransitionInBothModes(t *testing.T) {
	for _, mode := range AllModes {
		act := &recordingActuator{}
		m := NewManager(act, DefaultDelays())
		if mode == Emergency {
			m.SwitchMode()
		}
		for i := 1; i <= 6; i++ {
			m.Step()
			calls := act.getCalls()
			require.Len(t, calls, i)
			assert.Equal(t, ColorOf(m.State()), callColor[calls[i-1]], "mode %s step %d", mode, i)
		}
	}
}

func TestManager_OnTransition(t *testing.T) {
	act := &recordingActuator{}
	m := NewManager(act, DefaultDelays())

	var got []Transition
	m.OnTransition(func(tr Transition) {
		got = append(got, tr)
		// the lamps are switched after the listener returns
		assert.Len(t, act.calls, len(got)-1)
	})

	m.Step()
	m.Step()
	m.SwitchMode()
	m.Step()

	require.Len(t, got, 3)
	assert.Equal(t, Transition{From: Off, To: Open, Mode: Normal, Color: Green, Delay: ms(1000)}, got[0])
	assert.Equal(t, Transition{From: Open, To: Closing, Mode: Normal, Color: Yellow, Delay: ms(2000)}, got[1])
	assert.Equal(t, Transition{From: Closing, To: Off, Mode: Emergency, Color: None, Delay: ms(2000)}, got[2])
	assert.Equal(t, got[2], m.LastTransition())

	m.OnTransition(nil)
	m.Step()
	assert.Len(t, got, 3)
}

func TestManager_SetDelays(t *testing.T) {
	act := &recordingActuator{}
	m := NewManager(act, DefaultDelays())

	fast := Delays{Short: ms(10), Medium: ms(20), Long: ms(30), VeryLong: ms(40)}
	m.SetDelays(fast)
	assert.Equal(t, fast, m.Delays())
	assert.Equal(t, ms(10), m.Step())
	assert.Equal(t, ms(20), m.Step())
	assert.Equal(t, ms(40), m.Step())
}

func TestManager_ConcurrentSwitchAndStep(t *testing.T) {
	act := &recordingActuator{}
	m := NewManager(act, DefaultDelays())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			m.Step()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			m.SwitchMode()
		}
	}()
	wg.Wait()

	assert.Len(t, act.getCalls(), 500)
	assert.Equal(t, Normal, m.Mode(), "an even number of toggles restores the mode")
}
