package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Every (mode, state) pair must have a row. If this fails, Step would
// fall back to keeping the state, which is a bug in Next.
func TestNext_EveryPairHasARow(t *testing.T) {
	for _, mode := range AllModes {
		for _, state := range AllStates {
			_, _, ok := Next(mode, state, DefaultDelays())
			assert.True(t, ok, "no row for mode %s, state %s", mode, state)
		}
	}
}

func TestNext_Table(t *testing.T) {
	d := DefaultDelays()
	tests := []struct {
		mode      Mode
		current   LogicalState
		wantNext  LogicalState
		wantDelay time.Duration
	}{
		{Normal, Open, Closing, d.Medium},
		{Normal, Closing, Closed, d.VeryLong},
		{Normal, Closed, Open, d.VeryLong},
		{Normal, Off, Open, d.Short},
		{Emergency, Off, Closing, d.Medium},
		{Emergency, Open, Off, d.Medium},
		{Emergency, Closing, Off, d.Medium},
		{Emergency, Closed, Off, d.Medium},
	}
	for _, tt := range tests {
		next, delay, ok := Next(tt.mode, tt.current, d)
		assert.True(t, ok)
		assert.Equal(t, tt.wantNext, next, "%s/%s", tt.mode, tt.current)
		assert.Equal(t, tt.wantDelay, delay, "%s/%s", tt.mode, tt.current)
	}
}

func TestNext_UnknownValuesFallBack(t *testing.T) {
	d := DefaultDelays()
	next, delay, ok := Next(Mode(7), Open, d)
	assert.False(t, ok)
	assert.Equal(t, Open, next)
	assert.Equal(t, d.Short, delay)

	next, delay, ok = Next(Normal, LogicalState(42), d)
	assert.False(t, ok)
	assert.Equal(t, LogicalState(42), next)
	assert.Equal(t, d.Short, delay)
}

func TestDefaultDelays(t *testing.T) {
	d := DefaultDelays()
	assert.Equal(t, 1000*time.Millisecond, d.Short)
	assert.Equal(t, 2000*time.Millisecond, d.Medium)
	assert.Equal(t, 3000*time.Millisecond, d.Long)
	assert.Equal(t, 4000*time.Millisecond, d.VeryLong)
	assert.NoError(t, d.Validate())
}

func TestDelays_Validate(t *testing.T) {
	d := DefaultDelays()
	d.VeryLong = 0
	err := d.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "VeryLong")

	d = DefaultDelays()
	d.Short = -time.Second
	assert.Error(t, d.Validate())
}

func TestDelays_ValidateReportsFirstInvalidField(t *testing.T) {
	d := Delays{}
	for i := 0; i < 20; i++ {
		err := d.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "delay Short ")
	}
}
