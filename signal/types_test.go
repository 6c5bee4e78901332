package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorOf(t *testing.T) {
	assert.Equal(t, Green, ColorOf(Open))
	assert.Equal(t, Yellow, ColorOf(Closing))
	assert.Equal(t, Red, ColorOf(Closed))
	assert.Equal(t, None, ColorOf(Off))
}

func TestMode_Toggled(t *testing.T) {
	assert.Equal(t, Emergency, Normal.Toggled())
	assert.Equal(t, Normal, Emergency.Toggled())
	assert.Equal(t, Normal, Normal.Toggled().Toggled())
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "closing", Closing.String())
	assert.Equal(t, "emergency", Emergency.String())
	assert.Equal(t, "yellow", Yellow.String())
	assert.Equal(t, "unknown", LogicalState(9).String())
}

func TestActuate(t *testing.T) {
	a := &recordingActuator{}
	b := &recordingActuator{}
	both := Actuators{a, b}

	for _, c := range []Color{Green, Yellow, Red, None} {
		Actuate(both, c)
	}
	want := []string{"green", "yellow", "red", "off"}
	assert.Equal(t, want, a.getCalls())
	assert.Equal(t, want, b.getCalls())
}

func TestTextRoundTrip(t *testing.T) {
	for _, s := range AllStates {
		text, err := s.MarshalText()
		require.NoError(t, err)
		var got LogicalState
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, s, got)
	}

	var m Mode
	require.NoError(t, m.UnmarshalText([]byte("emergency")))
	assert.Equal(t, Emergency, m)

	var c Color
	require.NoError(t, c.UnmarshalText([]byte("yellow")))
	assert.Equal(t, Yellow, c)

	assert.Error(t, m.UnmarshalText([]byte("panic")))
	assert.Error(t, c.UnmarshalText([]byte("blue")))
	var s LogicalState
	assert.Error(t, s.UnmarshalText([]byte("unknown")))
}
