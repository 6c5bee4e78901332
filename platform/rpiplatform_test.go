package platform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"lautenbacher.net/gosignal/config"
	"lautenbacher.net/gosignal/signal"
	"lautenbacher.net/gosignal/util"
)

type fakePin struct {
	high bool
}

func (p *fakePin) High() { p.high = true }
func (p *fakePin) Low()  { p.high = false }

type fakeButton struct {
	edges []bool
}

func (b *fakeButton) EdgeDetected() bool {
	if len(b.edges) == 0 {
		return false
	}
	e := b.edges[0]
	b.edges = b.edges[1:]
	return e
}

func newTestRpi() (*RaspberryPiPlatform, *fakePin, *fakePin, *fakePin) {
	conf := config.Default()
	p := NewRaspberryPiPlatform(&conf)
	red, yellow, green := &fakePin{}, &fakePin{}, &fakePin{}
	p.red, p.yellow, p.green = red, yellow, green
	return p, red, yellow, green
}

func TestRaspberryPiPlatform_OneLampAtATime(t *testing.T) {
	p, red, yellow, green := newTestRpi()

	tests := []struct {
		name                string
		show                func()
		wantR, wantY, wantG bool
	}{
		{"green", p.ShowGreen, false, false, true},
		{"yellow", p.ShowYellow, false, true, false},
		{"red", p.ShowRed, true, false, false},
		{"red again", p.ShowRed, true, false, false},
		{"off", p.AllOff, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.show()
			assert.Equal(t, tt.wantR, red.high, "red")
			assert.Equal(t, tt.wantY, yellow.high, "yellow")
			assert.Equal(t, tt.wantG, green.high, "green")
		})
	}
	assert.Equal(t, signal.None, p.LastColor())
}

func TestRaspberryPiPlatform_ButtonDebounce(t *testing.T) {
	p, _, _, _ := newTestRpi()
	p.config.Hardware.ButtonDebounce = 200 * time.Millisecond
	p.button = &fakeButton{edges: []bool{false, true, true, false, true}}

	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.False(t, p.pollButton(start), "no edge")
	assert.True(t, p.pollButton(start.Add(20*time.Millisecond)), "first press")
	assert.False(t, p.pollButton(start.Add(40*time.Millisecond)), "bounce")
	assert.False(t, p.pollButton(start.Add(300*time.Millisecond)), "no edge")
	assert.True(t, p.pollButton(start.Add(320*time.Millisecond)), "second press")

	assert.Len(t, p.ModeRequests(), 2)
	req := <-p.ModeRequests()
	assert.Equal(t, "button", req.Source)
	assert.Equal(t, util.Toggle, req.Kind)
}
