package signal

import (
	"fmt"
	"time"
)

// Delays is the delay table the policy picks from. Long is not used by
// the current cycle but stays configurable.
type Delays struct {
	Short    time.Duration `yaml:"Short" json:"Short"`
	Medium   time.Duration `yaml:"Medium" json:"Medium"`
	Long     time.Duration `yaml:"Long" json:"Long"`
	VeryLong time.Duration `yaml:"VeryLong" json:"VeryLong"`
}

// DefaultDelays returns 1s, 2s, 3s and 4s.
func DefaultDelays() Delays {
	return Delays{
		Short:    1000 * time.Millisecond,
		Medium:   2000 * time.Millisecond,
		Long:     3000 * time.Millisecond,
		VeryLong: 4000 * time.Millisecond,
	}
}

// Validate checks that every entry is positive.
func (d Delays) Validate() error {
	for _, e := range []struct {
		name string
		v    time.Duration
	}{
		{"Short", d.Short},
		{"Medium", d.Medium},
		{"Long", d.Long},
		{"VeryLong", d.VeryLong},
	} {
		if e.v <= 0 {
			return fmt.Errorf("delay %s must be positive, got %s", e.name, e.v)
		}
	}
	return nil
}

// Next computes the state that follows current under mode, together with
// the time to wait before the following step. ok is false only if the
// (mode, current) pair has no row, which cannot happen for the declared
// enum values.
func Next(mode Mode, current LogicalState, d Delays) (next LogicalState, delay time.Duration, ok bool) {
	switch mode {
	case Normal:
		switch current {
		case Open:
			return Closing, d.Medium, true
		case Closing:
			return Closed, d.VeryLong, true
		case Closed:
			return Open, d.VeryLong, true
		case Off:
			return Open, d.Short, true
		}
	case Emergency:
		switch current {
		case Off:
			return Closing, d.Medium, true
		case Open, Closing, Closed:
			return Off, d.Medium, true
		}
	}
	return current, d.Short, false
}
