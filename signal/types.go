package signal

import "fmt"

// LogicalState is the phase the signal is in, independent of the color
// used to show it.
type LogicalState int

const (
	Off LogicalState = iota
	Open
	Closing
	Closed
)

// AllStates lists every LogicalState, in declaration order.
var AllStates = []LogicalState{Off, Open, Closing, Closed}

func (s LogicalState) String() string {
	switch s {
	case Off:
		return "off"
	case Open:
		return "open"
	case Closing:
		return "closing"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// Mode selects which transition table Step consults.
type Mode int

const (
	Normal Mode = iota
	Emergency
)

var AllModes = []Mode{Normal, Emergency}

func (m Mode) String() string {
	switch m {
	case Normal:
		return "normal"
	case Emergency:
		return "emergency"
	}
	return "unknown"
}

// Toggled returns the other mode.
func (m Mode) Toggled() Mode {
	if m == Emergency {
		return Normal
	}
	return Emergency
}

// Color is what a lamp head shows. None means all lamps are dark.
type Color int

const (
	None Color = iota
	Green
	Yellow
	Red
)

func (c Color) String() string {
	switch c {
	case None:
		return "none"
	case Green:
		return "green"
	case Yellow:
		return "yellow"
	case Red:
		return "red"
	}
	return "unknown"
}

// ColorOf maps a state to the color shown for it. The mapping does not
// depend on the mode.
func ColorOf(s LogicalState) Color {
	switch s {
	case Open:
		return Green
	case Closing:
		return Yellow
	case Closed:
		return Red
	}
	return None
}

func (s LogicalState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (s *LogicalState) UnmarshalText(text []byte) error {
	for _, v := range AllStates {
		if v.String() == string(text) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", text)
}

func (m *Mode) UnmarshalText(text []byte) error {
	for _, v := range AllModes {
		if v.String() == string(text) {
			*m = v
			return nil
		}
	}
	return fmt.Errorf("unknown mode %q", text)
}

func (c *Color) UnmarshalText(text []byte) error {
	for _, v := range []Color{None, Green, Yellow, Red} {
		if v.String() == string(text) {
			*c = v
			return nil
		}
	}
	return fmt.Errorf("unknown color %q", text)
}
