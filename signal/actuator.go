package signal

// Actuator lights the lamps of one signal head. Implementations keep at
// most one lamp lit and must tolerate redundant calls.
type Actuator interface {
	ShowGreen()
	ShowYellow()
	ShowRed()
	AllOff()
}

// Actuate issues the single Actuator call that shows color.
func Actuate(a Actuator, color Color) {
	switch color {
	case Green:
		a.ShowGreen()
	case Yellow:
		a.ShowYellow()
	case Red:
		a.ShowRed()
	default:
		a.AllOff()
	}
}

// Actuators fans every command out to all members in order.
type Actuators []Actuator

func (as Actuators) ShowGreen() {
	for _, a := range as {
		a.ShowGreen()
	}
}

func (as Actuators) ShowYellow() {
	for _, a := range as {
		a.ShowYellow()
	}
}

func (as Actuators) ShowRed() {
	for _, a := range as {
		a.ShowRed()
	}
}

func (as Actuators) AllOff() {
	for _, a := range as {
		a.AllOff()
	}
}
