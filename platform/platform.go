package platform

import (
	"lautenbacher.net/gosignal/signal"
	"lautenbacher.net/gosignal/util"
)

// Platform abstracts away the real signal head from the TUI simulation.
type Platform interface {
	// The lamps of the signal head.
	signal.Actuator

	// Start initializes the platform (e.g., opens GPIO, or starts the TUI).
	Start() error

	// Stop switches the lamps off and cleans up all platform resources.
	Stop()

	// ModeRequests delivers the requests of the platform's own input
	// device: the push button on the Pi, the keyboard in the TUI.
	ModeRequests() <-chan *util.Request

	// Ready is closed once the platform can display anything.
	Ready() <-chan bool
}
