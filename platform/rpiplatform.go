package platform

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/stianeikeland/go-rpio/v4"

	"lautenbacher.net/gosignal/config"
	"lautenbacher.net/gosignal/signal"
	"lautenbacher.net/gosignal/util"
)

// outputPin and buttonPin are the parts of rpio.Pin the platform uses.
type outputPin interface {
	High()
	Low()
}

type buttonPin interface {
	EdgeDetected() bool
}

type RaspberryPiPlatform struct {
	*AbstractPlatform
	red            outputPin
	yellow         outputPin
	green          outputPin
	button         buttonPin
	lastPress      time.Time
	buttonWg       sync.WaitGroup
	buttonStopChan chan bool
	gpioOpen       bool
}

func NewRaspberryPiPlatform(conf *config.Config) *RaspberryPiPlatform {
	inst := &RaspberryPiPlatform{
		buttonStopChan: make(chan bool),
	}
	inst.AbstractPlatform = newAbstractPlatform(conf, inst.rpiShowFunc)
	return inst
}

func (s *RaspberryPiPlatform) Start() error {
	hw := s.config.Hardware

	slog.Info("Initialise GPIO...", "red", hw.RedPin, "yellow", hw.YellowPin, "green", hw.GreenPin)
	if err := rpio.Open(); err != nil {
		return fmt.Errorf("failed to open rpio: %w", err)
	}
	s.gpioOpen = true

	s.red = lampPin(hw.RedPin)
	s.yellow = lampPin(hw.YellowPin)
	s.green = lampPin(hw.GreenPin)

	if hw.ButtonPin != 0 {
		pin := rpio.Pin(hw.ButtonPin)
		pin.Input()
		pin.PullUp()
		pin.Detect(rpio.FallEdge)
		s.button = pin
		slog.Info("Mode button attached", "pin", hw.ButtonPin)

		s.buttonWg.Add(1)
		go s.buttonDriver(hw.ButtonPollDelay)
	}

	close(s.readyChan) // For RPi, we are ready immediately.
	return nil
}

func lampPin(n int) rpio.Pin {
	pin := rpio.Pin(n)
	pin.Output()
	pin.Low()
	return pin
}

func (s *RaspberryPiPlatform) Stop() {
	s.setInShutdown()
	s.setLamps(signal.None)

	close(s.buttonStopChan)
	s.buttonWg.Wait()

	if pin, ok := s.button.(rpio.Pin); ok {
		pin.Detect(rpio.NoEdge)
	}
	if s.gpioOpen {
		if err := rpio.Close(); err != nil {
			slog.Error("Error closing rpio", "error", err)
		}
		s.gpioOpen = false
	}
}

func (s *RaspberryPiPlatform) rpiShowFunc(c signal.Color) {
	s.setLamps(c)
}

// setLamps drives the three lamp pins so that at most the lamp of c is lit.
func (s *RaspberryPiPlatform) setLamps(c signal.Color) {
	for _, lamp := range []struct {
		pin   outputPin
		color signal.Color
	}{{s.red, signal.Red}, {s.yellow, signal.Yellow}, {s.green, signal.Green}} {
		if lamp.pin == nil {
			continue
		}
		if lamp.color == c {
			lamp.pin.High()
		} else {
			lamp.pin.Low()
		}
	}
}

func (s *RaspberryPiPlatform) buttonDriver(pollDelay time.Duration) {
	defer s.buttonWg.Done()
	ticker := time.NewTicker(pollDelay)
	defer ticker.Stop()

	for {
		select {
		case <-s.buttonStopChan:
			slog.Info("Ending ButtonDriver go-routine (RPi)")
			return
		case now := <-ticker.C:
			s.pollButton(now)
		}
	}
}

// pollButton turns a detected falling edge into a toggle request, unless
// it follows the last accepted press within the debounce time.
func (s *RaspberryPiPlatform) pollButton(now time.Time) bool {
	if !s.button.EdgeDetected() {
		return false
	}
	if !s.lastPress.IsZero() && now.Sub(s.lastPress) < s.config.Hardware.ButtonDebounce {
		slog.Debug("Button bounce ignored")
		return false
	}
	s.lastPress = now
	return s.request("button", util.Toggle)
}
