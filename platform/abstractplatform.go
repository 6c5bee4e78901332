package platform

import (
	"log/slog"
	"sync"
	"time"

	"lautenbacher.net/gosignal/config"
	"lautenbacher.net/gosignal/signal"
	"lautenbacher.net/gosignal/util"
)

const requestQueueSize = 8

type AbstractPlatform struct {
	config         *config.Config
	requests       chan *util.Request
	readyChan      chan bool
	showFunc       func(signal.Color)
	colorMutex     sync.Mutex
	lastColor      signal.Color
	shutdownMutex  sync.RWMutex
	isShuttingDown bool
}

func newAbstractPlatform(conf *config.Config, showFunc func(signal.Color)) *AbstractPlatform {
	return &AbstractPlatform{
		config:    conf,
		requests:  make(chan *util.Request, requestQueueSize),
		readyChan: make(chan bool),
		showFunc:  showFunc,
	}
}

func (s *AbstractPlatform) ShowGreen()  { s.show(signal.Green) }
func (s *AbstractPlatform) ShowYellow() { s.show(signal.Yellow) }
func (s *AbstractPlatform) ShowRed()    { s.show(signal.Red) }
func (s *AbstractPlatform) AllOff()     { s.show(signal.None) }

func (s *AbstractPlatform) show(c signal.Color) {
	s.shutdownMutex.RLock()
	defer s.shutdownMutex.RUnlock()
	if s.isShuttingDown {
		return
	}

	s.colorMutex.Lock()
	s.lastColor = c
	s.colorMutex.Unlock()
	s.showFunc(c)
}

// LastColor is the color most recently shown.
func (s *AbstractPlatform) LastColor() signal.Color {
	s.colorMutex.Lock()
	defer s.colorMutex.Unlock()
	return s.lastColor
}

func (s *AbstractPlatform) ModeRequests() <-chan *util.Request {
	return s.requests
}

func (s *AbstractPlatform) Ready() <-chan bool {
	return s.readyChan
}

// request queues a mode request. The input device must never block on a
// busy driver, so requests beyond the queue size are dropped.
func (s *AbstractPlatform) request(source string, kind util.RequestKind) bool {
	select {
	case s.requests <- util.NewRequest(source, kind, time.Now()):
		slog.Debug("Mode request", "source", source, "kind", kind)
		return true
	default:
		slog.Warn("Mode request dropped, queue full", "source", source, "kind", kind)
		return false
	}
}

func (s *AbstractPlatform) setInShutdown() {
	s.shutdownMutex.Lock()
	s.isShuttingDown = true
	s.shutdownMutex.Unlock()
}
