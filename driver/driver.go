package driver

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"lautenbacher.net/gosignal/signal"
	"lautenbacher.net/gosignal/util"
)

const requestQueueSize = 16

// Status is what the outside world gets to see of the signal.
type Status struct {
	Mode       signal.Mode         `json:"mode"`
	State      signal.LogicalState `json:"state"`
	Color      signal.Color        `json:"color"`
	Delay      time.Duration       `json:"delayNs"`
	NightFlash bool                `json:"nightFlash"`
	At         time.Time           `json:"at"`
}

// Schedule decides which mode the signal should be in at a given time.
type Schedule interface {
	Desired(now time.Time) signal.Mode
}

// Driver steps the Manager and serves mode requests while it waits.
type Driver struct {
	manager          *signal.Manager
	platformRequests <-chan *util.Request
	requests         chan *util.Request
	status           *util.AtomicEvent[Status]
	hooksMu          sync.Mutex
	transitionHooks  []func(signal.Transition)
	requestHooks     []func(*util.Request)
	schedule         Schedule
	checkInterval    time.Duration
	lastDesired      signal.Mode
	haveDesired      bool
	night            atomic.Bool
}

// New creates a Driver for manager. platformRequests may be nil.
func New(manager *signal.Manager, platformRequests <-chan *util.Request) *Driver {
	d := &Driver{
		manager:          manager,
		platformRequests: platformRequests,
		requests:         make(chan *util.Request, requestQueueSize),
		status:           util.NewAtomicEvent[Status](),
	}
	manager.OnTransition(d.transitioned)
	return d
}

// EnableNightFlash makes the driver consult schedule every interval and
// request its mode whenever the schedule's answer changes. A manual switch
// in between stays in effect until the next change.
func (d *Driver) EnableNightFlash(schedule Schedule, interval time.Duration) {
	d.schedule = schedule
	d.checkInterval = interval
}

// OnTransition adds a hook called synchronously after every Step. Hooks
// must be quick and must not call into the Manager.
func (d *Driver) OnTransition(fn func(signal.Transition)) {
	d.hooksMu.Lock()
	defer d.hooksMu.Unlock()
	d.transitionHooks = append(d.transitionHooks, fn)
}

// OnRequest adds a hook called for every mode request the driver handles.
func (d *Driver) OnRequest(fn func(*util.Request)) {
	d.hooksMu.Lock()
	defer d.hooksMu.Unlock()
	d.requestHooks = append(d.requestHooks, fn)
}

// Events carries the latest Status after every transition and mode switch.
func (d *Driver) Events() *util.AtomicEvent[Status] {
	return d.status
}

// Submit queues a mode request without blocking. It reports false when
// the queue is full.
func (d *Driver) Submit(r *util.Request) bool {
	select {
	case d.requests <- r:
		return true
	default:
		slog.Warn("Mode request dropped, queue full", "source", r.Source, "kind", r.Kind)
		return false
	}
}

// SetDelays replaces the delay table from the next Step on.
func (d *Driver) SetDelays(delays signal.Delays) {
	d.manager.SetDelays(delays)
	slog.Info("Delays updated", "short", delays.Short, "medium", delays.Medium, "long", delays.Long, "verylong", delays.VeryLong)
}

// CurrentStatus reads the Manager directly.
func (d *Driver) CurrentStatus() Status {
	state := d.manager.State()
	return Status{
		Mode:       d.manager.Mode(),
		State:      state,
		Color:      signal.ColorOf(state),
		Delay:      d.manager.LastTransition().Delay,
		NightFlash: d.night.Load(),
		At:         time.Now(),
	}
}

// Run steps the signal until ctx is done. A mode switch during a wait
// takes effect on the next Step; the wait itself is not shortened.
func (d *Driver) Run(ctx context.Context) {
	var nightTick <-chan time.Time
	if d.schedule != nil {
		ticker := time.NewTicker(d.checkInterval)
		defer ticker.Stop()
		nightTick = ticker.C
		d.checkNight(time.Now())
	}

	for {
		delay := d.manager.Step()
		timer := time.NewTimer(delay)

	wait:
		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				slog.Info("Ending driver go-routine...")
				return
			case <-timer.C:
				break wait
			case r := <-d.platformRequests:
				d.handle(r)
			case r := <-d.requests:
				d.handle(r)
			case now := <-nightTick:
				d.checkNight(now)
			}
		}
	}
}

// handle applies a request. Absolute requests for the current mode are
// ignored. Only the Run goroutine switches modes, so reading the mode
// first is safe.
func (d *Driver) handle(r *util.Request) {
	if r == nil {
		return
	}
	d.hooksMu.Lock()
	hooks := d.requestHooks
	d.hooksMu.Unlock()
	for _, hook := range hooks {
		hook(r)
	}

	mode := d.manager.Mode()
	if (r.Kind == util.WantNormal && mode == signal.Normal) ||
		(r.Kind == util.WantEmergency && mode == signal.Emergency) {
		slog.Debug("Mode request ignored, already in mode", "source", r.Source, "mode", mode)
		return
	}
	slog.Info("Mode request", "source", r.Source, "kind", r.Kind)
	d.manager.SwitchMode()
	d.status.Send(d.CurrentStatus())
}

func (d *Driver) checkNight(now time.Time) {
	desired := d.schedule.Desired(now)
	d.night.Store(desired == signal.Emergency)
	if d.haveDesired && desired == d.lastDesired {
		return
	}
	d.haveDesired = true
	d.lastDesired = desired

	kind := util.WantNormal
	if desired == signal.Emergency {
		kind = util.WantEmergency
	}
	d.handle(util.NewRequest("nightflash", kind, now))
}

// transitioned runs inside Manager.Step, so it reads nothing from the
// Manager.
func (d *Driver) transitioned(tr signal.Transition) {
	d.hooksMu.Lock()
	hooks := d.transitionHooks
	d.hooksMu.Unlock()
	for _, hook := range hooks {
		hook(tr)
	}
	d.status.Send(Status{
		Mode:       tr.Mode,
		State:      tr.To,
		Color:      tr.Color,
		Delay:      tr.Delay,
		NightFlash: d.night.Load(),
		At:         time.Now(),
	})
}
