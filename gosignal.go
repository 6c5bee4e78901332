package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	ossignal "os/signal"
	"sync"
	"syscall"
	"time"

	"lautenbacher.net/gosignal/chirp"
	"lautenbacher.net/gosignal/config"
	"lautenbacher.net/gosignal/driver"
	"lautenbacher.net/gosignal/history"
	"lautenbacher.net/gosignal/logging"
	"lautenbacher.net/gosignal/metrics"
	"lautenbacher.net/gosignal/nightflash"
	"lautenbacher.net/gosignal/platform"
	"lautenbacher.net/gosignal/remote"
	"lautenbacher.net/gosignal/signal"
	"lautenbacher.net/gosignal/web"
)

// statusViewer is implemented by platforms that can show mode and state
// next to the lamps.
type statusViewer interface {
	SetStatus(mode signal.Mode, state signal.LogicalState, nightFlash bool)
}

type App struct {
	ossignal   chan os.Signal
	cfile      string
	realHW     bool
	configMu   sync.Mutex
	config     *config.Config
	platform   platform.Platform
	manager    *signal.Manager
	driver     *driver.Driver
	history    *history.History
	metrics    *metrics.Metrics
	chirper    *chirp.Chirper
	web        *web.Server
	mqtt       *remote.MQTTCommander
	watcher    *config.Watcher
	cancel     context.CancelFunc
	stopsignal chan struct{}
	shutdownWg sync.WaitGroup
}

func NewApp(ossignal chan os.Signal, cfile string, conf *config.Config, realHW bool) *App {
	return &App{
		ossignal:   ossignal,
		cfile:      cfile,
		realHW:     realHW,
		config:     conf,
		stopsignal: make(chan struct{}),
	}
}

func main() {
	cfile := flag.String("config", config.CONFILE, "Path to the config file")
	realp := flag.Bool("real", false, "Set to true if program runs on the real hardware")
	flag.Parse()

	sigchan := make(chan os.Signal, 1)
	ossignal.Notify(sigchan, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	for {
		conf, err := config.ReadConfig(*cfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(2)
		}

		logConfig := conf.Logging.TUI
		if *realp {
			logConfig = conf.Logging.HW
		}
		// In the TUI, logs are held back until the log pane is drawn.
		if err := logging.Init(logConfig, !*realp); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(2)
		}

		app := NewApp(sigchan, *cfile, conf, *realp)
		if err := app.initialise(); err != nil {
			slog.Error("Can't start", "error", err)
			app.shutdown()
			logging.Close()
			os.Exit(1)
		}

		sig := <-sigchan
		app.shutdown()
		if sig == syscall.SIGHUP {
			slog.Info("Reloading config and restarting...")
			logging.Close()
			continue
		}
		slog.Info("Exiting...")
		logging.Close()
		return
	}
}

func (a *App) initialise() error {
	conf := a.config

	if a.platform == nil {
		if a.realHW {
			a.platform = platform.NewRaspberryPiPlatform(conf)
		} else {
			a.platform = platform.NewTUIPlatform(conf, a.ossignal)
		}
	}
	if err := a.platform.Start(); err != nil {
		return fmt.Errorf("can't start platform: %w", err)
	}
	<-a.platform.Ready()

	actuators := signal.Actuators{a.platform}
	if conf.Chirp.Enabled {
		chirper, err := chirp.New(conf.Chirp)
		if err != nil {
			slog.Warn("Running without chirp", "error", err)
		} else {
			chirper.Start()
			a.chirper = chirper
			actuators = append(actuators, chirper)
		}
	}

	a.manager = signal.NewManager(actuators, conf.Timing)
	a.driver = driver.New(a.manager, a.platform.ModeRequests())
	a.history = history.New(history.DefaultCapacity)
	a.metrics = metrics.New()
	a.driver.OnTransition(a.recordTransition)
	a.driver.OnRequest(a.metrics.ObserveRequest)

	if conf.NightFlash.Enabled {
		slog.Info("Night flash enabled", "latitude", conf.NightFlash.Latitude, "longitude", conf.NightFlash.Longitude)
		a.driver.EnableNightFlash(nightflash.New(conf.NightFlash), conf.NightFlash.CheckInterval)
	}

	if conf.MQTT.Enabled {
		a.mqtt = remote.NewMQTTCommander(conf.MQTT, a.driver.Submit)
		if err := a.mqtt.Start(); err != nil {
			slog.Error("Running without MQTT", "error", err)
			a.mqtt = nil
		}
	}

	if conf.Web.Enabled {
		a.web = web.NewServer(conf.Web.Listen, a.driver, a.history, a.metrics, a.cfile)
		if err := a.web.Start(); err != nil {
			return err
		}
	}

	if watcher, err := config.NewWatcher(a.cfile); err != nil {
		slog.Warn("Config changes will not be picked up", "error", err)
	} else {
		a.watcher = watcher
		a.shutdownWg.Add(1)
		go a.watchConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.shutdownWg.Add(2)
	go a.fanOutStatus()
	go func() {
		defer a.shutdownWg.Done()
		a.driver.Run(ctx)
	}()
	return nil
}

func (a *App) shutdown() {
	if a.cancel != nil {
		a.cancel()
	}
	close(a.stopsignal)
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			slog.Error("Error closing config watcher", "error", err)
		}
	}
	a.shutdownWg.Wait()

	if a.web != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := a.web.Stop(ctx); err != nil {
			slog.Error("Error stopping web API", "error", err)
		}
		cancel()
	}
	if a.mqtt != nil {
		a.mqtt.Stop()
	}
	if a.chirper != nil {
		a.chirper.Stop()
	}
	if a.platform != nil {
		a.platform.Stop()
	}
}

func (a *App) recordTransition(tr signal.Transition) {
	a.history.Add(history.NewEntry(tr, time.Now()))
	a.metrics.ObserveTransition(tr)
	slog.Debug("Transition", "from", tr.From, "to", tr.To, "mode", tr.Mode, "delay", tr.Delay)
}

// fanOutStatus hands the latest status to everything that displays or
// publishes it.
func (a *App) fanOutStatus() {
	defer a.shutdownWg.Done()
	events := a.driver.Events()
	viewer, hasViewer := a.platform.(statusViewer)

	for {
		select {
		case <-a.stopsignal:
			slog.Info("Ending status go-routine...")
			return
		case <-events.Channel():
			st := events.Value()
			a.metrics.SetMode(st.Mode)
			if hasViewer {
				viewer.SetStatus(st.Mode, st.State, st.NightFlash)
			}
			if a.mqtt != nil {
				if err := a.mqtt.PublishStatus(st); err != nil {
					slog.Warn("Can't publish status", "error", err)
				}
			}
		}
	}
}

func (a *App) watchConfig() {
	defer a.shutdownWg.Done()
	for {
		select {
		case <-a.stopsignal:
			return
		case <-a.watcher.Changes():
			a.reloadConfig()
		}
	}
}

// reloadConfig applies new timing in place. Any other change needs a
// restart, which is requested the same way the r key does it.
func (a *App) reloadConfig() {
	a.configMu.Lock()
	defer a.configMu.Unlock()

	conf, err := config.ReadConfig(a.cfile)
	if err != nil {
		slog.Error("Ignoring invalid config change", "error", err)
		return
	}

	rest := *conf
	rest.Timing = a.config.Timing
	if rest != *a.config {
		slog.Info("Config change needs a restart")
		select {
		case a.ossignal <- syscall.SIGHUP:
		default:
		}
		return
	}
	if conf.Timing != a.config.Timing {
		a.config.Timing = conf.Timing
		a.driver.SetDelays(conf.Timing)
	}
}
