package chirp

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"lautenbacher.net/gosignal/config"
)

// player outputs one block of mono float32 samples and returns when it
// has been queued.
type player interface {
	Play(samples []float32) error
	Close() error
}

// Chirper is an accessible pedestrian signal: it ticks fast while the
// signal shows green, slowly on yellow and red, and is silent while the
// lamps are off. It implements signal.Actuator.
type Chirper struct {
	cfg      config.ChirpConfig
	tone     []float32
	player   player
	mu       sync.Mutex
	interval time.Duration
	wake     chan struct{}
	stop     chan struct{}
	wg       sync.WaitGroup
}

func newChirper(cfg config.ChirpConfig, p player) *Chirper {
	return &Chirper{
		cfg:    cfg,
		tone:   Tone(cfg.SampleRate, cfg.Frequency, cfg.Volume, cfg.ToneLength),
		player: p,
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
	}
}

// Tone synthesises a sine burst of the given length with a short linear
// fade in and out so it does not click.
func Tone(sampleRate int, frequency, volume float64, length time.Duration) []float32 {
	n := int(float64(sampleRate) * length.Seconds())
	if n <= 0 {
		return nil
	}
	fade := n / 10
	samples := make([]float32, n)
	for i := range samples {
		amp := volume
		if fade > 0 {
			if i < fade {
				amp *= float64(i) / float64(fade)
			} else if i >= n-fade {
				amp *= float64(n-1-i) / float64(fade)
			}
		}
		samples[i] = float32(amp * math.Sin(2*math.Pi*frequency*float64(i)/float64(sampleRate)))
	}
	return samples
}

func (c *Chirper) ShowGreen()  { c.setInterval(c.cfg.WalkInterval) }
func (c *Chirper) ShowYellow() { c.setInterval(c.cfg.WaitInterval) }
func (c *Chirper) ShowRed()    { c.setInterval(c.cfg.WaitInterval) }
func (c *Chirper) AllOff()     { c.setInterval(0) }

func (c *Chirper) setInterval(d time.Duration) {
	c.mu.Lock()
	changed := c.interval != d
	c.interval = d
	c.mu.Unlock()
	if changed {
		select {
		case c.wake <- struct{}{}:
		default:
		}
	}
}

func (c *Chirper) currentInterval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interval
}

// Start runs the ticking loop in its own goroutine.
func (c *Chirper) Start() {
	c.wg.Add(1)
	go c.run()
}

// Stop ends the loop and releases the audio device.
func (c *Chirper) Stop() {
	close(c.stop)
	c.wg.Wait()
	if err := c.player.Close(); err != nil {
		slog.Error("Error closing audio output", "error", err)
	}
}

func (c *Chirper) run() {
	defer c.wg.Done()
	for {
		interval := c.currentInterval()
		if interval == 0 {
			select {
			case <-c.wake:
				continue
			case <-c.stop:
				slog.Info("Ending chirp go-routine...")
				return
			}
		}

		if err := c.player.Play(c.tone); err != nil {
			slog.Warn("Chirp playback failed", "error", err)
		}

		select {
		case <-time.After(interval):
		case <-c.wake:
		case <-c.stop:
			slog.Info("Ending chirp go-routine...")
			return
		}
	}
}
