//go:build cgo

package chirp

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"lautenbacher.net/gosignal/config"
)

var (
	paMutex       sync.Mutex
	paInitialized bool
)

type portaudioPlayer struct {
	stream *portaudio.Stream
	buffer []float32
}

// New opens the default audio output and returns a Chirper playing on it.
func New(cfg config.ChirpConfig) (*Chirper, error) {
	paMutex.Lock()
	defer paMutex.Unlock()

	if !paInitialized {
		if err := portaudio.Initialize(); err != nil {
			return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
		}
		paInitialized = true
	}

	tone := Tone(cfg.SampleRate, cfg.Frequency, cfg.Volume, cfg.ToneLength)
	p := &portaudioPlayer{buffer: make([]float32, len(tone))}
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(cfg.SampleRate), len(p.buffer), p.buffer)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio output: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("failed to start audio output: %w", err)
	}
	p.stream = stream
	return newChirper(cfg, p), nil
}

func (p *portaudioPlayer) Play(samples []float32) error {
	copy(p.buffer, samples)
	return p.stream.Write()
}

func (p *portaudioPlayer) Close() error {
	if err := p.stream.Stop(); err != nil {
		p.stream.Close()
		return err
	}
	if err := p.stream.Close(); err != nil {
		return err
	}

	paMutex.Lock()
	defer paMutex.Unlock()
	if paInitialized {
		paInitialized = false
		return portaudio.Terminate()
	}
	return nil
}
