//go:build !cgo

package chirp

import (
	"log/slog"

	"lautenbacher.net/gosignal/config"
)

type silentPlayer struct{}

func (silentPlayer) Play([]float32) error { return nil }
func (silentPlayer) Close() error         { return nil }

// New returns a Chirper that stays silent; audio needs a cgo build.
func New(cfg config.ChirpConfig) (*Chirper, error) {
	slog.Warn("Chirp: audio support is disabled in this build (requires CGO).")
	return newChirper(cfg, silentPlayer{}), nil
}
