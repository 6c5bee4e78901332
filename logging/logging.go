package logging

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"lautenbacher.net/gosignal/config"
)

// teeWriter either holds log output back in a buffer (while the TUI is
// being set up) or writes it straight to target. Every record also goes
// to file, when one is open.
type teeWriter struct {
	mu        sync.Mutex
	buffer    bytes.Buffer
	target    io.Writer
	file      *os.File
	buffering bool
}

func (w *teeWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var firstErr error
	if w.buffering {
		w.buffer.Write(p)
	} else if w.target != nil {
		if _, err := w.target.Write(p); err != nil {
			firstErr = err
		}
	}
	if w.file != nil {
		if _, err := w.file.Write(p); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return len(p), firstErr
}

var writer = &teeWriter{target: os.Stderr}

// ParseLevel maps DEBUG, INFO, WARN and ERROR (any case) to a slog level.
// Anything else yields INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Init installs the default slog logger. With buffer set, output is held
// back until SetOutput is called.
func Init(cfg config.LogConfig, buffer bool) error {
	w := &teeWriter{buffering: buffer}
	if !buffer {
		w.target = os.Stderr
	}
	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return fmt.Errorf("can't open log file %s: %w", cfg.File, err)
		}
		w.file = file
	}
	writer = w

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// SetOutput flushes buffered records to target and logs live from then on.
func SetOutput(target io.Writer) error {
	writer.mu.Lock()
	defer writer.mu.Unlock()

	if writer.buffer.Len() > 0 {
		if _, err := target.Write(writer.buffer.Bytes()); err != nil {
			return err
		}
		writer.buffer.Reset()
	}
	writer.target = target
	writer.buffering = false
	return nil
}

// BufferOutput stops live output and buffers again.
func BufferOutput() {
	writer.mu.Lock()
	defer writer.mu.Unlock()
	writer.target = nil
	writer.buffering = true
}

// Close closes the log file. Records still buffered for the TUI go to
// stderr, since nobody will ever show them otherwise.
func Close() error {
	writer.mu.Lock()
	defer writer.mu.Unlock()

	var firstErr error
	if writer.target == nil && writer.buffer.Len() > 0 {
		if _, err := os.Stderr.Write(writer.buffer.Bytes()); err != nil {
			firstErr = err
		}
	}
	writer.buffer.Reset()
	if writer.file != nil {
		if err := writer.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		writer.file = nil
	}
	return firstErr
}
