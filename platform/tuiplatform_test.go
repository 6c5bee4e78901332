package platform

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lautenbacher.net/gosignal/config"
	"lautenbacher.net/gosignal/logging"
	"lautenbacher.net/gosignal/signal"
)

func TestLampText(t *testing.T) {
	for _, lit := range lamps {
		t.Run(lit.color.String(), func(t *testing.T) {
			text := lampText(lit.color)
			for _, lamp := range lamps {
				if lamp.color == lit.color {
					assert.Contains(t, text, lamp.lit)
					assert.NotContains(t, text, lamp.dark)
				} else {
					assert.Contains(t, text, lamp.dark)
					assert.NotContains(t, text, lamp.lit)
				}
			}
			assert.Equal(t, 2*len(lamps), strings.Count(text, "\n"))
		})
	}

	dark := lampText(signal.None)
	for _, lamp := range lamps {
		assert.NotContains(t, dark, lamp.lit)
	}
}

func TestStatusText(t *testing.T) {
	text := statusText(signal.Emergency, signal.Closing, true)
	assert.Contains(t, text, "emergency")
	assert.Contains(t, text, "closing")
	assert.Contains(t, text, "night flash")

	assert.NotContains(t, statusText(signal.Normal, signal.Open, false), "night flash")
}

func TestTUIPlatform_StopHandsLoggingBackToStderr(t *testing.T) {
	require.NoError(t, logging.Init(config.LogConfig{Level: "INFO", Format: "text"}, true))

	var pane bytes.Buffer
	require.NoError(t, logging.SetOutput(&pane))
	slog.Info("Running")

	conf := config.Default()
	p := NewTUIPlatform(&conf, make(chan os.Signal, 1))
	p.Stop()
	slog.Info("Exiting...")

	oldStderr := os.Stderr
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stderr = w
	closeErr := logging.Close()
	w.Close()
	os.Stderr = oldStderr
	captured, _ := io.ReadAll(r)

	require.NoError(t, closeErr)
	assert.Contains(t, pane.String(), "Running")
	assert.NotContains(t, pane.String(), "Exiting...", "the pane is gone after Stop")
	assert.Contains(t, string(captured), "Exiting...")
}
