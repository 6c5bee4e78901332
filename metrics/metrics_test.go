package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lautenbacher.net/gosignal/signal"
	"lautenbacher.net/gosignal/util"
)

func TestObserveTransition(t *testing.T) {
	m := New()

	m.ObserveTransition(signal.Transition{To: signal.Open, Mode: signal.Normal, Delay: time.Second})
	m.ObserveTransition(signal.Transition{To: signal.Open, Mode: signal.Normal, Delay: 4 * time.Second})
	m.ObserveTransition(signal.Transition{To: signal.Off, Mode: signal.Emergency, Delay: 2 * time.Second})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("open", "normal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("off", "emergency")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.lastDelay))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.emergency))

	m.SetMode(signal.Normal)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.emergency))
}

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest(util.NewRequest("mqtt", util.Toggle, time.Now()))
	m.ObserveRequest(util.NewRequest("mqtt", util.Toggle, time.Now()))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.modeRequests.WithLabelValues("mqtt", "toggle")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveTransition(signal.Transition{To: signal.Closed, Mode: signal.Normal, Delay: time.Second})

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `gosignal_transitions_total{mode="normal",state="closed"} 1`)
}
