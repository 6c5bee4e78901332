package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lautenbacher.net/gosignal/signal"
	"lautenbacher.net/gosignal/util"
)

// Metrics exposes the signal's behaviour in Prometheus format.
type Metrics struct {
	registry     *prometheus.Registry
	transitions  *prometheus.CounterVec
	modeRequests *prometheus.CounterVec
	emergency    prometheus.Gauge
	lastDelay    prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		transitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gosignal_transitions_total",
				Help: "The total number of state transitions, by target state and mode",
			},
			[]string{"state", "mode"},
		),
		modeRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gosignal_mode_requests_total",
				Help: "The total number of mode requests, by source and kind",
			},
			[]string{"source", "kind"},
		),
		emergency: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "gosignal_emergency_mode",
				Help: "1 while the signal runs the emergency table",
			},
		),
		lastDelay: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "gosignal_step_delay_seconds",
				Help: "Delay returned by the most recent step",
			},
		),
	}
}

func (m *Metrics) ObserveTransition(tr signal.Transition) {
	m.transitions.WithLabelValues(tr.To.String(), tr.Mode.String()).Inc()
	m.lastDelay.Set(tr.Delay.Seconds())
	m.SetMode(tr.Mode)
}

func (m *Metrics) ObserveRequest(r *util.Request) {
	m.modeRequests.WithLabelValues(r.Source, r.Kind.String()).Inc()
}

func (m *Metrics) SetMode(mode signal.Mode) {
	if mode == signal.Emergency {
		m.emergency.Set(1)
	} else {
		m.emergency.Set(0)
	}
}

// Handler serves the registry for /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
