// Package metrics exposes Prometheus counters for turn-taking outcomes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bubblevoice"

// Metrics bundles the pipeline counters against one registry.
type Metrics struct {
	registry *prometheus.Registry

	TurnsCompleted     prometheus.Counter
	Interruptions      prometheus.Counter
	EchoSuppressed     prometheus.Counter
	StaleTimerDrops    prometheus.Counter
	VadGateTimeouts    prometheus.Counter
	GenerationFailures prometheus.Counter
}

// New registers the pipeline counters on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		TurnsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_completed_total",
			Help:      "Total user-utterance to system-response cycles completed",
		}),
		Interruptions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interruptions_total",
			Help:      "Total cascade teardowns triggered by user speech while busy",
		}),
		EchoSuppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "echo_suppressed_total",
			Help:      "Total transcription fragments classified as echo and dropped",
		}),
		StaleTimerDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_timer_drops_total",
			Help:      "Total timer callbacks discarded by epoch mismatch",
		}),
		VadGateTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vad_gate_timeouts_total",
			Help:      "Total VAD gates that hit the safety-valve wait limit",
		}),
		GenerationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_failures_total",
			Help:      "Total abandoned turns due to response generation failure or timeout",
		}),
	}

	reg.MustRegister(
		m.TurnsCompleted,
		m.Interruptions,
		m.EchoSuppressed,
		m.StaleTimerDrops,
		m.VadGateTimeouts,
		m.GenerationFailures,
	)
	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
