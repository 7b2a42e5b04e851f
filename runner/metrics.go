package runner

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for runs and op calls.
type Metrics struct {
	Runs        *prometheus.CounterVec
	RunDuration prometheus.Histogram
	OpCalls     *prometheus.CounterVec
	Sessions    prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolscript_runs_total",
				Help: "Total number of script runs by outcome",
			},
			[]string{"outcome"},
		),
		RunDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "toolscript_run_duration_seconds",
				Help:    "Script run duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
		),
		OpCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolscript_op_calls_total",
				Help: "Total number of host op calls by op and status",
			},
			[]string{"op", "status"},
		),
		Sessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "toolscript_sessions_open",
				Help: "Number of open script sessions",
			},
		),
	}
}

func (m *Metrics) observeRun(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(d.Seconds())
}

func (m *Metrics) observeOpCall(op string, ok bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	m.OpCalls.WithLabelValues(op, status).Inc()
}

func (m *Metrics) sessionOpened() {
	if m != nil {
		m.Sessions.Inc()
	}
}

func (m *Metrics) sessionClosed() {
	if m != nil {
		m.Sessions.Dec()
	}
}
