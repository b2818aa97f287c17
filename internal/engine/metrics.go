package engine

import "github.com/prometheus/client_golang/prometheus"

// Op outcomes recorded in metrics.
const (
	OutcomeApplied     = "applied"
	OutcomeViolation   = "violation"
	OutcomeCheckFailed = "check_failed"
)

// Metrics counts ops and runs.
type Metrics struct {
	Ops  *prometheus.CounterVec
	Runs *prometheus.CounterVec
}

// NewMetrics creates the engine counters and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Ops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netmut_ops_total",
				Help: "Total number of mutation ops by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netmut_runs_total",
				Help: "Total number of mutation runs by final status",
			},
			[]string{"status"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Ops, m.Runs)
	}
	return m
}

func (m *Metrics) op(kind, outcome string) {
	if m == nil {
		return
	}
	m.Ops.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) run(status string) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(status).Inc()
}
