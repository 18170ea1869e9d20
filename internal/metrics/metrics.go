// Package metrics holds the prometheus collectors of the editor.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/slipstream/mango/pkg/flow"
)

// Metrics counts pulls and commands.
type Metrics struct {
	Pulls      *prometheus.CounterVec
	PullErrors *prometheus.CounterVec
	Commands   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Pulls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mango_pulls_total",
				Help: "Total number of node pulls",
			},
			[]string{"type"},
		),
		PullErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mango_pull_errors_total",
				Help: "Node pulls that produced an Error value",
			},
			[]string{"type"},
		),
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mango_commands_total",
				Help: "Graph commands by operation and outcome",
			},
			[]string{"op", "result"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Pulls, m.PullErrors, m.Commands)
	}
	return m
}

// ObservePull implements registry.PullObserver.
func (m *Metrics) ObservePull(nodeType string, out flow.Data) {
	m.Pulls.WithLabelValues(nodeType).Inc()
	if out.IsError() {
		m.PullErrors.WithLabelValues(nodeType).Inc()
	}
}

// ObserveCommand records one command application.
func (m *Metrics) ObserveCommand(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Commands.WithLabelValues(op, result).Inc()
}
