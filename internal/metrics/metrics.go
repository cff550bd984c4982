// Package metrics exposes Prometheus instrumentation for the alert engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/opsdeck/watchdesk/internal/alert"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	// Evaluations counts completed evaluation cycles.
	Evaluations prometheus.Counter

	// Alerts tracks the size of the current alert set by severity.
	Alerts *prometheus.GaugeVec

	// LedgerWriteFailures counts best-effort ledger writes that failed and
	// will be retried by a later cycle.
	LedgerWriteFailures prometheus.Counter
}

// New creates and registers the engine collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "watchdesk",
			Subsystem: "engine",
			Name:      "evaluations_total",
			Help:      "Completed evaluation cycles.",
		}),
		Alerts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "watchdesk",
			Subsystem: "engine",
			Name:      "alerts",
			Help:      "Alerts in the most recent evaluation, by severity.",
		}, []string{"severity"}),
		LedgerWriteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "watchdesk",
			Subsystem: "ledger",
			Name:      "write_failures_total",
			Help:      "Escalation ledger writes that failed and were deferred to a later cycle.",
		}),
	}
	reg.MustRegister(m.Evaluations, m.Alerts, m.LedgerWriteFailures)
	return m
}

// ObserveCycle records one evaluation cycle's outcome.
func (m *Metrics) ObserveCycle(s alert.Summary) {
	m.Evaluations.Inc()
	m.Alerts.WithLabelValues(string(alert.SeverityCritical)).Set(float64(s.Critical))
	m.Alerts.WithLabelValues(string(alert.SeverityHigh)).Set(float64(s.High))
	m.Alerts.WithLabelValues(string(alert.SeverityMedium)).Set(float64(s.Medium))
}
