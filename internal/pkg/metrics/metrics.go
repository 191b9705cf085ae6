package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	ClockIns             prometheus.Counter
	ClockOuts            prometheus.Counter
	CorrectionsRequested prometheus.Counter
	BreaksEnforced       prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		ClockIns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "timeledger_clock_ins_total",
			Help: "Total number of clock-in events appended to the ledger",
		}),
		ClockOuts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "timeledger_clock_outs_total",
			Help: "Total number of clock-out events appended to the ledger",
		}),
		CorrectionsRequested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "timeledger_corrections_requested_total",
			Help: "Total number of correction approval requests opened",
		}),
		BreaksEnforced: promauto.NewCounter(prometheus.CounterOpts{
			Name: "timeledger_breaks_enforced_total",
			Help: "Total number of statutory breaks auto-inserted after clock-out",
		}),
	}
}
