package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Job metrics, registered on the default registry and exported through the
// /metrics endpoint wired in cmd/server.
var (
	placementsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chargeplan_placements_started_total",
		Help: "Placement jobs accepted for solving.",
	})

	placementsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chargeplan_placements_completed_total",
		Help: "Placement jobs that finished with a mapped result.",
	})

	placementsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chargeplan_placements_failed_total",
		Help: "Placement jobs that ended in an error.",
	})

	quboBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chargeplan_qubo_build_duration_seconds",
		Help:    "Time spent assembling QUBO matrices.",
		Buckets: prometheus.DefBuckets,
	})

	solveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "chargeplan_solve_duration_seconds",
		Help: "Solve time reported by the remote solver.",
		// Hybrid solves run from sub-second to tens of minutes.
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 13),
	})

	quboDimension = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chargeplan_qubo_dimension",
		Help: "Order of the most recently solved QUBO matrix.",
	})
)
