package flatten

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fixpointDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "reqflat_fixpoint_duration_seconds",
		Help:    "Time to reach the area/event fixpoint of a world",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1, 10},
	})

	fixpointRounds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "reqflat_fixpoint_rounds",
		Help:    "Propagation rounds that produced at least one update",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
	})

	atomsAllocated = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "reqflat_atoms",
		Help:    "Distinct atoms allocated per world",
		Buckets: []float64{8, 16, 32, 64, 128, 256, 512},
	})

	locationTerms = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "reqflat_location_terms",
		Help:    "Terms in a location's deduplicated DNF before minimization",
		Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64, 128},
	})

	minimizeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "reqflat_minimize_duration_seconds",
		Help:    "Time to minimize one location requirement",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
	})
)
