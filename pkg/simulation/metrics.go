package simulation

import (
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	phaseLabel   = "phase"
	errTypeLabel = "error_type"
)

var (
	ticks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boids_ticks_total",
		Help: "The number of completed simulation ticks.",
	})

	tickPhaseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "boids_tick_duration_seconds",
		Help:    "The time spent in each phase of a tick.",
		Buckets: prometheus.ExponentialBuckets(0.00005, 2, 16),
	}, []string{
		phaseLabel,
	})

	indexNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "boids_index_nodes",
		Help: "The number of nodes in the spatial index after the last tick.",
	})

	indexValues = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "boids_index_values",
		Help: "The number of agents stored in the spatial index after the last tick.",
	})

	indexDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "boids_index_depth",
		Help: "The depth of the deepest node of the spatial index after the last tick.",
	})

	reindexRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boids_reindex_rejected_total",
		Help: "The agents dropped from the index because they left the world.",
	})

	faults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boids_faults_total",
		Help: "The internal faults that halted a simulation.",
	}, []string{
		errTypeLabel,
	})
)

func instrumentPhase(phase Phase, d time.Duration) {
	tickPhaseDuration.With(prometheus.Labels{
		phaseLabel: phase.String(),
	}).Observe(d.Seconds())
}

func instrumentTick(r Report) {
	ticks.Inc()
	indexNodes.Set(float64(r.Index.Nodes))
	indexValues.Set(float64(r.Index.Values))
	indexDepth.Set(float64(r.Index.MaxDepth))
	if r.Rejected > 0 {
		reindexRejected.Add(float64(r.Rejected))
	}
}

func instrumentFault(err error) {
	faults.
		With(prometheus.Labels{
			errTypeLabel: errors.Type(err),
		}).
		Inc()
}
