// Package metrics exposes Prometheus metrics for forest rebuilds and type edits.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dbsmedya/dicttree/internal/taxonomy"
)

// Metrics tracks rebuild cost, forest shape and edit outcomes.
type Metrics struct {
	RebuildDuration prometheus.Histogram
	Rebuilds        prometheus.Counter
	CyclesBroken    prometheus.Counter
	ForestNodes     prometheus.Gauge
	ForestRoots     prometheus.Gauge
	ForestDepth     prometheus.Gauge
	Edits           *prometheus.CounterVec
}

// New registers all metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RebuildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "dicttree_rebuild_duration_seconds",
			Help:    "Duration of list + build of the type forest",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		Rebuilds: factory.NewCounter(prometheus.CounterOpts{
			Name: "dicttree_rebuilds_total",
			Help: "Total number of forest rebuilds",
		}),
		CyclesBroken: factory.NewCounter(prometheus.CounterOpts{
			Name: "dicttree_cycles_broken_total",
			Help: "Types promoted to root to break parent cycles",
		}),
		ForestNodes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dicttree_forest_nodes",
			Help: "Number of types in the current forest",
		}),
		ForestRoots: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dicttree_forest_roots",
			Help: "Number of root types in the current forest",
		}),
		ForestDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dicttree_forest_max_depth",
			Help: "Deepest level of the current forest, roots at 0",
		}),
		Edits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dicttree_edits_total",
			Help: "Type edits by operation and outcome",
		}, []string{"op", "outcome"}),
	}
}

// ObserveRebuild records one rebuild. Call with time.Now() taken before listing.
func (m *Metrics) ObserveRebuild(start time.Time, stats taxonomy.ForestStats, cycles *taxonomy.CycleInfo) {
	m.RebuildDuration.Observe(time.Since(start).Seconds())
	m.Rebuilds.Inc()
	m.ForestNodes.Set(float64(stats.Nodes))
	m.ForestRoots.Set(float64(stats.Roots))
	m.ForestDepth.Set(float64(stats.MaxDepth))
	if cycles != nil {
		m.CyclesBroken.Add(float64(len(cycles.Promoted)))
	}
}

// ObserveEdit records the outcome of a create, update or delete.
func (m *Metrics) ObserveEdit(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Edits.WithLabelValues(op, outcome).Inc()
}
