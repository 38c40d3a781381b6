package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/dbsmedya/dicttree/internal/taxonomy"
)

func TestObserveRebuild(t *testing.T) {
	m := New(prometheus.NewRegistry())

	stats := taxonomy.ForestStats{Nodes: 8, Roots: 2, Leaves: 4, MaxDepth: 2}
	m.ObserveRebuild(time.Now(), stats, nil)
	m.ObserveRebuild(time.Now(), stats, &taxonomy.CycleInfo{Promoted: []int64{3, 9}})

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Rebuilds))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.CyclesBroken))
	assert.Equal(t, float64(8), testutil.ToFloat64(m.ForestNodes))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.ForestRoots))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.ForestDepth))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RebuildDuration))
}

func TestObserveEdit(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveEdit("update", nil)
	m.ObserveEdit("update", errors.New("cycle"))
	m.ObserveEdit("update", nil)
	m.ObserveEdit("delete", nil)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Edits.WithLabelValues("update", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Edits.WithLabelValues("update", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Edits.WithLabelValues("delete", "ok")))
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
