package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"StockPrep/internal/model"
)

func TestObserveRun(t *testing.T) {
	m := New()
	m.ObserveRun(&model.RunSummary{
		Status:   model.RunOK,
		Stats:    model.CleanStats{RowsRead: 10, RowsOut: 8, Dropped: 2, Outliers: 1},
		Duration: 10 * time.Millisecond,
	})
	m.ObserveRun(&model.RunSummary{Status: model.RunFailed})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("FAILED")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.RowsRead))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RowsDropped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutliersFlagged))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveRun(&model.RunSummary{Status: model.RunOK})
	m.BatchDone(time.Now())
}
