package metrics

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"StockPrep/internal/model"
)

// Metrics holds the Prometheus metrics for pipeline runs.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	RunsTotal       *prometheus.CounterVec // labels: status
	RowsRead        prometheus.Counter
	RowsWritten     prometheus.Counter
	RowsFilled      prometheus.Counter
	RowsDropped     prometheus.Counter
	OutliersFlagged prometheus.Counter
	MissingSessions prometheus.Counter
	RunDuration     prometheus.Histogram
	LastBatchTime   prometheus.Gauge
}

// New creates and registers all metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockprep_runs_total",
			Help: "Symbol pipeline runs by status.",
		}, []string{"status"}),
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockprep_rows_read_total",
			Help: "Raw rows read from source files.",
		}),
		RowsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockprep_rows_written_total",
			Help: "Enriched rows written to processed files.",
		}),
		RowsFilled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockprep_rows_filled_total",
			Help: "Rows with at least one forward-filled field.",
		}),
		RowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockprep_rows_dropped_total",
			Help: "Rows dropped by the fill policy.",
		}),
		OutliersFlagged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockprep_outliers_flagged_total",
			Help: "Rows whose daily return exceeded the outlier threshold.",
		}),
		MissingSessions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockprep_missing_sessions_total",
			Help: "Exchange sessions absent from source files.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stockprep_run_duration_seconds",
			Help:    "Duration of one symbol pipeline run.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		LastBatchTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stockprep_last_batch_timestamp_seconds",
			Help: "Unix time the last batch finished.",
		}),
	}
	reg.MustRegister(m.RunsTotal, m.RowsRead, m.RowsWritten, m.RowsFilled, m.RowsDropped,
		m.OutliersFlagged, m.MissingSessions, m.RunDuration, m.LastBatchTime)
	return m
}

// ObserveRun records one symbol run.
func (m *Metrics) ObserveRun(run *model.RunSummary) {
	if m == nil || run == nil {
		return
	}
	m.RunsTotal.WithLabelValues(string(run.Status)).Inc()
	if run.Status != model.RunOK {
		return
	}
	m.RowsRead.Add(float64(run.Stats.RowsRead))
	m.RowsWritten.Add(float64(run.Stats.RowsOut))
	m.RowsFilled.Add(float64(run.Stats.Filled))
	m.RowsDropped.Add(float64(run.Stats.Dropped))
	m.OutliersFlagged.Add(float64(run.Stats.Outliers))
	m.MissingSessions.Add(float64(run.MissingSessions))
	m.RunDuration.Observe(run.Duration.Seconds())
}

// BatchDone marks the end of a batch.
func (m *Metrics) BatchDone(t time.Time) {
	if m == nil {
		return
	}
	m.LastBatchTime.Set(float64(t.Unix()))
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("[INFO] metrics listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
