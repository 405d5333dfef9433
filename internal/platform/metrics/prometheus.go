// Package metrics exposes maintenance run metrics through Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements the maintenance run metrics sink using Prometheus.
type Recorder struct {
	runsTotal      *prometheus.CounterVec
	stageDuration  *prometheus.HistogramVec
	tickersFailed  *prometheus.CounterVec
	rowsPromoted   prometheus.Counter
	anomalies      prometheus.Gauge
	lastSuccessful prometheus.Gauge
}

// New creates a recorder registered on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		runsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maintenance_runs_total",
				Help: "Total number of maintenance runs by final status",
			},
			[]string{"status"},
		),
		stageDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "maintenance_stage_duration_seconds",
				Help:    "Duration of maintenance stages in seconds",
				Buckets: []float64{1, 5, 30, 60, 300, 900, 1800, 3600, 7200},
			},
			[]string{"stage"},
		),
		tickersFailed: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maintenance_tickers_failed_total",
				Help: "Tickers that failed in a stage and were skipped",
			},
			[]string{"stage"},
		),
		rowsPromoted: f.NewCounter(prometheus.CounterOpts{
			Name: "maintenance_rows_promoted_total",
			Help: "Price rows merged from staging into production",
		}),
		anomalies: f.NewGauge(prometheus.GaugeOpts{
			Name: "maintenance_staging_anomalies",
			Help: "Anomalous rows found in staging by the last validation",
		}),
		lastSuccessful: f.NewGauge(prometheus.GaugeOpts{
			Name: "maintenance_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run",
		}),
	}
}

// RecordRun records the final status of a run.
func (r *Recorder) RecordRun(status string, finishedAt time.Time) {
	r.runsTotal.WithLabelValues(status).Inc()
	if status == "success" {
		r.lastSuccessful.Set(float64(finishedAt.Unix()))
	}
}

// ObserveStage records how long a stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// AddFailedTickers counts skipped tickers for a stage.
func (r *Recorder) AddFailedTickers(stage string, n int) {
	if n <= 0 {
		return
	}
	r.tickersFailed.WithLabelValues(stage).Add(float64(n))
}

// AddPromotedRows counts rows merged into production.
func (r *Recorder) AddPromotedRows(n int64) {
	if n <= 0 {
		return
	}
	r.rowsPromoted.Add(float64(n))
}

// SetAnomalies records the anomaly count of the last validation.
func (r *Recorder) SetAnomalies(n int64) {
	r.anomalies.Set(float64(n))
}
