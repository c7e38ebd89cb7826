package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// panel-building pipeline. Label "source" is one of species, plant,
// temperature.
type Metrics struct {
	RowsLoaded  *prometheus.CounterVec // labels: source
	RowsDropped *prometheus.CounterVec // labels: source, reason
	PanelRows   *prometheus.GaugeVec   // labels: source

	RegionRepairs   prometheus.Counter
	StageDuration   *prometheus.HistogramVec // labels: stage
	PipelineRunning prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RowsLoaded,
		m.RowsDropped,
		m.PanelRows,
		m.RegionRepairs,
		m.StageDuration,
		m.PipelineRunning,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "occurrence_etl",
			Name:      "rows_loaded_total",
			Help:      "Rows read from each input table.",
		}, []string{"source"}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "occurrence_etl",
			Name:      "rows_dropped_total",
			Help:      "Rows excluded during cleaning, by source and reason.",
		}, []string{"source", "reason"}),
		PanelRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "occurrence_etl",
			Name:      "panel_rows",
			Help:      "Rows in the most recently built count panel.",
		}, []string{"source"}),
		RegionRepairs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "occurrence_etl",
			Name:      "region_repairs_total",
			Help:      "Panel rows whose region name was repaired.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "occurrence_etl",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		}, []string{"stage"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "occurrence_etl",
			Name:      "pipeline_running",
			Help:      "1 while a pipeline run is in progress, 0 otherwise.",
		}),
	}
}
