package metrics

import "github.com/prometheus/client_golang/prometheus"

var FetchDurationMetrics = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "pythia_fetch_duration_seconds",
		Help:    "price history fetch duration",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"source"})

var RenderDurationMetrics = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "pythia_render_duration_seconds",
		Help:    "chart rendering duration",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
	})

var DeviationMetrics = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "pythia_deviation",
		Help: "distance between the last close and the last rolling mean",
	}, []string{"symbol"})

var LastCloseMetrics = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "pythia_last_close",
		Help: "last close price",
	}, []string{"symbol"})

var SignalCountMetrics = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "pythia_signals",
		Help: "number of band crossings in the lookback window",
	}, []string{"symbol", "kind"})

var TickerErrorMetrics = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pythia_ticker_errors_total",
		Help: "failed ticker updates",
	}, []string{"symbol", "reason"})

var SlidesMetrics = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "pythia_slides",
		Help: "number of ranked slides of the last generation",
	})

func init() {
	prometheus.MustRegister(
		FetchDurationMetrics,
		RenderDurationMetrics,
		DeviationMetrics,
		LastCloseMetrics,
		SignalCountMetrics,
		TickerErrorMetrics,
		SlidesMetrics,
	)
}
