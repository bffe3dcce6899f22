// Package telemetry exposes Prometheus collectors for the scanner.
package telemetry

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fetchDurationSeconds *prometheus.HistogramVec
	fetchBytesTotal      prometheus.Counter
	pagesTestedTotal     prometheus.Counter
	recordsFoundTotal    prometheus.Counter
	activePipelines      prometheus.Gauge

	once sync.Once
)

// Init registers the Prometheus collectors. It is safe to call more than
// once; the Observe helpers call it lazily.
func Init() {
	once.Do(func() {
		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "catalog_fetch_duration_seconds",
				Help:    "Histogram of catalog page fetch latencies, labeled by outcome.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5},
			},
			[]string{"outcome"},
		)

		fetchBytesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "catalog_fetch_bytes_total",
				Help: "Total bytes fetched from the catalog.",
			},
		)

		pagesTestedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "scanner_pages_tested_total",
				Help: "Total candidate identifiers pushed through the pipeline.",
			},
		)

		recordsFoundTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "scanner_records_found_total",
				Help: "Total concert records successfully extracted.",
			},
		)

		activePipelines = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "scanner_active_pipelines",
				Help: "Number of fetch pipelines currently in flight.",
			},
		)
	})
}

// Handler returns an http.Handler exposing the Prometheus registry.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}

// ObserveFetch records one fetch attempt.
func ObserveFetch(outcome string, duration time.Duration, bytesFetched int) {
	Init()
	fetchDurationSeconds.WithLabelValues(outcome).Observe(duration.Seconds())
	if bytesFetched > 0 {
		fetchBytesTotal.Add(float64(bytesFetched))
	}
}

// ObservePageTested increments the tested-candidate counter.
func ObservePageTested() {
	Init()
	pagesTestedTotal.Inc()
}

// ObserveRecordFound increments the found-record counter.
func ObserveRecordFound() {
	Init()
	recordsFoundTotal.Inc()
}

// IncActivePipelines increments the in-flight pipeline gauge.
func IncActivePipelines() {
	Init()
	activePipelines.Inc()
}

// DecActivePipelines decrements the in-flight pipeline gauge.
func DecActivePipelines() {
	Init()
	activePipelines.Dec()
}
