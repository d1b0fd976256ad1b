// Package metrics exposes Prometheus metrics for the scan pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// MetricsNamespace is the namespace for all service metrics.
	MetricsNamespace = "healthchecker"
)

// Metrics holds all Prometheus metrics for the scan pipeline.
type Metrics struct {
	// Scan metrics
	ScansTotal          *prometheus.CounterVec
	ScanDurationSeconds prometheus.Histogram

	// Batch metrics
	BatchRunsTotal   *prometheus.CounterVec
	BatchSizeCurrent prometheus.Gauge

	// Queue metrics
	QueueDepth     *prometheus.GaugeVec
	ItemsRequeued  prometheus.Counter
	ItemsCancelled prometheus.Counter

	// Quota metrics
	QuotaUsed        *prometheus.GaugeVec
	QuotaDeniedTotal *prometheus.CounterVec

	// Discovery metrics
	DiscoveryRunsTotal    *prometheus.CounterVec
	DiscoveryResultsFound prometheus.Counter
}

// New creates and registers all pipeline metrics.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	return &Metrics{
		ScansTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Subsystem: "scan",
				Name:      "attempts_total",
				Help:      "Total scan attempts by outcome",
			},
			[]string{"outcome"},
		),
		ScanDurationSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: MetricsNamespace,
				Subsystem: "scan",
				Name:      "duration_seconds",
				Help:      "Duration of individual provider scans",
				Buckets:   prometheus.DefBuckets,
			},
		),
		BatchRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Subsystem: "batch",
				Name:      "runs_total",
				Help:      "Total batch runs by trigger",
			},
			[]string{"trigger"},
		),
		BatchSizeCurrent: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: MetricsNamespace,
				Subsystem: "batch",
				Name:      "size_current",
				Help:      "Number of items in the currently running batch",
			},
		),
		QueueDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: MetricsNamespace,
				Subsystem: "queue",
				Name:      "depth",
				Help:      "Queue items by status",
			},
			[]string{"status"},
		),
		ItemsRequeued: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Subsystem: "queue",
				Name:      "requeued_total",
				Help:      "Items requeued by retry or reaper",
			},
		),
		ItemsCancelled: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Subsystem: "queue",
				Name:      "cancelled_total",
				Help:      "Pending items cancelled",
			},
		),
		QuotaUsed: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: MetricsNamespace,
				Subsystem: "quota",
				Name:      "used",
				Help:      "Quota units used in the current period",
			},
			[]string{"provider"},
		),
		QuotaDeniedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Subsystem: "quota",
				Name:      "denied_total",
				Help:      "Admissions denied by quota",
			},
			[]string{"provider"},
		),
		DiscoveryRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Subsystem: "discovery",
				Name:      "runs_total",
				Help:      "Discovery runs by outcome",
			},
			[]string{"outcome"},
		),
		DiscoveryResultsFound: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Subsystem: "discovery",
				Name:      "results_total",
				Help:      "Discovery results returned to callers",
			},
		),
	}
}
