// Package metricsprom implements engine.Metrics on top of
// prometheus/client_golang, so the engine package itself stays free of
// a dependency on any particular metrics backend.
package metricsprom

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is a Prometheus-backed engine.Metrics implementation.
type Metrics struct {
	splits      prometheus.Counter
	rewriteTime prometheus.Histogram
	bucketCount prometheus.Gauge
}

// New registers and returns a Metrics instance against reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		splits: factory.NewCounter(prometheus.CounterOpts{
			Name: "docdb_bucket_splits_total",
			Help: "Total number of bucket splits performed.",
		}),
		rewriteTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "docdb_rewrite_duration_seconds",
			Help:    "Duration of insert/update/remove rewrites.",
			Buckets: prometheus.DefBuckets,
		}),
		bucketCount: factory.NewGauge(prometheus.GaugeOpts{
			Name: "docdb_bucket_count",
			Help: "Current number of bucket files tracked by the index.",
		}),
	}
}

func (m *Metrics) RecordSplit() { m.splits.Inc() }

func (m *Metrics) RecordRewrite(durationSeconds float64) { m.rewriteTime.Observe(durationSeconds) }

func (m *Metrics) SetBucketCount(n int) { m.bucketCount.Set(float64(n)) }
