// Package metrics records query timings in a Prometheus registry.
package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Recorder holds the query metrics of one run.
type Recorder struct {
	registry *prometheus.Registry

	queryDuration *prometheus.HistogramVec
	queryRows     *prometheus.CounterVec
	queryErrors   *prometheus.CounterVec
}

// NewRecorder returns a Recorder with its own registry, so parallel tests
// and repeated runs never collide on registration.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "seekdemo_query_duration_seconds",
			Help:    "Query round-trip time, including row materialization.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"table"}),
		queryRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seekdemo_query_rows_total",
			Help: "Rows materialized by queries.",
		}, []string{"table"}),
		queryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seekdemo_query_errors_total",
			Help: "Queries that failed.",
		}, []string{"table"}),
	}
	r.registry.MustRegister(r.queryDuration, r.queryRows, r.queryErrors)
	return r
}

// ObserveQuery records one executed query.
func (r *Recorder) ObserveQuery(table string, elapsed time.Duration, rows int, err error) {
	if r == nil {
		return
	}
	r.queryDuration.WithLabelValues(table).Observe(elapsed.Seconds())
	if err != nil {
		r.queryErrors.WithLabelValues(table).Inc()
		return
	}
	r.queryRows.WithLabelValues(table).Add(float64(rows))
}

// WriteText writes every gathered metric family in the Prometheus text
// exposition format.
func (r *Recorder) WriteText(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
