// Package progressmetrics records progress engine operation and cache metrics.
package progressmetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ProgressMetrics is the metrics surface of the progress module.
type ProgressMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)

	RecordCacheHit(ctx context.Context, region string)
	RecordCacheMiss(ctx context.Context, region string)
	RecordCachePut(ctx context.Context, region string)
	RecordCacheEvict(ctx context.Context, region string)

	RecordInvalidationEvent(ctx context.Context, topic string)
}

type prometheusMetrics struct {
	operations   *prometheus.CounterVec
	durations    *prometheus.HistogramVec
	cache        *prometheus.CounterVec
	invalidation *prometheus.CounterVec
}

// NewPrometheus registers the progress collectors on reg.
func NewPrometheus(reg prometheus.Registerer, namespace string) (ProgressMetrics, error) {
	m := &prometheusMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "progress",
			Name:      "operations_total",
			Help:      "Progress service operations by outcome.",
		}, []string{"service", "operation", "outcome"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "progress",
			Name:      "operation_duration_seconds",
			Help:      "Progress service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "operation"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "progress",
			Name:      "cache_events_total",
			Help:      "Cache lookups and writes by region and event.",
		}, []string{"region", "event"}),
		invalidation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "progress",
			Name:      "invalidation_events_total",
			Help:      "Cache invalidation events consumed by topic.",
		}, []string{"topic"}),
	}

	for _, c := range []prometheus.Collector{m.operations, m.durations, m.cache, m.invalidation} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *prometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(service, operation, "attempt").Inc()
}

func (m *prometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(service, operation, "success").Inc()
}

func (m *prometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(service, operation, "failure").Inc()
}

func (m *prometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	m.durations.WithLabelValues(service, operation).Observe(duration.Seconds())
}

func (m *prometheusMetrics) RecordCacheHit(_ context.Context, region string) {
	m.cache.WithLabelValues(region, "hit").Inc()
}

func (m *prometheusMetrics) RecordCacheMiss(_ context.Context, region string) {
	m.cache.WithLabelValues(region, "miss").Inc()
}

func (m *prometheusMetrics) RecordCachePut(_ context.Context, region string) {
	m.cache.WithLabelValues(region, "put").Inc()
}

func (m *prometheusMetrics) RecordCacheEvict(_ context.Context, region string) {
	m.cache.WithLabelValues(region, "evict").Inc()
}

func (m *prometheusMetrics) RecordInvalidationEvent(_ context.Context, topic string) {
	m.invalidation.WithLabelValues(topic).Inc()
}
