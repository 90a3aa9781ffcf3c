package progressmetrics

import (
	"context"
	"time"
)

// NoOpMetrics discards every observation.
type NoOpMetrics struct{}

// NewNoop returns metrics that record nothing.
func NewNoop() ProgressMetrics {
	return &NoOpMetrics{}
}

func (n *NoOpMetrics) RecordOperationAttempt(ctx context.Context, operation, service string) {}
func (n *NoOpMetrics) RecordOperationSuccess(ctx context.Context, operation, service string) {}
func (n *NoOpMetrics) RecordOperationFailure(ctx context.Context, operation, service string) {}
func (n *NoOpMetrics) RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration) {
}
func (n *NoOpMetrics) RecordCacheHit(ctx context.Context, region string)         {}
func (n *NoOpMetrics) RecordCacheMiss(ctx context.Context, region string)        {}
func (n *NoOpMetrics) RecordCachePut(ctx context.Context, region string)         {}
func (n *NoOpMetrics) RecordCacheEvict(ctx context.Context, region string)       {}
func (n *NoOpMetrics) RecordInvalidationEvent(ctx context.Context, topic string) {}
