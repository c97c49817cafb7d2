package metrics

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DependencyMetrics tracks readiness checks against external dependencies.
type DependencyMetrics struct {
	up           metric.Int64ObservableGauge
	responseTime metric.Float64Histogram

	mu        sync.Mutex
	available map[string]bool
}

func NewDependencyMetrics(meter metric.Meter) (*DependencyMetrics, error) {
	dm := &DependencyMetrics{available: map[string]bool{}}

	var err error
	dm.up, err = meter.Int64ObservableGauge(
		"dependency.up",
		metric.WithDescription("Dependency availability status (1=up, 0=down)"),
		metric.WithUnit("{status}"),
	)
	if err != nil {
		return nil, err
	}

	// Buckets: 1ms .. 5s
	dm.responseTime, err = meter.Float64Histogram(
		"dependency.response_time",
		metric.WithDescription("Dependency health check response time"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return nil, err
	}

	_, err = meter.RegisterCallback(
		func(ctx context.Context, observer metric.Observer) error {
			dm.mu.Lock()
			defer dm.mu.Unlock()
			for name, ok := range dm.available {
				value := int64(0)
				if ok {
					value = 1
				}
				observer.ObserveInt64(dm.up, value, metric.WithAttributes(attribute.String("dependency", name)))
			}
			return nil
		},
		dm.up,
	)
	if err != nil {
		return nil, err
	}

	return dm, nil
}

// RecordCheck records one check of dependency and remembers its outcome.
func (dm *DependencyMetrics) RecordCheck(ctx context.Context, dependency string, duration time.Duration, err error) {
	if dm == nil || dm.responseTime == nil {
		return
	}

	dm.responseTime.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("dependency", dependency)))

	dm.mu.Lock()
	dm.available[dependency] = err == nil
	dm.mu.Unlock()
}
