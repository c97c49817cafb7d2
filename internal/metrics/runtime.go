package metrics

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RegisterRuntime reports goroutine, heap and GC statistics plus process
// uptime on every collection.
func RegisterRuntime(meter metric.Meter) error {
	start := time.Now()

	goroutines, err := meter.Int64ObservableGauge("runtime.go.goroutines",
		metric.WithDescription("Number of goroutines"), metric.WithUnit("{goroutine}"))
	if err != nil {
		return err
	}
	heapAlloc, err := meter.Int64ObservableGauge("runtime.go.mem.heap_alloc",
		metric.WithDescription("Bytes of allocated heap objects"), metric.WithUnit("By"))
	if err != nil {
		return err
	}
	heapObjects, err := meter.Int64ObservableGauge("runtime.go.mem.heap_objects",
		metric.WithDescription("Number of allocated heap objects"), metric.WithUnit("{object}"))
	if err != nil {
		return err
	}
	gcCount, err := meter.Int64ObservableCounter("runtime.go.gc.count",
		metric.WithDescription("Number of completed GC cycles"), metric.WithUnit("{gc}"))
	if err != nil {
		return err
	}
	uptime, err := meter.Float64ObservableCounter("service.uptime",
		metric.WithDescription("Service uptime in seconds"), metric.WithUnit("s"))
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(
		func(ctx context.Context, observer metric.Observer) error {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			observer.ObserveInt64(goroutines, int64(runtime.NumGoroutine()))
			observer.ObserveInt64(heapAlloc, int64(m.HeapAlloc))
			observer.ObserveInt64(heapObjects, int64(m.HeapObjects))
			observer.ObserveInt64(gcCount, int64(m.NumGC))
			observer.ObserveFloat64(uptime, time.Since(start).Seconds())
			return nil
		},
		goroutines, heapAlloc, heapObjects, gcCount, uptime,
	)
	return err
}
