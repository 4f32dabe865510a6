package otel

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/metric"
)

var (
	initMetricsOnce     sync.Once
	mutationsCounter    metric.Int64Counter
	changeEventsCounter metric.Int64Counter
	droppedEvents       metric.Int64Counter
	snapshotCounter     metric.Int64Counter
	sseConnectionsGauge metric.Int64ObservableGauge
	sseConnections      int64
	sseConnectionsMu    sync.Mutex
)

// InitMetrics creates the meter instruments. Safe to call multiple times;
// only runs once. Call after InitMeterProvider.
func InitMetrics(ctx context.Context) error {
	var err error
	initMetricsOnce.Do(func() {
		m := Meter()
		mutationsCounter, err = m.Int64Counter("opsboard_mutations_total", metric.WithDescription("Total mutation dispatches by operation and outcome"))
		if err != nil {
			return
		}
		changeEventsCounter, err = m.Int64Counter("opsboard_change_events_total", metric.WithDescription("Total change events published to the hub"))
		if err != nil {
			return
		}
		droppedEvents, err = m.Int64Counter("opsboard_change_events_dropped_total", metric.WithDescription("Change events dropped for slow subscribers"))
		if err != nil {
			return
		}
		snapshotCounter, err = m.Int64Counter("opsboard_snapshot_recomputes_total", metric.WithDescription("Metric snapshot recomputes"))
		if err != nil {
			return
		}
		sseConnectionsGauge, err = m.Int64ObservableGauge("opsboard_sse_connections", metric.WithDescription("Current SSE subscriber count"))
		if err != nil {
			return
		}
		_, err = m.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
			sseConnectionsMu.Lock()
			n := sseConnections
			sseConnectionsMu.Unlock()
			o.ObserveInt64(sseConnectionsGauge, n)
			return nil
		}, sseConnectionsGauge)
		if err != nil {
			return
		}
	})
	return err
}

// RecordMutation records one mutation dispatch.
func RecordMutation(ctx context.Context, operation, outcome string) {
	if mutationsCounter == nil {
		return
	}
	mutationsCounter.Add(ctx, 1, metric.WithAttributes(
		AttrOperation.String(operation),
		AttrOutcome.String(outcome),
	))
}

// RecordChangeEvent records one change event published to the hub.
func RecordChangeEvent(ctx context.Context, table, kind string) {
	if changeEventsCounter == nil {
		return
	}
	changeEventsCounter.Add(ctx, 1, metric.WithAttributes(
		AttrTable.String(table),
		AttrKind.String(kind),
	))
}

// RecordDroppedEvent records one event dropped for a slow subscriber.
func RecordDroppedEvent(ctx context.Context) {
	if droppedEvents != nil {
		droppedEvents.Add(ctx, 1)
	}
}

// RecordSnapshotRecompute records one snapshot recompute.
func RecordSnapshotRecompute(ctx context.Context) {
	if snapshotCounter != nil {
		snapshotCounter.Add(ctx, 1)
	}
}

// AddSSEConnection adds 1 to the SSE connection gauge (call on subscribe).
func AddSSEConnection() {
	sseConnectionsMu.Lock()
	sseConnections++
	sseConnectionsMu.Unlock()
}

// RemoveSSEConnection subtracts 1 from the SSE connection gauge (call on unsubscribe).
func RemoveSSEConnection() {
	sseConnectionsMu.Lock()
	sseConnections--
	if sseConnections < 0 {
		sseConnections = 0
	}
	sseConnectionsMu.Unlock()
}
