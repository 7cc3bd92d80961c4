package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	swapsExecuted   atomic.Uint64
	swapsSimulated  atomic.Uint64
	broadcastErrors atomic.Uint64

	// Remote call latency tracking
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64

	// Gauges
	activeStreams atomic.Int32
	circuitOpen   atomic.Int32 // 1 = open, 0 = closed
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordSwapExecuted records a real, broadcast swap.
func (m *Metrics) RecordSwapExecuted() {
	m.swapsExecuted.Add(1)
}

// RecordSwapSimulated records a swap that degraded to the simulated path.
func (m *Metrics) RecordSwapSimulated() {
	m.swapsSimulated.Add(1)
}

// RecordBroadcastError records a failed submission.
func (m *Metrics) RecordBroadcastError() {
	m.broadcastErrors.Add(1)
}

// RecordRemoteCall records one remote call with its latency.
func (m *Metrics) RecordRemoteCall(latencyNs int64) {
	m.latencySumNs.Add(latencyNs)
	m.latencyCount.Add(1)
}

// IncrementStreams increments active stream connections by 1.
func (m *Metrics) IncrementStreams() {
	m.activeStreams.Add(1)
}

// DecrementStreams decrements active stream connections by 1.
func (m *Metrics) DecrementStreams() {
	m.activeStreams.Add(-1)
}

// SetCircuitState sets the circuit breaker state (true = open).
func (m *Metrics) SetCircuitState(open bool) {
	if open {
		m.circuitOpen.Store(1)
	} else {
		m.circuitOpen.Store(0)
	}
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	SwapsExecuted   uint64
	SwapsSimulated  uint64
	BroadcastErrors uint64
	AvgLatencyNs    int64
	ActiveStreams   int32
	CircuitOpen     bool
	Timestamp       time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.latencyCount.Load()
	if count > 0 {
		avgLatency = m.latencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		SwapsExecuted:   m.swapsExecuted.Load(),
		SwapsSimulated:  m.swapsSimulated.Load(),
		BroadcastErrors: m.broadcastErrors.Load(),
		AvgLatencyNs:    avgLatency,
		ActiveStreams:   m.activeStreams.Load(),
		CircuitOpen:     m.circuitOpen.Load() == 1,
		Timestamp:       time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.swapsExecuted.Store(0)
	m.swapsSimulated.Store(0)
	m.broadcastErrors.Store(0)
	m.latencySumNs.Store(0)
	m.latencyCount.Store(0)
	m.activeStreams.Store(0)
	m.circuitOpen.Store(0)
}
