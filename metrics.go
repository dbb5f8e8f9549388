package warpcol

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordTranspose is called after each transpose call.
	// rows and cols describe the input shape, duration is the total time
	// taken, err is nil if successful.
	RecordTranspose(rows, cols int, duration time.Duration, err error)

	// RecordUnpack is called after each mask unpack call.
	RecordUnpack(length int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordTranspose(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordUnpack(int, time.Duration, error)         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	TransposeCount      atomic.Int64
	TransposeErrors     atomic.Int64
	TransposeTotalNanos atomic.Int64
	UnpackCount         atomic.Int64
	UnpackErrors        atomic.Int64
	UnpackTotalNanos    atomic.Int64
}

func (m *BasicMetricsCollector) RecordTranspose(_, _ int, duration time.Duration, err error) {
	m.TransposeCount.Add(1)
	m.TransposeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		m.TransposeErrors.Add(1)
	}
}

func (m *BasicMetricsCollector) RecordUnpack(_ int, duration time.Duration, err error) {
	m.UnpackCount.Add(1)
	m.UnpackTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		m.UnpackErrors.Add(1)
	}
}
