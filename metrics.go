package nilq

import (
	"sync/atomic"
	"time"
)

// MetricsCollector receives per-class and per-run measurements.
// Implement this interface to integrate with monitoring systems; the
// metrics/prom package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordClass is called after each completed class.
	RecordClass(s ClassStats)

	// RecordRun is called once per run. err is nil if the run succeeded.
	RecordRun(classes int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordClass(ClassStats)              {}
func (NoopMetricsCollector) RecordRun(int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	Classes      atomic.Int64
	Generators   atomic.Int64
	Eliminated   atomic.Int64
	Rows         atomic.Int64
	ClassNanos   atomic.Int64
	CPUNanos     atomic.Int64
	MaxClassSeen atomic.Int64
	Runs         atomic.Int64
	RunErrors    atomic.Int64
	RunNanos     atomic.Int64
}

// RecordClass implements MetricsCollector.
func (b *BasicMetricsCollector) RecordClass(s ClassStats) {
	b.Classes.Add(1)
	b.Generators.Add(int64(s.NewGens))
	b.Eliminated.Add(int64(s.Eliminated))
	b.Rows.Add(int64(s.Rows))
	b.ClassNanos.Add(s.Elapsed.Nanoseconds())
	b.CPUNanos.Add(s.CPU.Nanoseconds())
	for {
		cur := b.MaxClassSeen.Load()
		if int64(s.Class) <= cur || b.MaxClassSeen.CompareAndSwap(cur, int64(s.Class)) {
			break
		}
	}
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(_ int, duration time.Duration, err error) {
	b.Runs.Add(1)
	b.RunNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RunErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		Classes:       b.Classes.Load(),
		Generators:    b.Generators.Load(),
		Eliminated:    b.Eliminated.Load(),
		Rows:          b.Rows.Load(),
		ClassAvgNanos: b.getAvgClassNanos(),
		CPUNanos:      b.CPUNanos.Load(),
		MaxClass:      b.MaxClassSeen.Load(),
		Runs:          b.Runs.Load(),
		RunErrors:     b.RunErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgClassNanos() int64 {
	count := b.Classes.Load()
	if count == 0 {
		return 0
	}
	return b.ClassNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	Classes       int64
	Generators    int64
	Eliminated    int64
	Rows          int64
	ClassAvgNanos int64
	CPUNanos      int64
	MaxClass      int64
	Runs          int64
	RunErrors     int64
}
