package interfaces

import "time"

// Counter is a monotonically increasing meter.
//
//go:generate moq -stub -out mock/counter.go -pkg mock . Counter
type Counter interface {
	Inc()
	Add(v float64)
}

// Timer records durations.
//
//go:generate moq -stub -out mock/timer.go -pkg mock . Timer
type Timer interface {
	Record(d time.Duration)
}

// Summary records arbitrary observations (sizes, counts).
//
//go:generate moq -stub -out mock/summary.go -pkg mock . Summary
type Summary interface {
	Record(v float64)
}

// MeterRegistry creates meters by name and tags. The same name and tags return the same meter.
//
// Implemented by adapters/prommetrics.
//
//go:generate moq -stub -out mock/metrics.go -pkg mock . MeterRegistry
type MeterRegistry interface {
	Counter(name string, tags map[string]string) Counter
	Timer(name string, tags map[string]string) Timer
	Summary(name string, tags map[string]string) Summary
}
