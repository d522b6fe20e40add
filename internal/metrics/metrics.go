// Package metrics records chat pipeline measurements.
package metrics

import (
	"time"
)

// Collector receives measurements from the router and its collaborators.
type Collector interface {
	// RecordReply counts one handled message and its end-to-end latency.
	RecordReply(route string, duration time.Duration)
	RecordClassification(label string, confident bool)
	RecordFallbackFailure(reason string)
	RecordStoreError(operation string)
	RecordCircuitState(name string, state CircuitState)
}

// CircuitState mirrors the breaker states without importing gobreaker.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// NoOpCollector discards everything.
type NoOpCollector struct{}

func (NoOpCollector) RecordReply(string, time.Duration)        {}
func (NoOpCollector) RecordClassification(string, bool)       {}
func (NoOpCollector) RecordFallbackFailure(string)            {}
func (NoOpCollector) RecordStoreError(string)                 {}
func (NoOpCollector) RecordCircuitState(string, CircuitState) {}

var _ Collector = NoOpCollector{}
