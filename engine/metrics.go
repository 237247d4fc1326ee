package engine

import (
	"sync"
	"time"

	"drawdown/domain/entities"
	"drawdown/domain/interfaces"
)

// ProcessingMetrics aggregates batch chunk timings.
type ProcessingMetrics struct {
	AverageProcessingTime time.Duration
	MaxProcessingTime     time.Duration
	TotalProcessingTime   time.Duration
	TotalUpdates          int
}

// performanceMonitor records per-chunk wall time through the injected
// clock so the numbers stay meaningful under a fake clock in tests.
type performanceMonitor struct {
	clock interfaces.Clock

	mu      sync.Mutex
	total   time.Duration
	max     time.Duration
	updates int
}

func newPerformanceMonitor(clock interfaces.Clock) *performanceMonitor {
	return &performanceMonitor{clock: clock}
}

func (m *performanceMonitor) recordChunk(elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total += elapsed
	m.updates++
	if elapsed > m.max {
		m.max = elapsed
	}
}

func (m *performanceMonitor) metrics() ProcessingMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := ProcessingMetrics{
		MaxProcessingTime:   m.max,
		TotalProcessingTime: m.total,
		TotalUpdates:        m.updates,
	}
	if m.updates > 0 {
		out.AverageProcessingTime = m.total / time.Duration(m.updates)
	}
	return out
}

func (m *performanceMonitor) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total = 0
	m.max = 0
	m.updates = 0
}

// Degradation cutoffs for adaptive batch sizing.
const (
	degradedAvgChunkTime = 16 * time.Millisecond
	degradedMaxChunkTime = 50 * time.Millisecond
	relaxedAvgChunkTime  = 8 * time.Millisecond
)

// IsPerformanceDegraded reports whether chunk timings indicate the host
// is falling behind.
func IsPerformanceDegraded(m ProcessingMetrics) bool {
	return m.AverageProcessingTime > degradedAvgChunkTime || m.MaxProcessingTime > degradedMaxChunkTime
}

// OptimalBatchSize shrinks a struggling batch size by a quarter and grows
// a comfortable one by a quarter, staying inside the configured bounds.
func OptimalBatchSize(current int, m ProcessingMetrics) int {
	if IsPerformanceDegraded(m) {
		return entities.SafeBatchSize(current * 3 / 4)
	}
	if m.TotalUpdates > 0 && m.AverageProcessingTime < relaxedAvgChunkTime {
		return entities.SafeBatchSize(current * 5 / 4)
	}
	return current
}
