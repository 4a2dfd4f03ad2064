package monitoring

import (
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const maxResponseSamples = 1000

// Metrics holds application metrics
type Metrics struct {
	RequestCount        int64
	ErrorCount          int64
	AverageResponseTime int64 // in nanoseconds
	StartTime           time.Time

	// Competition activity
	Mutations        int64
	ImportsSucceeded int64
	ImportsFailed    int64
	ImportedRows     int64
	RateLimitBlocks  int64
	LiveConnections  int64

	ResponseTimes      []time.Duration
	ResponseTimesMutex sync.RWMutex

	RequestCountByStatus map[int]int64
	StatusMutex          sync.RWMutex

	ExportsByKind map[string]int64
	ExportsMutex  sync.RWMutex

	sessions func() int
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:            time.Now(),
		ResponseTimes:        make([]time.Duration, 0, maxResponseSamples),
		RequestCountByStatus: make(map[int]int64),
		ExportsByKind:        make(map[string]int64),
	}
}

// TrackSessions reports the live session count in stats
func (m *Metrics) TrackSessions(count func() int) {
	m.sessions = count
}

// IncrementRequest increments the request count
func (m *Metrics) IncrementRequest() {
	atomic.AddInt64(&m.RequestCount, 1)
}

// IncrementError increments the error count
func (m *Metrics) IncrementError() {
	atomic.AddInt64(&m.ErrorCount, 1)
}

// IncrementMutation counts an applied session event
func (m *Metrics) IncrementMutation() {
	atomic.AddInt64(&m.Mutations, 1)
}

// RecordImport counts an import attempt and how many rows it installed
func (m *Metrics) RecordImport(rows int, success bool) {
	if !success {
		atomic.AddInt64(&m.ImportsFailed, 1)
		return
	}
	atomic.AddInt64(&m.ImportsSucceeded, 1)
	atomic.AddInt64(&m.ImportedRows, int64(rows))
}

// RecordExport counts a generated download by kind
func (m *Metrics) RecordExport(kind string) {
	m.ExportsMutex.Lock()
	defer m.ExportsMutex.Unlock()
	m.ExportsByKind[kind]++
}

// IncrementRateLimitBlock counts a request rejected by the limiter
func (m *Metrics) IncrementRateLimitBlock() {
	atomic.AddInt64(&m.RateLimitBlocks, 1)
}

// LiveConnected adjusts the open websocket count by delta
func (m *Metrics) LiveConnected(delta int64) {
	atomic.AddInt64(&m.LiveConnections, delta)
}

// RecordResponseTime records response time for averaging and percentiles
func (m *Metrics) RecordResponseTime(duration time.Duration) {
	current := atomic.LoadInt64(&m.AverageResponseTime)
	newAverage := (current + duration.Nanoseconds()) / 2
	atomic.StoreInt64(&m.AverageResponseTime, newAverage)

	m.ResponseTimesMutex.Lock()
	m.ResponseTimes = append(m.ResponseTimes, duration)
	if len(m.ResponseTimes) > maxResponseSamples {
		m.ResponseTimes = m.ResponseTimes[1:]
	}
	m.ResponseTimesMutex.Unlock()
}

// RecordRequestByStatus records request count by HTTP status code
func (m *Metrics) RecordRequestByStatus(statusCode int) {
	m.StatusMutex.Lock()
	defer m.StatusMutex.Unlock()
	m.RequestCountByStatus[statusCode]++
}

// GetPercentileResponseTime calculates percentile response time
func (m *Metrics) GetPercentileResponseTime(percentile float64) time.Duration {
	m.ResponseTimesMutex.RLock()
	defer m.ResponseTimesMutex.RUnlock()

	if len(m.ResponseTimes) == 0 {
		return 0
	}

	times := make([]time.Duration, len(m.ResponseTimes))
	copy(times, m.ResponseTimes)

	sort.Slice(times, func(i, j int) bool {
		return times[i] < times[j]
	})

	index := int(float64(len(times)-1) * percentile / 100.0)
	if index >= len(times) {
		index = len(times) - 1
	}

	return times[index]
}

// GetStatusCodeDistribution returns request count by status code
func (m *Metrics) GetStatusCodeDistribution() map[int]int64 {
	m.StatusMutex.RLock()
	defer m.StatusMutex.RUnlock()

	distribution := make(map[int]int64, len(m.RequestCountByStatus))
	for code, count := range m.RequestCountByStatus {
		distribution[code] = count
	}
	return distribution
}

// GetExportStats returns download counts by kind
func (m *Metrics) GetExportStats() map[string]int64 {
	m.ExportsMutex.RLock()
	defer m.ExportsMutex.RUnlock()

	stats := make(map[string]int64, len(m.ExportsByKind))
	for kind, count := range m.ExportsByKind {
		stats[kind] = count
	}
	return stats
}

// GetStats returns current metrics statistics
func (m *Metrics) GetStats() map[string]interface{} {
	requests := atomic.LoadInt64(&m.RequestCount)
	errors := atomic.LoadInt64(&m.ErrorCount)
	avgResponseTime := atomic.LoadInt64(&m.AverageResponseTime)

	errorRate := float64(0)
	if requests > 0 {
		errorRate = float64(errors) / float64(requests) * 100
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	sessions := 0
	if m.sessions != nil {
		sessions = m.sessions()
	}

	return map[string]interface{}{
		"uptime_seconds":       time.Since(m.StartTime).Seconds(),
		"total_requests":       requests,
		"error_count":          errors,
		"error_rate_percent":   errorRate,
		"avg_response_time_ms": float64(avgResponseTime) / 1000000,
		"start_time":           m.StartTime.Format(time.RFC3339),

		"p50_response_time_ms":     float64(m.GetPercentileResponseTime(50)) / 1000000,
		"p95_response_time_ms":     float64(m.GetPercentileResponseTime(95)) / 1000000,
		"p99_response_time_ms":     float64(m.GetPercentileResponseTime(99)) / 1000000,
		"status_code_distribution": m.GetStatusCodeDistribution(),

		"active_sessions":   sessions,
		"mutations":         atomic.LoadInt64(&m.Mutations),
		"imports_succeeded": atomic.LoadInt64(&m.ImportsSucceeded),
		"imports_failed":    atomic.LoadInt64(&m.ImportsFailed),
		"imported_rows":     atomic.LoadInt64(&m.ImportedRows),
		"exports":           m.GetExportStats(),
		"rate_limit_blocks": atomic.LoadInt64(&m.RateLimitBlocks),
		"live_connections":  atomic.LoadInt64(&m.LiveConnections),

		"go_goroutines":       runtime.NumGoroutine(),
		"go_gc_count":         mem.NumGC,
		"go_heap_alloc_bytes": mem.HeapAlloc,
		"go_heap_sys_bytes":   mem.HeapSys,
	}
}

// Reset resets all metrics (useful for testing)
func (m *Metrics) Reset() {
	atomic.StoreInt64(&m.RequestCount, 0)
	atomic.StoreInt64(&m.ErrorCount, 0)
	atomic.StoreInt64(&m.AverageResponseTime, 0)
	atomic.StoreInt64(&m.Mutations, 0)
	atomic.StoreInt64(&m.ImportsSucceeded, 0)
	atomic.StoreInt64(&m.ImportsFailed, 0)
	atomic.StoreInt64(&m.ImportedRows, 0)
	atomic.StoreInt64(&m.RateLimitBlocks, 0)

	m.ResponseTimesMutex.Lock()
	m.ResponseTimes = m.ResponseTimes[:0]
	m.ResponseTimesMutex.Unlock()

	m.StatusMutex.Lock()
	m.RequestCountByStatus = make(map[int]int64)
	m.StatusMutex.Unlock()

	m.ExportsMutex.Lock()
	m.ExportsByKind = make(map[string]int64)
	m.ExportsMutex.Unlock()

	m.StartTime = time.Now()
}
