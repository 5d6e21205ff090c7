package monitoring

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds application counters
type Metrics struct {
	RequestCount       int64
	ErrorCount         int64
	SessionsStarted    int64
	SessionsCompleted  int64
	AnswersProcessed   int64
	AnswersRejected    int64
	NarrativeCalls     int64
	NarrativeFallbacks int64
	RateLimitBlocks    int64
	StartTime          time.Time

	// Status code tracking
	RequestCountByStatus map[int]int64
	statusMutex          sync.RWMutex
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:            time.Now(),
		RequestCountByStatus: make(map[int]int64),
	}
}

func (m *Metrics) IncrementRequest()           { atomic.AddInt64(&m.RequestCount, 1) }
func (m *Metrics) IncrementError()             { atomic.AddInt64(&m.ErrorCount, 1) }
func (m *Metrics) IncrementSessionStarted()    { atomic.AddInt64(&m.SessionsStarted, 1) }
func (m *Metrics) IncrementSessionCompleted()  { atomic.AddInt64(&m.SessionsCompleted, 1) }
func (m *Metrics) IncrementAnswerProcessed()   { atomic.AddInt64(&m.AnswersProcessed, 1) }
func (m *Metrics) IncrementAnswerRejected()    { atomic.AddInt64(&m.AnswersRejected, 1) }
func (m *Metrics) IncrementNarrativeCall()     { atomic.AddInt64(&m.NarrativeCalls, 1) }
func (m *Metrics) IncrementNarrativeFallback() { atomic.AddInt64(&m.NarrativeFallbacks, 1) }
func (m *Metrics) IncrementRateLimitBlock()    { atomic.AddInt64(&m.RateLimitBlocks, 1) }

// RecordStatus tracks a response status code
func (m *Metrics) RecordStatus(code int) {
	m.statusMutex.Lock()
	defer m.statusMutex.Unlock()
	m.RequestCountByStatus[code]++
}

// Snapshot returns a serializable view of the current counters
func (m *Metrics) Snapshot() map[string]interface{} {
	m.statusMutex.RLock()
	byStatus := make(map[int]int64, len(m.RequestCountByStatus))
	for k, v := range m.RequestCountByStatus {
		byStatus[k] = v
	}
	m.statusMutex.RUnlock()

	return map[string]interface{}{
		"request_count":       atomic.LoadInt64(&m.RequestCount),
		"error_count":         atomic.LoadInt64(&m.ErrorCount),
		"sessions_started":    atomic.LoadInt64(&m.SessionsStarted),
		"sessions_completed":  atomic.LoadInt64(&m.SessionsCompleted),
		"answers_processed":   atomic.LoadInt64(&m.AnswersProcessed),
		"answers_rejected":    atomic.LoadInt64(&m.AnswersRejected),
		"narrative_calls":     atomic.LoadInt64(&m.NarrativeCalls),
		"narrative_fallbacks": atomic.LoadInt64(&m.NarrativeFallbacks),
		"rate_limit_blocks":   atomic.LoadInt64(&m.RateLimitBlocks),
		"requests_by_status":  byStatus,
		"uptime_seconds":      time.Since(m.StartTime).Seconds(),
	}
}
