package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu            sync.Mutex
	requestCount  map[string]int64
	errorCount    map[string]int64
	decisionCount map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:  make(map[string]int64),
		errorCount:    make(map[string]int64),
		decisionCount: make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordDecision counts access-decision outcomes by reason.
func (m *Metrics) RecordDecision(reason string, allowed bool) {
	if m == nil {
		return
	}
	key := reason + "|" + strconv.FormatBool(allowed)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisionCount[key]++
}

// DecisionCount returns the counter for a reason/outcome pair.
func (m *Metrics) DecisionCount(reason string, allowed bool) int64 {
	if m == nil {
		return 0
	}
	key := reason + "|" + strconv.FormatBool(allowed)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.decisionCount[key]
}
