package observability

import (
	"sync"
	"time"
)

// RecordingRegistry is a MetricsRegistry that counts calls so tests can
// assert on them. Keys join the label values with "|".
type RecordingRegistry struct {
	mu       sync.Mutex
	counters map[string]int
	scores   []int
	entries  int
}

// NewRecordingRegistry creates an empty RecordingRegistry.
func NewRecordingRegistry() *RecordingRegistry {
	return &RecordingRegistry{counters: make(map[string]int)}
}

func (m *RecordingRegistry) inc(key string) {
	m.mu.Lock()
	m.counters[key]++
	m.mu.Unlock()
}

// Count returns how many times key was recorded, e.g.
// Count("plans_generated|trafic|none").
func (m *RecordingRegistry) Count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[key]
}

// Scores returns the recorded plan scores in order.
func (m *RecordingRegistry) Scores() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.scores...)
}

// RateCardEntries returns the last value passed to SetRateCardEntries.
func (m *RecordingRegistry) RateCardEntries() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries
}

func (m *RecordingRegistry) IncrementRequests(endpoint, method, status string) {
	m.inc("requests|" + endpoint + "|" + method + "|" + status)
}
func (m *RecordingRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}
func (m *RecordingRegistry) IncrementPlansGenerated(objective, videoNeed string) {
	m.inc("plans_generated|" + objective + "|" + videoNeed)
}
func (m *RecordingRegistry) IncrementPlanErrors(reason string) { m.inc("plan_errors|" + reason) }
func (m *RecordingRegistry) RecordPlanScore(score int) {
	m.mu.Lock()
	m.scores = append(m.scores, score)
	m.mu.Unlock()
}
func (m *RecordingRegistry) IncrementPlanCacheLookups(result string) { m.inc("plan_cache|" + result) }
func (m *RecordingRegistry) IncrementPlacementsQuoted(publication string) {
	m.inc("placements_quoted|" + publication)
}
func (m *RecordingRegistry) IncrementRateCardReloads(status string) {
	m.inc("ratecard_reloads|" + status)
}
func (m *RecordingRegistry) SetRateCardEntries(n int) {
	m.mu.Lock()
	m.entries = n
	m.mu.Unlock()
}
func (m *RecordingRegistry) IncrementRateLimitHits(endpoint string) {
	m.inc("ratelimit_hits|" + endpoint)
}
func (m *RecordingRegistry) IncrementAnalyticsErrors() { m.inc("analytics_errors") }
