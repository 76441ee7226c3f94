package analytics

import (
	"context"
	"sync"
	"time"
)

var _ AnalyticsService = (*MockAnalytics)(nil)

// MockAnalytics records events in memory for tests.
type MockAnalytics struct {
	mu         sync.Mutex
	Plans      []PlanEvent
	Placements []PlacementEvent
	Activity   []DailyActivity
	// Err, when set, is returned by every call.
	Err error
}

// NewMockAnalytics creates a new mock analytics instance
func NewMockAnalytics() *MockAnalytics {
	return &MockAnalytics{}
}

func (m *MockAnalytics) RecordPlan(_ context.Context, ev PlanEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Plans = append(m.Plans, ev)
	return nil
}

func (m *MockAnalytics) RecordPlacement(_ context.Context, ev PlacementEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Placements = append(m.Placements, ev)
	return nil
}

func (m *MockAnalytics) DailyActivity(_ context.Context, from, to time.Time) ([]DailyActivity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]DailyActivity, 0, len(m.Activity))
	for _, d := range m.Activity {
		if !d.Day.Before(from) && d.Day.Before(to) {
			out = append(out, d)
		}
	}
	return out, nil
}

// PlanCount returns the number of recorded plan events.
func (m *MockAnalytics) PlanCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Plans)
}

// PlacementCount returns the number of recorded placement events.
func (m *MockAnalytics) PlacementCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Placements)
}
