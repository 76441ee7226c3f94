package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/patrickwarner/openmediaplan/internal/observability"
)

func newTestLimiter(cfg Config, metrics observability.MetricsRegistry) (*ClientLimiter, *time.Time) {
	l := NewClientLimiter(cfg, metrics)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestClientLimiter_Disabled(t *testing.T) {
	l, _ := newTestLimiter(Config{RequestsPerSecond: 1, Burst: 1, Enabled: false}, nil)
	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow("plans", "1.2.3.4"))
	}
	assert.Empty(t, l.GetStats())
}

func TestClientLimiter_BurstThenRefill(t *testing.T) {
	metrics := observability.NewRecordingRegistry()
	l, now := newTestLimiter(Config{RequestsPerSecond: 1, Burst: 3, Enabled: true}, metrics)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("plans", "client-a"), "request %d within burst", i)
	}
	assert.False(t, l.Allow("plans", "client-a"))
	assert.Equal(t, 1, metrics.Count("ratelimit_hits|plans"))

	// Other clients and endpoints have their own buckets.
	assert.True(t, l.Allow("plans", "client-b"))
	assert.True(t, l.Allow("quotes", "client-a"))

	*now = now.Add(time.Second)
	assert.True(t, l.Allow("plans", "client-a"))
	assert.False(t, l.Allow("plans", "client-a"))

	stats := l.GetStats()["plans|client-a"]
	assert.Equal(t, int64(6), stats.Total)
	assert.Equal(t, int64(2), stats.Hits)
	assert.InDelta(t, 2.0/6.0, stats.HitRate, 1e-9)
	assert.Contains(t, stats.String(), "plans|client-a")
}

func TestClientLimiter_Cleanup(t *testing.T) {
	l, now := newTestLimiter(Config{RequestsPerSecond: 1, Burst: 1, Enabled: true, IdleTTL: time.Minute}, nil)
	l.Allow("plans", "old")
	*now = now.Add(2 * time.Minute)
	l.Allow("plans", "fresh")

	assert.Equal(t, 1, l.Cleanup())
	stats := l.GetStats()
	assert.Contains(t, stats, "plans|fresh")
	assert.NotContains(t, stats, "plans|old")
}
