// Package ratelimit throttles expensive endpoints per client using token
// buckets from golang.org/x/time/rate.
package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/patrickwarner/openmediaplan/internal/observability"
)

// Config holds the configuration for rate limiting.
type Config struct {
	RequestsPerSecond float64       // sustained rate per client
	Burst             int           // bucket capacity
	Enabled           bool          // whether rate limiting is active
	IdleTTL           time.Duration // buckets unused for this long are evicted by Cleanup
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	hits     int64
	total    int64
}

// ClientLimiter keeps one token bucket per client, created lazily on first
// access.
//
//	limiter := NewClientLimiter(Config{RequestsPerSecond: 2, Burst: 5, Enabled: true}, metrics)
//	if !limiter.Allow("plans", clientIP) {
//	    // reject with 429
//	}
type ClientLimiter struct {
	mu      sync.Mutex
	buckets map[string]*clientBucket
	config  Config
	metrics observability.MetricsRegistry
	now     func() time.Time
}

// NewClientLimiter creates a limiter with the given configuration.
func NewClientLimiter(config Config, metrics observability.MetricsRegistry) *ClientLimiter {
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	return &ClientLimiter{
		buckets: make(map[string]*clientBucket),
		config:  config,
		metrics: metrics,
		now:     time.Now,
	}
}

// Allow reports whether clientID may call endpoint now, consuming a token
// when it may. It always returns true when rate limiting is disabled.
func (l *ClientLimiter) Allow(endpoint, clientID string) bool {
	if !l.config.Enabled {
		return true
	}
	now := l.now()
	key := endpoint + "|" + clientID

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(rate.Limit(l.config.RequestsPerSecond), l.config.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	b.total++
	allowed := b.limiter.AllowN(now, 1)
	if !allowed {
		b.hits++
	}
	l.mu.Unlock()

	if !allowed {
		l.metrics.IncrementRateLimitHits(endpoint)
	}
	return allowed
}

// Cleanup evicts buckets idle for longer than IdleTTL and returns how many
// were removed.
func (l *ClientLimiter) Cleanup() int {
	if l.config.IdleTTL <= 0 {
		return 0
	}
	cutoff := l.now().Add(-l.config.IdleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// Stats contains rate limiting statistics for one endpoint and client.
type Stats struct {
	Key     string  `json:"key"`
	Hits    int64   `json:"hits"`  // rejected requests
	Total   int64   `json:"total"` // all requests
	HitRate float64 `json:"hit_rate"`
}

// String returns a human-readable representation of the statistics.
func (s Stats) String() string {
	return fmt.Sprintf("%s: %d/%d hits (%.2f%%)", s.Key, s.Hits, s.Total, s.HitRate*100)
}

// GetStats returns a snapshot of the statistics of every live bucket.
func (l *ClientLimiter) GetStats() map[string]Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := make(map[string]Stats, len(l.buckets))
	for key, b := range l.buckets {
		s := Stats{Key: key, Hits: b.hits, Total: b.total}
		if b.total > 0 {
			s.HitRate = float64(b.hits) / float64(b.total)
		}
		stats[key] = s
	}
	return stats
}
