package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// total requests per endpoint, method and status code
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaplan_requests_total",
			Help: "Total API requests received",
		},
		[]string{"endpoint", "method", "status"},
	)

	// request latency in seconds per endpoint/method
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediaplan_request_duration_seconds",
			Help:    "Histogram of request latencies",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	// media plans generated, by objective and video need
	PlansGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaplan_plans_generated_total",
			Help: "Total media plans generated",
		},
		[]string{"objective", "video_need"},
	)

	// rejected plan requests, by reason
	PlanErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaplan_plan_errors_total",
			Help: "Total plan requests that could not be computed",
		},
		[]string{"reason"},
	)

	// distribution of plan performance scores
	PlanScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mediaplan_plan_score",
			Help:    "Histogram of plan performance scores",
			Buckets: prometheus.LinearBuckets(25, 5, 16),
		},
	)

	// plan cache lookups, by result (hit, miss, error)
	PlanCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaplan_plan_cache_lookups_total",
			Help: "Total plan cache lookups",
		},
		[]string{"result"},
	)

	// placements priced, by publication
	PlacementsQuoted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaplan_placements_quoted_total",
			Help: "Total placements priced",
		},
		[]string{"publication"},
	)

	// rate card reload attempts, by status
	RateCardReloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaplan_ratecard_reloads_total",
			Help: "Total rate card reload attempts",
		},
		[]string{"status"},
	)

	// priced entries in the active rate card
	RateCardEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediaplan_ratecard_entries",
			Help: "Number of priced sizes in the active rate card",
		},
	)

	// rate limit hits per endpoint
	RateLimitHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaplan_ratelimit_hits_total",
			Help: "Total rate limited requests per endpoint",
		},
		[]string{"endpoint"},
	)

	// number of planning events that could not be written to analytics
	AnalyticsErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mediaplan_analytics_errors_total",
			Help: "Total analytics write errors",
		},
	)
)

func init() {
	// register all metrics
	prometheus.MustRegister(
		RequestCount,
		RequestLatency,
		PlansGenerated,
		PlanErrors,
		PlanScore,
		PlanCacheLookups,
		PlacementsQuoted,
		RateCardReloads,
		RateCardEntries,
		RateLimitHits,
		AnalyticsErrors,
	)
}
