package observability

import "time"

// MetricsRegistry provides an interface for recording application metrics.
// Components receive it by injection instead of touching the Prometheus
// vectors directly.
type MetricsRegistry interface {
	// HTTP Request metrics
	IncrementRequests(endpoint, method, status string)
	RecordRequestLatency(endpoint, method string, duration time.Duration)

	// Planning metrics
	IncrementPlansGenerated(objective, videoNeed string)
	IncrementPlanErrors(reason string)
	RecordPlanScore(score int)
	IncrementPlanCacheLookups(result string)

	// Pricing metrics
	IncrementPlacementsQuoted(publication string)

	// Rate card metrics
	IncrementRateCardReloads(status string)
	SetRateCardEntries(n int)

	// Rate limiting metrics
	IncrementRateLimitHits(endpoint string)

	// Analytics metrics
	IncrementAnalyticsErrors()
}

// PrometheusRegistry implements MetricsRegistry using the global Prometheus metrics
type PrometheusRegistry struct{}

// NewPrometheusRegistry creates a new PrometheusRegistry
func NewPrometheusRegistry() *PrometheusRegistry {
	return &PrometheusRegistry{}
}

// HTTP Request metrics
func (r *PrometheusRegistry) IncrementRequests(endpoint, method, status string) {
	RequestCount.WithLabelValues(endpoint, method, status).Inc()
}

func (r *PrometheusRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {
	RequestLatency.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

// Planning metrics
func (r *PrometheusRegistry) IncrementPlansGenerated(objective, videoNeed string) {
	PlansGenerated.WithLabelValues(objective, videoNeed).Inc()
}

func (r *PrometheusRegistry) IncrementPlanErrors(reason string) {
	PlanErrors.WithLabelValues(reason).Inc()
}

func (r *PrometheusRegistry) RecordPlanScore(score int) {
	PlanScore.Observe(float64(score))
}

func (r *PrometheusRegistry) IncrementPlanCacheLookups(result string) {
	PlanCacheLookups.WithLabelValues(result).Inc()
}

// Pricing metrics
func (r *PrometheusRegistry) IncrementPlacementsQuoted(publication string) {
	PlacementsQuoted.WithLabelValues(publication).Inc()
}

// Rate card metrics
func (r *PrometheusRegistry) IncrementRateCardReloads(status string) {
	RateCardReloads.WithLabelValues(status).Inc()
}

func (r *PrometheusRegistry) SetRateCardEntries(n int) {
	RateCardEntries.Set(float64(n))
}

// Rate limiting metrics
func (r *PrometheusRegistry) IncrementRateLimitHits(endpoint string) {
	RateLimitHits.WithLabelValues(endpoint).Inc()
}

// Analytics metrics
func (r *PrometheusRegistry) IncrementAnalyticsErrors() {
	AnalyticsErrors.Inc()
}

// NoOpRegistry implements MetricsRegistry with no-op methods for testing
type NoOpRegistry struct{}

// NewNoOpRegistry creates a new NoOpRegistry
func NewNoOpRegistry() *NoOpRegistry {
	return &NoOpRegistry{}
}

func (r *NoOpRegistry) IncrementRequests(endpoint, method, status string)                    {}
func (r *NoOpRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}
func (r *NoOpRegistry) IncrementPlansGenerated(objective, videoNeed string)                  {}
func (r *NoOpRegistry) IncrementPlanErrors(reason string)                                    {}
func (r *NoOpRegistry) RecordPlanScore(score int)                                            {}
func (r *NoOpRegistry) IncrementPlanCacheLookups(result string)                              {}
func (r *NoOpRegistry) IncrementPlacementsQuoted(publication string)                         {}
func (r *NoOpRegistry) IncrementRateCardReloads(status string)                               {}
func (r *NoOpRegistry) SetRateCardEntries(n int)                                             {}
func (r *NoOpRegistry) IncrementRateLimitHits(endpoint string)                               {}
func (r *NoOpRegistry) IncrementAnalyticsErrors()                                            {}
