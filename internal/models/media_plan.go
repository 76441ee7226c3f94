package models

import "time"

// MixSplit is the fractional split of the total budget across channels.
// The three fractions always sum to 1.
type MixSplit struct {
	Digital float64 `json:"digital" yaml:"digital"`
	Print   float64 `json:"print" yaml:"print"`
	Video   float64 `json:"video" yaml:"video"`
}

// Sum returns Digital + Print + Video.
func (m MixSplit) Sum() float64 {
	return m.Digital + m.Print + m.Video
}

// ChannelMetrics holds the budget and delivery estimates for one channel.
// Only the fields relevant to the channel are populated.
type ChannelMetrics struct {
	Budget      float64 `json:"budget"`
	Impressions float64 `json:"impressions"` // total exposures
	Reach       float64 `json:"reach"`       // unique individuals

	// Digital
	CPM     float64  `json:"cpm,omitempty"`
	Formats []string `json:"formats,omitempty"`

	// Print
	Insertions       int     `json:"insertions,omitempty"`
	CostPerInsertion float64 `json:"cost_per_insertion,omitempty"`
	// Leftover is the part of the print budget below the cost of one
	// insertion. It is booked to the channel but buys nothing.
	Leftover float64 `json:"leftover,omitempty"`

	// Video
	Views      float64 `json:"views,omitempty"`
	Production float64 `json:"production,omitempty"`
	Diffusion  float64 `json:"diffusion,omitempty"`
	CPV        float64 `json:"cpv,omitempty"`

	Format string `json:"format,omitempty"`
}

// PlanChannels groups the per-channel metrics of a plan. Video is nil when
// the effective video fraction is zero.
type PlanChannels struct {
	Digital ChannelMetrics  `json:"digital"`
	Print   ChannelMetrics  `json:"print"`
	Video   *ChannelMetrics `json:"video,omitempty"`
}

// PlanMetrics are the aggregate delivery figures of a plan.
type PlanMetrics struct {
	TotalReach       float64 `json:"total_reach"`
	TotalImpressions float64 `json:"total_impressions"`
	Frequency        float64 `json:"frequency"`   // impressions per unique individual
	BlendedCPM       float64 `json:"blended_cpm"` // cost per 1000 impressions across the plan
	Coverage         float64 `json:"coverage"`    // reach as a percentage of the target population, uncapped
}

// PerformanceLevel is the qualitative band of a plan score.
type PerformanceLevel string

const (
	LevelExcellent PerformanceLevel = "excellent"
	LevelGood      PerformanceLevel = "good"
	LevelAverage   PerformanceLevel = "average"
	LevelPoor      PerformanceLevel = "poor"
)

// PerformanceScore is the 0-100 plan score with its sub-scores.
type PerformanceScore struct {
	Score     int              `json:"score"`
	Level     PerformanceLevel `json:"level"`
	Frequency int              `json:"frequency_score"`
	Coverage  int              `json:"coverage_score"`
	CPM       int              `json:"cpm_score"`
}

// Recommendation is a structured piece of advice attached to a plan.
type Recommendation struct {
	ID       string `json:"id"`
	Category string `json:"category"` // budget, timing, targeting, performance, strategy
	Type     string `json:"type"`     // optimization, warning, success, insight
	Impact   string `json:"impact"`   // high, medium, low
	Title    string `json:"title"`
	Message  string `json:"message"`
	Action   string `json:"action,omitempty"`
}

// MediaPlan is the output of the planning engine. It is a pure function of
// the briefing and the planning configuration, apart from GeneratedAt.
type MediaPlan struct {
	Briefing        BriefingData     `json:"briefing"`
	Mix             MixSplit         `json:"mix"`
	Channels        PlanChannels     `json:"channels"`
	Metrics         PlanMetrics      `json:"metrics"`
	Score           PerformanceScore `json:"score"`
	Recommendations []string         `json:"recommendations"`
	Insights        []Recommendation `json:"insights"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// StoredPlan pairs a generated plan with the identifier it is cached under.
type StoredPlan struct {
	ID   string     `json:"id"`
	Plan *MediaPlan `json:"plan"`
}
