// Package planning computes media plans from campaign briefings: the channel
// split, delivery estimates, a score and recommendations.
package planning

import (
	"fmt"
	"time"

	"github.com/patrickwarner/openmediaplan/internal/models"
	"github.com/patrickwarner/openmediaplan/internal/validator"
)

// Engine computes media plans. It holds only read-only configuration and is
// safe for concurrent use.
type Engine struct {
	cfg       Config
	allocator MixAllocator
	rules     []Rule
	validator *validator.Validator
	now       func() time.Time
}

// Option customises an Engine.
type Option func(*Engine)

// WithClock sets the source of MediaPlan.GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRules replaces the recommendation rule table.
func WithRules(rules []Rule) Option {
	return func(e *Engine) { e.rules = rules }
}

// NewEngine validates cfg and returns an engine using it.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid planning config: %w", err)
	}
	e := &Engine{
		cfg:       cfg,
		allocator: NewMixAllocator(cfg),
		rules:     DefaultRules(),
		validator: validator.New(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() Config {
	return e.cfg
}

// CalculatePlan generates the media plan for b. Apart from GeneratedAt the
// result depends only on b and the engine configuration.
func (e *Engine) CalculatePlan(b models.BriefingData) (*models.MediaPlan, error) {
	if err := e.validator.Validate(b); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBriefing, err)
	}

	mix, err := e.allocator.Split(b.Objective, b.VideoNeed)
	if err != nil {
		return nil, err
	}
	budgets := e.allocator.Budgets(b.Budget, mix)

	video, err := VideoMetrics(e.cfg.Rates.Video, budgets.Video, b.VideoNeed)
	if err != nil {
		return nil, err
	}
	channels := models.PlanChannels{
		Digital: DigitalMetrics(e.cfg.Rates.Digital, budgets.Digital),
		Print:   PrintMetrics(e.cfg.Rates.Print, budgets.Print),
		Video:   video,
	}

	metrics := Aggregate(b.Budget, e.cfg.Rates.TargetPopulation, channels)
	insights := EvaluateRules(e.rules, RuleContext{Briefing: b, Mix: mix, Metrics: metrics})
	messages := make([]string, len(insights))
	for i, r := range insights {
		messages[i] = r.Message
	}

	return &models.MediaPlan{
		Briefing:        b,
		Mix:             mix,
		Channels:        channels,
		Metrics:         metrics,
		Score:           Score(metrics),
		Recommendations: messages,
		Insights:        insights,
		GeneratedAt:     e.now().UTC(),
	}, nil
}
