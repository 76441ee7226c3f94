package planning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickwarner/openmediaplan/internal/models"
)

func baseContext() RuleContext {
	return RuleContext{
		Briefing: models.BriefingData{
			ClientName: "Garage Lambert",
			Budget:     40000,
			Objective:  models.ObjectiveAwareness,
			StartMonth: "Mai",
			Duration:   8,
			TargetAge:  models.Age35To54,
			Region:     models.RegionWallonia,
			Sector:     models.SectorAutomobile,
			VideoNeed:  models.VideoExisting,
		},
		Mix:     models.MixSplit{Digital: 0.60, Print: 0.25, Video: 0.15},
		Metrics: models.PlanMetrics{Frequency: 3, Coverage: 50, BlendedCPM: 9},
	}
}

func firedIDs(ctx RuleContext) []string {
	recs := EvaluateRules(DefaultRules(), ctx)
	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.ID
	}
	return ids
}

func TestDefaultRules_WellFormed(t *testing.T) {
	seen := map[string]bool{}
	for _, r := range DefaultRules() {
		require.NotEmpty(t, r.ID)
		assert.False(t, seen[r.ID], "duplicate rule %s", r.ID)
		seen[r.ID] = true
		assert.NotNil(t, r.When, r.ID)
		assert.NotNil(t, r.Message, r.ID)
		assert.Contains(t, []string{CategoryBudget, CategoryTiming, CategoryTargeting, CategoryPerformance, CategoryStrategy}, r.Category, r.ID)
		assert.Contains(t, []string{TypeOptimization, TypeWarning, TypeSuccess, TypeInsight}, r.Type, r.ID)
		assert.Contains(t, []string{ImpactHigh, ImpactMedium, ImpactLow}, r.Impact, r.ID)
	}
}

func TestEvaluateRules_Baseline(t *testing.T) {
	assert.Equal(t, []string{"objective-notoriete", "frequency-optimal", "coverage-good", "sector-formats"}, firedIDs(baseContext()))
}

func TestEvaluateRules_Messages(t *testing.T) {
	ctx := baseContext()
	ctx.Metrics = models.PlanMetrics{Frequency: 2.345, Coverage: 72.6, BlendedCPM: 12.5}
	recs := EvaluateRules(DefaultRules(), ctx)

	byID := map[string]models.Recommendation{}
	for _, r := range recs {
		byID[r.ID] = r
	}
	assert.Equal(t, "Fréquence 2.3× idéale pour mémorisation", byID["frequency-optimal"].Message)
	assert.Equal(t, "Excellente couverture 73% du marché Wallonie", byID["coverage-excellent"].Message)
	assert.Equal(t, "Formats adaptés au secteur Automobile", byID["sector-formats"].Message)
	assert.Contains(t, byID["cpm-high"].Message, "12.50€")
	assert.Equal(t, "Augmenter la part digital ou réduire les formats premium", byID["cpm-high"].Action)
	assert.Equal(t, TypeWarning, byID["cpm-high"].Type)
}

func TestEvaluateRules_Individual(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*RuleContext)
		fires  string
		absent string
	}{
		{"low frequency", func(c *RuleContext) { c.Metrics.Frequency = 1.9 }, "frequency-low", "frequency-optimal"},
		{"high frequency", func(c *RuleContext) { c.Metrics.Frequency = 5.1 }, "frequency-high", "frequency-optimal"},
		{"frequency 5 is optimal", func(c *RuleContext) { c.Metrics.Frequency = 5 }, "frequency-optimal", "frequency-high"},
		{"coverage 40 is limited", func(c *RuleContext) { c.Metrics.Coverage = 40 }, "coverage-low", "coverage-good"},
		{"coverage 70 is good", func(c *RuleContext) { c.Metrics.Coverage = 70 }, "coverage-good", "coverage-excellent"},
		{"competitive cpm", func(c *RuleContext) { c.Metrics.BlendedCPM = 7.99 }, "cpm-competitive", "cpm-high"},
		{"high cpm", func(c *RuleContext) { c.Metrics.BlendedCPM = 10.01 }, "cpm-high", "cpm-competitive"},
		{"awareness short on print", func(c *RuleContext) { c.Mix.Print = 0.19 }, "notoriete-print", ""},
		{"traffic short on digital", func(c *RuleContext) {
			c.Briefing.Objective = models.ObjectiveTraffic
			c.Mix.Digital = 0.55
		}, "trafic-digital", "objective-notoriete"},
		{"engagement short on video", func(c *RuleContext) {
			c.Briefing.Objective = models.ObjectiveEngagement
			c.Mix.Video = 0
		}, "engagement-video", ""},
		{"august", func(c *RuleContext) { c.Briefing.StartMonth = "Août" }, "seasonal-august", "seasonal-december"},
		{"december", func(c *RuleContext) { c.Briefing.StartMonth = "Décembre" }, "seasonal-december", "seasonal-august"},
		{"retail november", func(c *RuleContext) {
			c.Briefing.Sector = models.SectorRetail
			c.Briefing.StartMonth = "Novembre"
		}, "retail-blackfriday", ""},
		{"services november", func(c *RuleContext) { c.Briefing.StartMonth = "Novembre" }, "", "retail-blackfriday"},
		{"short campaign", func(c *RuleContext) { c.Briefing.Duration = 3 }, "duration-short", "duration-long"},
		{"long campaign", func(c *RuleContext) { c.Briefing.Duration = 13 }, "duration-long", "duration-short"},
		{"twelve weeks is neither", func(c *RuleContext) { c.Briefing.Duration = 12 }, "", "duration-long"},
		{"young audience", func(c *RuleContext) { c.Briefing.TargetAge = models.Age18To34 }, "young-target-digital", ""},
		{"young audience digital heavy", func(c *RuleContext) {
			c.Briefing.TargetAge = models.Age18To34
			c.Mix.Digital = 0.7
		}, "", "young-target-digital"},
		{"senior audience", func(c *RuleContext) { c.Briefing.TargetAge = models.Age45To65 }, "senior-target-print", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := baseContext()
			tt.modify(&ctx)
			ids := firedIDs(ctx)
			if tt.fires != "" {
				assert.Contains(t, ids, tt.fires)
			}
			if tt.absent != "" {
				assert.NotContains(t, ids, tt.absent)
			}
		})
	}
}

func TestEvaluateRules_OrderStable(t *testing.T) {
	ctx := baseContext()
	ctx.Briefing.StartMonth = "Décembre"
	ctx.Briefing.Duration = 2
	ctx.Metrics.BlendedCPM = 11
	assert.Equal(t, firedIDs(ctx), firedIDs(ctx))
	assert.Equal(t, []string{
		"objective-notoriete", "frequency-optimal", "coverage-good", "sector-formats",
		"cpm-high", "seasonal-december", "duration-short",
	}, firedIDs(ctx))
}

func TestEvaluateRules_CustomTable(t *testing.T) {
	rules := []Rule{{
		ID: "always", Category: CategoryStrategy, Type: TypeInsight, Impact: ImpactLow,
		When:    func(RuleContext) bool { return true },
		Message: func(c RuleContext) string { return c.Briefing.ClientName },
	}}
	recs := EvaluateRules(rules, baseContext())
	require.Len(t, recs, 1)
	assert.Equal(t, "Garage Lambert", recs[0].Message)

	e, err := NewEngine(DefaultConfig(), WithRules(rules))
	require.NoError(t, err)
	plan, err := e.CalculatePlan(trafficBriefing())
	require.NoError(t, err)
	assert.Equal(t, []string{"Boulangerie Dupont"}, plan.Recommendations)
	require.Len(t, plan.Insights, 1)
	assert.Equal(t, "always", plan.Insights[0].ID)
}
