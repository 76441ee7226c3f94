package planning

import "github.com/patrickwarner/openmediaplan/internal/models"

// Aggregate combines the channel estimates into plan-level metrics.
// Frequency and blended CPM are 0 when their denominator is 0. Coverage is
// not capped at 100: channel reach figures overlap and the sum is an estimate.
func Aggregate(totalBudget, targetPopulation float64, ch models.PlanChannels) models.PlanMetrics {
	reach := ch.Digital.Reach + ch.Print.Reach
	impressions := ch.Digital.Impressions + ch.Print.Impressions
	if ch.Video != nil {
		reach += ch.Video.Reach
		impressions += ch.Video.Impressions
	}

	m := models.PlanMetrics{
		TotalReach:       reach,
		TotalImpressions: impressions,
	}
	if reach > 0 {
		m.Frequency = impressions / reach
	}
	if impressions > 0 {
		m.BlendedCPM = totalBudget / impressions * 1000
	}
	if targetPopulation > 0 {
		m.Coverage = reach / targetPopulation * 100
	}
	return m
}
