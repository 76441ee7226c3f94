package planning

import (
	"fmt"
	"math"

	"github.com/patrickwarner/openmediaplan/internal/models"
)

// DigitalMetrics estimates display delivery for budget.
func DigitalMetrics(r DigitalRates, budget float64) models.ChannelMetrics {
	impressions := budget / r.DisplayCPM * 1000
	formats := make([]string, len(r.Formats))
	copy(formats, r.Formats)
	return models.ChannelMetrics{
		Budget:      budget,
		Impressions: impressions,
		Reach:       impressions * r.ReachRate,
		CPM:         r.DisplayCPM,
		Formats:     formats,
	}
}

// PrintMetrics estimates print delivery for budget. Only whole half-page
// insertions are bought; the remainder is reported as Leftover.
func PrintMetrics(r PrintRates, budget float64) models.ChannelMetrics {
	insertions := 0
	if budget > 0 {
		insertions = int(math.Floor(budget / r.HalfPage))
	}
	spent := float64(insertions) * r.HalfPage
	return models.ChannelMetrics{
		Budget:           budget,
		Impressions:      float64(insertions) * r.Circulation,
		Reach:            float64(insertions) * r.ReachPerInsertion,
		Insertions:       insertions,
		CostPerInsertion: r.HalfPage,
		Leftover:         budget - spent,
		Format:           r.Format,
	}
}

// VideoMetrics estimates pre-roll delivery for budget. It returns nil when
// the channel has no budget. The production cost is only charged when the
// spot must be produced and is deducted before buying views.
func VideoMetrics(r VideoRates, budget float64, need models.VideoNeed) (*models.ChannelMetrics, error) {
	if budget <= 0 {
		return nil, nil
	}
	production := 0.0
	if need == models.VideoProduction {
		production = r.Production30s
	}
	if production > budget {
		return nil, fmt.Errorf("%w: production costs %.2f, video budget is %.2f",
			ErrBudgetInsufficientForProduction, production, budget)
	}
	diffusion := budget - production
	views := diffusion / r.CPM * 1000
	return &models.ChannelMetrics{
		Budget:      budget,
		Impressions: views,
		Reach:       views * r.CompletionRate,
		Views:       views,
		Production:  production,
		Diffusion:   diffusion,
		CPV:         r.CPM,
		Format:      r.Format,
	}, nil
}
