// Package reporting assembles campaign booking reports from the campaign
// store and planning activity reports from the analytics events.
package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/patrickwarner/openmediaplan/internal/analytics"
	"github.com/patrickwarner/openmediaplan/internal/models"
	"github.com/patrickwarner/openmediaplan/internal/pricing"
)

// MonthlySchedule is the booked volume falling in one calendar month.
type MonthlySchedule struct {
	Month      string  `json:"month"` // YYYY-MM
	Insertions int     `json:"insertions"`
	Cost       float64 `json:"cost"` // final price spread evenly over the placement's insertions
}

// CampaignReport summarises the bookings of a campaign against its budget.
type CampaignReport struct {
	Campaign models.Campaign `json:"campaign"`
	Totals   pricing.Totals  `json:"totals"`
	// BudgetUsed is TotalCost as a percentage of the campaign budget, 0 when
	// the campaign has no budget.
	BudgetUsed      float64           `json:"budget_used"`
	BudgetRemaining float64           `json:"budget_remaining"` // negative when over budget
	OverBudget      bool              `json:"over_budget"`
	Schedule        []MonthlySchedule `json:"schedule"`
	GeneratedAt     time.Time         `json:"generated_at"`
}

// GenerateCampaignReport loads the campaign and its placements from store
// and computes totals, budget usage and the monthly schedule.
func GenerateCampaignReport(ctx context.Context, store models.CampaignStore, campaignID string, now time.Time) (*CampaignReport, error) {
	c, err := store.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	placements, err := store.ListPlacements(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list placements: %w", err)
	}
	c.Placements = placements
	return BuildCampaignReport(*c, now), nil
}

// BuildCampaignReport computes the report from a campaign carrying its
// placements.
func BuildCampaignReport(c models.Campaign, now time.Time) *CampaignReport {
	totals := pricing.ComputeTotals(c.Placements)
	r := &CampaignReport{
		Campaign:        c,
		Totals:          totals,
		BudgetRemaining: c.Budget - totals.TotalCost,
		OverBudget:      totals.TotalCost > c.Budget && c.Budget > 0,
		Schedule:        monthlySchedule(c.Placements),
		GeneratedAt:     now.UTC(),
	}
	if c.Budget > 0 {
		r.BudgetUsed = totals.TotalCost / c.Budget * 100
	}
	return r
}

func monthlySchedule(placements []models.Placement) []MonthlySchedule {
	byMonth := make(map[string]*MonthlySchedule)
	for _, p := range placements {
		n := p.Insertions()
		if n == 0 {
			continue
		}
		perInsertion := p.FinalPrice / float64(n)
		for _, d := range p.Dates {
			key := d.Format("2006-01")
			m, ok := byMonth[key]
			if !ok {
				m = &MonthlySchedule{Month: key}
				byMonth[key] = m
			}
			m.Insertions += p.Quantity
			m.Cost += perInsertion * float64(p.Quantity)
		}
	}
	out := make([]MonthlySchedule, 0, len(byMonth))
	for _, m := range byMonth {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// ActivityReport is the planning activity over a window of days.
type ActivityReport struct {
	From             time.Time                 `json:"from"`
	To               time.Time                 `json:"to"`
	Days             []analytics.DailyActivity `json:"days"`
	PlansGenerated   uint64                    `json:"plans_generated"`
	PlacementsBooked uint64                    `json:"placements_booked"`
	PlannedBudget    float64                   `json:"planned_budget"`
	BookedSpend      float64                   `json:"booked_spend"`
}

// GenerateActivityReport queries the last days days (today included) of
// planning events.
func GenerateActivityReport(ctx context.Context, svc analytics.AnalyticsService, days int, now time.Time) (*ActivityReport, error) {
	if days <= 0 {
		return nil, fmt.Errorf("invalid day count %d", days)
	}
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	from := to.AddDate(0, 0, -days)
	rows, err := svc.DailyActivity(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("daily activity: %w", err)
	}
	r := &ActivityReport{From: from, To: to, Days: rows}
	for _, d := range rows {
		r.PlansGenerated += d.PlansGenerated
		r.PlacementsBooked += d.PlacementsBooked
		r.PlannedBudget += d.PlannedBudget
		r.BookedSpend += d.BookedSpend
	}
	return r, nil
}
