package pricing

import (
	"sort"

	"github.com/patrickwarner/openmediaplan/internal/models"
)

// PublicationTotal is the spend booked with one publication.
type PublicationTotal struct {
	Publication string  `json:"publication"`
	Cost        float64 `json:"cost"`
	Count       int     `json:"count"` // placements
	Insertions  int     `json:"insertions"`
}

// Totals summarises the placements of a campaign.
type Totals struct {
	TotalCost       float64 `json:"total_cost"`
	TotalInsertions int     `json:"total_insertions"`
	// AverageCPM is the cost per thousand insertions, 0 without insertions.
	AverageCPM     float64            `json:"average_cpm"`
	Placements     int                `json:"placements"`
	ByPublication  []PublicationTotal `json:"by_publication"`
	TotalDiscounts float64            `json:"total_discounts"`
}

// ComputeTotals aggregates placements. Publications are ordered by cost,
// highest first.
func ComputeTotals(placements []models.Placement) Totals {
	t := Totals{Placements: len(placements), ByPublication: []PublicationTotal{}}
	byPub := make(map[string]*PublicationTotal)
	for _, p := range placements {
		t.TotalCost += p.FinalPrice
		t.TotalDiscounts += p.DiscountAmount
		t.TotalInsertions += p.Insertions()

		pt, ok := byPub[p.Publication]
		if !ok {
			pt = &PublicationTotal{Publication: p.Publication}
			byPub[p.Publication] = pt
		}
		pt.Cost += p.FinalPrice
		pt.Count++
		pt.Insertions += p.Insertions()
	}
	if t.TotalInsertions > 0 {
		t.AverageCPM = t.TotalCost / float64(t.TotalInsertions) * 1000
	}
	for _, pt := range byPub {
		t.ByPublication = append(t.ByPublication, *pt)
	}
	sort.Slice(t.ByPublication, func(i, j int) bool {
		a, b := t.ByPublication[i], t.ByPublication[j]
		if a.Cost != b.Cost {
			return a.Cost > b.Cost
		}
		return a.Publication < b.Publication
	})
	return t
}
