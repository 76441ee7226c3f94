package models

import "time"

// Placement is a priced booking of one rate card entry across a set of
// dates. Publication, AdType, Position and Size select the entry; the
// price fields are always derived from the selection, Dates, Quantity and
// Discount and are never edited directly.
type Placement struct {
	ID         string `json:"id"`
	CampaignID string `json:"campaign_id"`

	Publication string `json:"publication"`
	AdType      string `json:"ad_type"`
	Position    string `json:"position"`
	// Size is an AdSize.Key, or a bare size label when it is unique in its
	// position.
	Size string `json:"size"`

	// Dates are distinct calendar days. Only the date part is significant.
	Dates    []time.Time `json:"dates"`
	Quantity int         `json:"quantity"`
	Discount float64     `json:"discount"` // percentage, 0-100

	UnitPrice      float64 `json:"unit_price"`
	TotalPrice     float64 `json:"total_price"`
	DiscountAmount float64 `json:"discount_amount"`
	FinalPrice     float64 `json:"final_price"`

	Notes string `json:"notes,omitempty"`
}

// Insertions returns the number of times the ad runs: Quantity per date.
func (p Placement) Insertions() int {
	return p.Quantity * len(p.Dates)
}
