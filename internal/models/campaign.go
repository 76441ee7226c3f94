package models

import "time"

// CampaignStatus is the lifecycle state of a campaign.
type CampaignStatus string

const (
	StatusDraft     CampaignStatus = "draft"
	StatusActive    CampaignStatus = "active"
	StatusCompleted CampaignStatus = "completed"
	StatusCancelled CampaignStatus = "cancelled"
)

func (s CampaignStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Campaign groups the placements booked for one client over a flight.
// TotalCost and TotalInsertions are recomputed from the placements whenever
// one of them changes.
type Campaign struct {
	ID        string         `json:"id"`
	Name      string         `json:"name" validate:"required"`
	Client    string         `json:"client" validate:"required"`
	StartDate time.Time      `json:"start_date" validate:"required"`
	EndDate   time.Time      `json:"end_date" validate:"required,gtefield=StartDate"`
	Budget    float64        `json:"budget" validate:"gte=0"`
	Status    CampaignStatus `json:"status" validate:"omitempty,enum"`
	CreatedBy string         `json:"created_by,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	TotalCost       float64 `json:"total_cost"`
	TotalInsertions int     `json:"total_insertions"`

	Placements []Placement `json:"placements,omitempty"`
}
