package models

// Objective is the primary goal of a campaign. It selects the mix strategy
// applied to the budget.
type Objective string

const (
	// ObjectiveAwareness maximises reach and brand recall.
	ObjectiveAwareness Objective = "notoriete"
	// ObjectiveTraffic drives qualified visits, so the mix is digital-first.
	ObjectiveTraffic Objective = "trafic"
	// ObjectiveEngagement favours video formats.
	ObjectiveEngagement Objective = "engagement"
)

// Valid reports whether o is one of the known objectives.
func (o Objective) Valid() bool {
	switch o {
	case ObjectiveAwareness, ObjectiveTraffic, ObjectiveEngagement:
		return true
	}
	return false
}

// VideoNeed describes the advertiser's video situation.
type VideoNeed string

const (
	// VideoProduction means a spot must be produced out of the video budget.
	VideoProduction VideoNeed = "production"
	// VideoExisting means the advertiser already owns a spot.
	VideoExisting VideoNeed = "existant"
	// VideoNone removes video from the mix entirely.
	VideoNone VideoNeed = "none"
)

func (v VideoNeed) Valid() bool {
	switch v {
	case VideoProduction, VideoExisting, VideoNone:
		return true
	}
	return false
}

// TargetAge is an audience age bracket.
type TargetAge string

const (
	Age18To34 TargetAge = "18-34"
	Age25To45 TargetAge = "25-45"
	Age35To54 TargetAge = "35-54"
	Age45To65 TargetAge = "45-65"
)

func (a TargetAge) Valid() bool {
	switch a {
	case Age18To34, Age25To45, Age35To54, Age45To65:
		return true
	}
	return false
}

// Region is the geography a campaign targets.
type Region string

const (
	RegionBrusselsWallonia Region = "Bruxelles + Wallonie"
	RegionBrussels         Region = "Bruxelles"
	RegionWallonia         Region = "Wallonie"
	RegionNational         Region = "National"
)

func (r Region) Valid() bool {
	switch r {
	case RegionBrusselsWallonia, RegionBrussels, RegionWallonia, RegionNational:
		return true
	}
	return false
}

// Sector is the advertiser's business sector.
type Sector string

const (
	SectorRetail       Sector = "Retail"
	SectorServices     Sector = "Services"
	SectorAutomobile   Sector = "Automobile"
	SectorRealEstate   Sector = "Immobilier"
	SectorFoodBeverage Sector = "Food & Beverage"
	SectorOther        Sector = "Autre"
)

func (s Sector) Valid() bool {
	switch s {
	case SectorRetail, SectorServices, SectorAutomobile, SectorRealEstate, SectorFoodBeverage, SectorOther:
		return true
	}
	return false
}

// Months lists campaign start months in calendar order. The index of a month
// in this slice is its zero-based month number.
var Months = []string{
	"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
	"Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre",
}

// Month is a campaign start month, named as in Months.
type Month string

// Index returns the zero-based calendar index of m, or -1 when unknown.
func (m Month) Index() int {
	for i, name := range Months {
		if string(m) == name {
			return i
		}
	}
	return -1
}

func (m Month) Valid() bool {
	return m.Index() >= 0
}

// BriefingData is the campaign brief a media plan is generated from. It is
// treated as immutable once submitted.
type BriefingData struct {
	ClientName     string    `json:"client_name" validate:"required"`
	Budget         float64   `json:"budget" validate:"gt=0"`
	Objective      Objective `json:"objective" validate:"required,enum"`
	StartMonth     Month     `json:"start_month" validate:"required,enum"`
	Duration       int       `json:"duration" validate:"min=1,max=52"` // weeks
	TargetAge      TargetAge `json:"target_age" validate:"required,enum"`
	Region         Region    `json:"region" validate:"required,enum"`
	Sector         Sector    `json:"sector" validate:"required,enum"`
	VideoNeed      VideoNeed `json:"video_need" validate:"required,enum"`
	AdditionalInfo string    `json:"additional_info,omitempty"`
}
