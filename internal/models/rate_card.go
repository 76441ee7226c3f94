package models

// RateCard is the price list of one publication.
type RateCard struct {
	Publication string   `json:"publication" yaml:"publication"`
	AdTypes     []AdType `json:"ad_types" yaml:"ad_types"`
}

// AdType groups the positions sold under one kind of advertising
// (e.g. "Publicité Display", "Vidéo Pre-roll").
type AdType struct {
	Name      string     `json:"name" yaml:"name"`
	Positions []Position `json:"positions" yaml:"positions"`
}

// Position is a placement within an ad type (e.g. "1/2 page", "Leaderboard").
type Position struct {
	Name  string   `json:"name" yaml:"name"`
	Sizes []AdSize `json:"sizes" yaml:"sizes"`
}

// AdSize is a priced entry of the rate card. Several entries of a position
// may share a Size label and differ only by Description (colour vs. black
// and white at the same dimensions).
type AdSize struct {
	Size        string  `json:"size" yaml:"size"`
	Price       float64 `json:"price" yaml:"price"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
}

// Key returns the identifier that selects this entry unambiguously within
// its position: the size label alone when there is no description, or
// "size (description)" otherwise.
func (s AdSize) Key() string {
	if s.Description == "" {
		return s.Size
	}
	return s.Size + " (" + s.Description + ")"
}

// RateCardSet is a versioned collection of rate cards, loaded as a unit.
type RateCardSet struct {
	Version string     `json:"version" yaml:"version"`
	Cards   []RateCard `json:"cards" yaml:"cards"`
}

// EntryCount returns the number of priced sizes across all cards.
func (rs RateCardSet) EntryCount() int {
	n := 0
	for _, c := range rs.Cards {
		for _, t := range c.AdTypes {
			for _, p := range t.Positions {
				n += len(p.Sizes)
			}
		}
	}
	return n
}
