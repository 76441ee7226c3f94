package models

import (
	"errors"
	"fmt"
	"sync/atomic"
)

var (
	// ErrNotFound is returned when an entity is not found in a store.
	ErrNotFound = errors.New("entity not found")
	// ErrAmbiguousSize is returned when a size label matches several rate
	// card entries and the caller did not disambiguate with a size key.
	ErrAmbiguousSize = errors.New("ambiguous size selection")
)

// RateCardIndex provides read access to the active rate card. Lookups
// never block; a reload swaps the whole table at once.
type RateCardIndex interface {
	// LookupPrice returns the unit price for the selection, or 0 when any
	// level does not match or the size is ambiguous.
	LookupPrice(publication, adType, position, size string) float64
	// Resolve returns the rate card entry for the selection.
	Resolve(publication, adType, position, size string) (AdSize, error)

	Publications() []string
	AdTypes(publication string) []string
	Positions(publication, adType string) []string
	Sizes(publication, adType, position string) []AdSize

	Snapshot() RateCardSet
	Version() string

	// Reload validates and atomically installs a new rate card set.
	Reload(set RateCardSet) error
}

type positionKey struct {
	publication string
	adType      string
	position    string
}

// rateCardSnapshot is an immutable view of one rate card version.
type rateCardSnapshot struct {
	set       RateCardSet
	positions map[positionKey][]AdSize
}

// InMemoryRateCardIndex implements RateCardIndex with atomic snapshot swaps.
type InMemoryRateCardIndex struct {
	data atomic.Pointer[rateCardSnapshot]
}

// NewRateCardIndex builds an index over set.
func NewRateCardIndex(set RateCardSet) (*InMemoryRateCardIndex, error) {
	idx := &InMemoryRateCardIndex{}
	idx.data.Store(&rateCardSnapshot{positions: make(map[positionKey][]AdSize)})
	if err := idx.Reload(set); err != nil {
		return nil, err
	}
	return idx, nil
}

// Reload validates set and installs it. The previous snapshot stays active
// when validation fails.
func (x *InMemoryRateCardIndex) Reload(set RateCardSet) error {
	snap, err := buildRateCardSnapshot(set)
	if err != nil {
		return err
	}
	x.data.Store(snap)
	return nil
}

func buildRateCardSnapshot(set RateCardSet) (*rateCardSnapshot, error) {
	positions := make(map[positionKey][]AdSize)
	seenPubs := make(map[string]bool, len(set.Cards))
	for _, card := range set.Cards {
		if card.Publication == "" {
			return nil, fmt.Errorf("rate card without publication name")
		}
		if seenPubs[card.Publication] {
			return nil, fmt.Errorf("duplicate publication %q", card.Publication)
		}
		seenPubs[card.Publication] = true

		for _, t := range card.AdTypes {
			if t.Name == "" {
				return nil, fmt.Errorf("%s: ad type without name", card.Publication)
			}
			for _, p := range t.Positions {
				if p.Name == "" {
					return nil, fmt.Errorf("%s/%s: position without name", card.Publication, t.Name)
				}
				key := positionKey{card.Publication, t.Name, p.Name}
				if _, dup := positions[key]; dup {
					return nil, fmt.Errorf("%s/%s: duplicate position %q", card.Publication, t.Name, p.Name)
				}
				keys := make(map[string]bool, len(p.Sizes))
				for _, s := range p.Sizes {
					if s.Size == "" {
						return nil, fmt.Errorf("%s/%s/%s: size without label", card.Publication, t.Name, p.Name)
					}
					if s.Price < 0 {
						return nil, fmt.Errorf("%s/%s/%s: negative price for %q", card.Publication, t.Name, p.Name, s.Key())
					}
					if keys[s.Key()] {
						return nil, fmt.Errorf("%s/%s/%s: duplicate size %q", card.Publication, t.Name, p.Name, s.Key())
					}
					keys[s.Key()] = true
				}
				sizes := make([]AdSize, len(p.Sizes))
				copy(sizes, p.Sizes)
				positions[key] = sizes
			}
		}
	}
	return &rateCardSnapshot{set: set, positions: positions}, nil
}

// LookupPrice returns the unit price of the selection or 0 when it cannot be
// resolved yet.
func (x *InMemoryRateCardIndex) LookupPrice(publication, adType, position, size string) float64 {
	s, err := x.Resolve(publication, adType, position, size)
	if err != nil {
		return 0
	}
	return s.Price
}

// Resolve finds the entry for size within the position. size may be an
// exact AdSize.Key, or a bare size label when exactly one entry carries it.
func (x *InMemoryRateCardIndex) Resolve(publication, adType, position, size string) (AdSize, error) {
	sizes, ok := x.data.Load().positions[positionKey{publication, adType, position}]
	if !ok {
		return AdSize{}, ErrNotFound
	}
	for _, s := range sizes {
		if s.Key() == size {
			return s, nil
		}
	}
	var (
		match AdSize
		count int
	)
	for _, s := range sizes {
		if s.Size == size {
			match = s
			count++
		}
	}
	switch count {
	case 0:
		return AdSize{}, ErrNotFound
	case 1:
		return match, nil
	default:
		return AdSize{}, fmt.Errorf("%w: %d entries labelled %q", ErrAmbiguousSize, count, size)
	}
}

// Publications returns publication names in rate card order.
func (x *InMemoryRateCardIndex) Publications() []string {
	set := x.data.Load().set
	names := make([]string, 0, len(set.Cards))
	for _, c := range set.Cards {
		names = append(names, c.Publication)
	}
	return names
}

// AdTypes returns the ad type names of a publication, or nil.
func (x *InMemoryRateCardIndex) AdTypes(publication string) []string {
	card := x.card(publication)
	if card == nil {
		return nil
	}
	names := make([]string, 0, len(card.AdTypes))
	for _, t := range card.AdTypes {
		names = append(names, t.Name)
	}
	return names
}

// Positions returns the position names of an ad type, or nil.
func (x *InMemoryRateCardIndex) Positions(publication, adType string) []string {
	card := x.card(publication)
	if card == nil {
		return nil
	}
	for _, t := range card.AdTypes {
		if t.Name != adType {
			continue
		}
		names := make([]string, 0, len(t.Positions))
		for _, p := range t.Positions {
			names = append(names, p.Name)
		}
		return names
	}
	return nil
}

// Sizes returns a copy of the entries of a position, or nil.
func (x *InMemoryRateCardIndex) Sizes(publication, adType, position string) []AdSize {
	sizes, ok := x.data.Load().positions[positionKey{publication, adType, position}]
	if !ok {
		return nil
	}
	result := make([]AdSize, len(sizes))
	copy(result, sizes)
	return result
}

// Snapshot returns the active rate card set.
func (x *InMemoryRateCardIndex) Snapshot() RateCardSet {
	return x.data.Load().set
}

// Version returns the version label of the active rate card set.
func (x *InMemoryRateCardIndex) Version() string {
	return x.data.Load().set.Version
}

func (x *InMemoryRateCardIndex) card(publication string) *RateCard {
	set := x.data.Load().set
	for i := range set.Cards {
		if set.Cards[i].Publication == publication {
			return &set.Cards[i]
		}
	}
	return nil
}
