// Package pricing resolves rate card prices and computes placement costs.
package pricing

import (
	"errors"
	"fmt"
	"time"

	"github.com/patrickwarner/openmediaplan/internal/models"
)

var (
	ErrInvalidQuantity    = errors.New("quantity must be a positive integer")
	ErrNoDates            = errors.New("placement needs at least one date")
	ErrDuplicateDate      = errors.New("placement dates must be distinct")
	ErrDiscountOutOfRange = errors.New("discount must be between 0 and 100")
	// ErrUnpriced is returned when the selection resolves to no rate card
	// entry.
	ErrUnpriced = errors.New("selection has no rate card price")
)

// Cost is the price breakdown of a placement.
type Cost struct {
	UnitPrice      float64 `json:"unit_price"`
	TotalPrice     float64 `json:"total_price"`
	DiscountAmount float64 `json:"discount_amount"`
	FinalPrice     float64 `json:"final_price"`
}

// ComputeCost prices quantity units on dateCount dates at unitPrice with a
// percentage discount. It does not validate its inputs.
func ComputeCost(unitPrice float64, quantity, dateCount int, discountPct float64) Cost {
	subtotal := unitPrice * float64(quantity) * float64(dateCount)
	discount := subtotal * discountPct / 100
	return Cost{
		UnitPrice:      unitPrice,
		TotalPrice:     subtotal,
		DiscountAmount: discount,
		FinalPrice:     subtotal - discount,
	}
}

// Request is a placement selection to be priced.
type Request struct {
	Publication string      `json:"publication" validate:"required"`
	AdType      string      `json:"ad_type" validate:"required"`
	Position    string      `json:"position" validate:"required"`
	Size        string      `json:"size" validate:"required"`
	Dates       []time.Time `json:"dates"`
	Quantity    int         `json:"quantity"`
	Discount    float64     `json:"discount"`
}

// Quote is a priced request together with the rate card entry used.
type Quote struct {
	Cost
	Entry           models.AdSize `json:"entry"`
	Insertions      int           `json:"insertions"`
	RateCardVersion string        `json:"rate_card_version"`
}

// Pricer prices placements against a rate card index.
type Pricer struct {
	index models.RateCardIndex
}

// NewPricer returns a pricer reading prices from index.
func NewPricer(index models.RateCardIndex) *Pricer {
	return &Pricer{index: index}
}

// LookupPrice returns the unit price of the selection, or 0 while it cannot
// be resolved.
func (p *Pricer) LookupPrice(publication, adType, position, size string) float64 {
	return p.index.LookupPrice(publication, adType, position, size)
}

// Quote validates req and prices it.
func (p *Pricer) Quote(req Request) (*Quote, error) {
	if err := ValidateSchedule(req.Dates, req.Quantity, req.Discount); err != nil {
		return nil, err
	}
	entry, err := p.index.Resolve(req.Publication, req.AdType, req.Position, req.Size)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s / %s / %s / %s", ErrUnpriced, req.Publication, req.AdType, req.Position, req.Size)
		}
		return nil, err
	}
	return &Quote{
		Cost:            ComputeCost(entry.Price, req.Quantity, len(req.Dates), req.Discount),
		Entry:           entry,
		Insertions:      req.Quantity * len(req.Dates),
		RateCardVersion: p.index.Version(),
	}, nil
}

// Price recomputes the derived price fields of pl from its selection and
// schedule. The placement is left untouched on error.
func (p *Pricer) Price(pl *models.Placement) error {
	q, err := p.Quote(Request{
		Publication: pl.Publication,
		AdType:      pl.AdType,
		Position:    pl.Position,
		Size:        pl.Size,
		Dates:       pl.Dates,
		Quantity:    pl.Quantity,
		Discount:    pl.Discount,
	})
	if err != nil {
		return err
	}
	pl.Size = q.Entry.Key()
	pl.UnitPrice = q.UnitPrice
	pl.TotalPrice = q.TotalPrice
	pl.DiscountAmount = q.DiscountAmount
	pl.FinalPrice = q.FinalPrice
	return nil
}

// ValidateSchedule checks the caller-side constraints of a placement: at
// least one date, no calendar day twice, a positive quantity and a discount
// within [0,100].
func ValidateSchedule(dates []time.Time, quantity int, discount float64) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}
	if len(dates) == 0 {
		return ErrNoDates
	}
	seen := make(map[string]bool, len(dates))
	for _, d := range dates {
		day := d.Format(time.DateOnly)
		if seen[day] {
			return fmt.Errorf("%w: %s", ErrDuplicateDate, day)
		}
		seen[day] = true
	}
	// NaN fails both comparisons
	if !(discount >= 0 && discount <= 100) {
		return fmt.Errorf("%w: got %v", ErrDiscountOutOfRange, discount)
	}
	return nil
}
