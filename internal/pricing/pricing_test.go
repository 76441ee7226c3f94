package pricing

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickwarner/openmediaplan/internal/models"
)

func days(n int) []time.Time {
	start := time.Date(2024, 4, 6, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.AddDate(0, 0, 7*i)
	}
	return out
}

func newTestPricer(t *testing.T) *Pricer {
	t.Helper()
	idx, err := models.NewRateCardIndex(models.NewTestRateCardSet())
	require.NoError(t, err)
	return NewPricer(idx)
}

func TestComputeCost_FourWeekends(t *testing.T) {
	c := ComputeCost(4500, 1, 4, 10)
	assert.Equal(t, 4500.0, c.UnitPrice)
	assert.Equal(t, 18000.0, c.TotalPrice)
	assert.Equal(t, 1800.0, c.DiscountAmount)
	assert.Equal(t, 16200.0, c.FinalPrice)
}

func TestComputeCost_DiscountBounds(t *testing.T) {
	for _, tc := range []struct {
		unit       float64
		qty, dates int
	}{{4500, 1, 4}, {25, 3, 7}, {0.5, 10, 1}} {
		assert.Equal(t, tc.unit*float64(tc.qty)*float64(tc.dates), ComputeCost(tc.unit, tc.qty, tc.dates, 0).FinalPrice)
		assert.Equal(t, 0.0, ComputeCost(tc.unit, tc.qty, tc.dates, 100).FinalPrice)
	}
}

func TestComputeCost_NoDatesCostsNothing(t *testing.T) {
	c := ComputeCost(4500, 2, 0, 10)
	assert.Equal(t, Cost{UnitPrice: 4500}, c)
}

func TestComputeCost_DoesNotClamp(t *testing.T) {
	c := ComputeCost(100, 1, 1, 150)
	assert.Equal(t, -50.0, c.FinalPrice)
}

func TestValidateSchedule(t *testing.T) {
	d := days(2)
	tests := []struct {
		name     string
		dates    []time.Time
		quantity int
		discount float64
		want     error
	}{
		{"ok", d, 1, 10, nil},
		{"discount bounds inclusive", d, 1, 100, nil},
		{"zero quantity", d, 0, 0, ErrInvalidQuantity},
		{"no dates", nil, 1, 0, ErrNoDates},
		{"same day twice", []time.Time{d[0], d[0].Add(3 * time.Hour)}, 1, 0, ErrDuplicateDate},
		{"negative discount", d, 1, -1, ErrDiscountOutOfRange},
		{"discount above 100", d, 1, 100.5, ErrDiscountOutOfRange},
		{"NaN discount", d, 1, math.NaN(), ErrDiscountOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSchedule(tt.dates, tt.quantity, tt.discount)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPricer_Quote(t *testing.T) {
	p := newTestPricer(t)

	q, err := p.Quote(Request{
		Publication: "Le Soir",
		AdType:      "Publicité Display",
		Position:    "1/2 page",
		Size:        "275x185mm (Demi-page horizontale couleur)",
		Dates:       days(4),
		Quantity:    1,
		Discount:    10,
	})
	require.NoError(t, err)
	assert.Equal(t, 16200.0, q.FinalPrice)
	assert.Equal(t, 4, q.Insertions)
	assert.Equal(t, "test", q.RateCardVersion)
	assert.Equal(t, "Demi-page horizontale couleur", q.Entry.Description)
}

func TestPricer_QuoteErrors(t *testing.T) {
	p := newTestPricer(t)
	base := Request{
		Publication: "Le Soir",
		AdType:      "Publicité Display",
		Position:    "1/2 page",
		Size:        "275x185mm",
		Dates:       days(1),
		Quantity:    1,
	}

	_, err := p.Quote(base)
	assert.ErrorIs(t, err, models.ErrAmbiguousSize)

	unknown := base
	unknown.Publication = "Le Monde"
	_, err = p.Quote(unknown)
	assert.ErrorIs(t, err, ErrUnpriced)

	badDiscount := base
	badDiscount.Size = "275x185mm (Demi-page horizontale N&B)"
	badDiscount.Discount = 120
	_, err = p.Quote(badDiscount)
	assert.ErrorIs(t, err, ErrDiscountOutOfRange)
}

func TestPricer_LookupPrice(t *testing.T) {
	p := newTestPricer(t)
	assert.Equal(t, 25.0, p.LookupPrice("Sudinfo.be", "Vidéo", "Pre-roll", "30 secondes"))
	assert.Equal(t, 0.0, p.LookupPrice("Sudinfo.be", "Vidéo", "", ""))
}

func TestPricer_PriceRecomputesPlacement(t *testing.T) {
	p := newTestPricer(t)
	pl := &models.Placement{
		Publication: "Le Soir",
		AdType:      "Publicité Display",
		Position:    "1 page",
		Size:        "275x380mm",
		Dates:       days(2),
		Quantity:    2,
		Discount:    25,
		FinalPrice:  1, // stale value is overwritten
	}
	require.NoError(t, p.Price(pl))
	assert.Equal(t, "275x380mm (Pleine page couleur)", pl.Size)
	assert.Equal(t, 8500.0, pl.UnitPrice)
	assert.Equal(t, 34000.0, pl.TotalPrice)
	assert.Equal(t, 8500.0, pl.DiscountAmount)
	assert.Equal(t, 25500.0, pl.FinalPrice)

	before := *pl
	pl.Quantity = 0
	err := p.Price(pl)
	require.True(t, errors.Is(err, ErrInvalidQuantity))
	assert.Equal(t, before.FinalPrice, pl.FinalPrice)
}
