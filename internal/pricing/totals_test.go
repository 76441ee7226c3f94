package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/patrickwarner/openmediaplan/internal/models"
)

func TestComputeTotals(t *testing.T) {
	placements := []models.Placement{
		{Publication: "Le Soir", Dates: days(4), Quantity: 1, DiscountAmount: 1800, FinalPrice: 16200},
		{Publication: "Sudinfo.be", Dates: days(2), Quantity: 3, FinalPrice: 150},
		{Publication: "Le Soir", Dates: days(1), Quantity: 1, FinalPrice: 3600},
	}

	got := ComputeTotals(placements)
	assert.Equal(t, 19950.0, got.TotalCost)
	assert.Equal(t, 11, got.TotalInsertions)
	assert.InDelta(t, 19950.0/11*1000, got.AverageCPM, 1e-9)
	assert.Equal(t, 3, got.Placements)
	assert.Equal(t, 1800.0, got.TotalDiscounts)
	assert.Equal(t, []PublicationTotal{
		{Publication: "Le Soir", Cost: 19800, Count: 2, Insertions: 5},
		{Publication: "Sudinfo.be", Cost: 150, Count: 1, Insertions: 6},
	}, got.ByPublication)
}

func TestComputeTotals_Empty(t *testing.T) {
	got := ComputeTotals(nil)
	assert.Equal(t, 0.0, got.TotalCost)
	assert.Equal(t, 0.0, got.AverageCPM)
	assert.Empty(t, got.ByPublication)
	assert.NotNil(t, got.ByPublication)
}
