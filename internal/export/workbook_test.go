package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/patrickwarner/openmediaplan/internal/models"
	"github.com/patrickwarner/openmediaplan/internal/planning"
)

func testPlan(t *testing.T, need models.VideoNeed) *models.MediaPlan {
	t.Helper()
	e, err := planning.NewEngine(planning.DefaultConfig(),
		planning.WithClock(func() time.Time { return time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC) }))
	require.NoError(t, err)
	plan, err := e.CalculatePlan(models.BriefingData{
		ClientName: "Boulangerie Dupont",
		Budget:     25000,
		Objective:  models.ObjectiveTraffic,
		StartMonth: "Mars",
		Duration:   6,
		TargetAge:  models.Age25To45,
		Region:     models.RegionBrusselsWallonia,
		Sector:     models.SectorRetail,
		VideoNeed:  need,
	})
	require.NoError(t, err)
	return plan
}

// reopen round-trips f through Write so assertions see the serialized file.
func reopen(t *testing.T, f *excelize.File) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, f))
	out, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = out.Close() })
	return out
}

func TestMediaPlanWorkbook(t *testing.T) {
	plan := testPlan(t, models.VideoNone)
	f, err := MediaPlanWorkbook(plan)
	require.NoError(t, err)
	wb := reopen(t, f)

	assert.Equal(t, []string{SheetSummary, SheetChannels, SheetRecommendations}, wb.GetSheetList())

	client, err := wb.GetCellValue(SheetSummary, "B1")
	require.NoError(t, err)
	assert.Equal(t, "Boulangerie Dupont", client)

	budget, err := wb.GetCellValue(SheetSummary, "B2")
	require.NoError(t, err)
	assert.Equal(t, planning.FormatCurrency(25000), budget)

	score, err := wb.GetCellValue(SheetSummary, "B15")
	require.NoError(t, err)
	assert.Equal(t, "75/100 (good)", score)

	channels, err := wb.GetRows(SheetChannels)
	require.NoError(t, err)
	require.Len(t, channels, 3, "header, digital and print without video")
	assert.Equal(t, "Canal", channels[0][0])
	assert.Equal(t, "Digital", channels[1][0])
	assert.Equal(t, "Print", channels[2][0])
	assert.Contains(t, channels[2][5], "2 insertions")

	recs, err := wb.GetRows(SheetRecommendations)
	require.NoError(t, err)
	assert.Len(t, recs, len(plan.Insights)+1)
}

func TestMediaPlanWorkbook_WithVideo(t *testing.T) {
	plan := testPlan(t, models.VideoProduction)
	f, err := MediaPlanWorkbook(plan)
	require.NoError(t, err)
	wb := reopen(t, f)

	channels, err := wb.GetRows(SheetChannels)
	require.NoError(t, err)
	require.Len(t, channels, 4)
	assert.Equal(t, "Vidéo", channels[3][0])
	assert.Contains(t, channels[3][5], "production")
}

func TestCampaignWorkbook(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }
	c := models.Campaign{
		ID: "c1", Name: "Printemps", Client: "Boulangerie Dupont", Status: models.StatusActive,
		StartDate: day(1), EndDate: day(31), Budget: 20000,
		Placements: []models.Placement{
			{
				Publication: "Le Soir", AdType: "Publicité Display", Position: "1/2 page",
				Size: "275x185mm (Demi-page horizontale couleur)", Dates: []time.Time{day(4), day(11)},
				Quantity: 2, Discount: 10, UnitPrice: 4500, TotalPrice: 18000, DiscountAmount: 1800, FinalPrice: 16200,
			},
			{
				Publication: "Sudinfo.be", AdType: "Vidéo", Position: "Pre-roll", Size: "30 secondes",
				Dates: []time.Time{day(5)}, Quantity: 10, UnitPrice: 25, TotalPrice: 250, FinalPrice: 250,
			},
		},
	}
	f, err := CampaignWorkbook(c)
	require.NoError(t, err)
	wb := reopen(t, f)

	assert.Equal(t, []string{SheetSummary, SheetPlacements, SheetPublications}, wb.GetSheetList())

	name, err := wb.GetCellValue(SheetSummary, "B1")
	require.NoError(t, err)
	assert.Equal(t, "Printemps", name)

	rows, err := wb.GetRows(SheetPlacements)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Le Soir", rows[1][0])
	assert.Equal(t, "04/03/2024, 11/03/2024", rows[1][4])
	assert.Equal(t, "4", rows[1][6])

	raw, err := wb.GetCellValue(SheetPlacements, "L2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "16200", raw)

	pubs, err := wb.GetRows(SheetPublications)
	require.NoError(t, err)
	require.Len(t, pubs, 3)
	assert.Equal(t, "Le Soir", pubs[1][0], "highest cost first")
	assert.Equal(t, "Sudinfo.be", pubs[2][0])
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "plan-boulangerie-dupont.xlsx", Filename("plan", "Boulangerie Dupont"))
	assert.Equal(t, "campaign-printemps-2024.xlsx", Filename("campaign", "  Printemps 2024!"))
	assert.Equal(t, "plan.xlsx", Filename("plan", "!!!"))
	assert.Equal(t, "plan-dition.xlsx", Filename("plan", "Édition"))
}
