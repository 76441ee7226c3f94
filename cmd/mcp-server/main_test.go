package main

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/patrickwarner/openmediaplan/internal/models"
	"github.com/patrickwarner/openmediaplan/internal/planning"
)

func newTestTools(t *testing.T) *PlanningTools {
	t.Helper()
	engine, err := planning.NewEngine(planning.DefaultConfig())
	require.NoError(t, err)
	idx, err := models.NewRateCardIndex(models.NewTestRateCardSet())
	require.NoError(t, err)
	return NewPlanningTools(engine, idx, zap.NewNop())
}

func trafficBriefing() models.BriefingData {
	return models.BriefingData{
		ClientName: "Boulangerie Dupont",
		Budget:     25000,
		Objective:  models.ObjectiveTraffic,
		StartMonth: "Mars",
		Duration:   6,
		TargetAge:  models.Age25To45,
		Region:     models.RegionBrusselsWallonia,
		Sector:     models.SectorRetail,
		VideoNeed:  models.VideoNone,
	}
}

func TestGenerateMediaPlan(t *testing.T) {
	tools := newTestTools(t)

	_, out, err := tools.GenerateMediaPlan(context.Background(), nil, trafficBriefing())
	require.NoError(t, err)
	assert.Equal(t, "Boulangerie Dupont", out.ClientName)
	assert.Equal(t, 75, out.Score)
	assert.InDelta(t, 0.79, out.Mix.Digital, 1e-9)
	assert.Len(t, out.Channels, 2)
	assert.Equal(t, "digital", out.Channels[0].Channel)
	assert.NotNil(t, out.Recommendations)
}

func TestGenerateMediaPlan_InvalidBriefing(t *testing.T) {
	tools := newTestTools(t)
	b := trafficBriefing()
	b.Budget = 0

	_, _, err := tools.GenerateMediaPlan(context.Background(), nil, b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid briefing")
}

func TestQuotePlacement(t *testing.T) {
	tools := newTestTools(t)

	_, out, err := tools.QuotePlacement(context.Background(), nil, QuotePlacementInput{
		Publication: "Le Soir",
		AdType:      "Publicité Display",
		Position:    "1/2 page",
		Size:        "275x185mm (Demi-page horizontale couleur)",
		Dates:       []string{"2024-03-04", "2024-03-11"},
		Quantity:    2,
		Discount:    10,
	})
	require.NoError(t, err)
	assert.Equal(t, 4500.0, out.UnitPrice)
	assert.Equal(t, 16200.0, out.FinalPrice)
	assert.Equal(t, 4, out.Insertions)
	assert.Equal(t, "test", out.RateCardVersion)
}

func TestQuotePlacement_Errors(t *testing.T) {
	tools := newTestTools(t)
	base := QuotePlacementInput{
		Publication: "Le Soir",
		AdType:      "Publicité Display",
		Position:    "1/2 page",
		Size:        "275x185mm",
		Dates:       []string{"2024-03-04"},
		Quantity:    1,
	}

	_, _, err := tools.QuotePlacement(context.Background(), nil, base)
	assert.ErrorIs(t, err, models.ErrAmbiguousSize)

	bad := base
	bad.Dates = []string{"04/03/2024"}
	_, _, err = tools.QuotePlacement(context.Background(), nil, bad)
	assert.Error(t, err)
}

func TestListRateCard(t *testing.T) {
	tools := newTestTools(t)
	ctx := context.Background()

	_, out, err := tools.ListRateCard(ctx, nil, ListRateCardInput{})
	require.NoError(t, err)
	assert.Equal(t, "publication", out.Level)
	assert.Equal(t, []string{"Le Soir", "Sudinfo.be"}, out.Options)

	_, out, err = tools.ListRateCard(ctx, nil, ListRateCardInput{Publication: "Le Soir", AdType: "Publicité Display", Position: "1/2 page"})
	require.NoError(t, err)
	assert.Equal(t, "size", out.Level)
	require.Len(t, out.Sizes, 2)
	assert.Equal(t, "275x185mm (Demi-page horizontale N&B)", out.Sizes[1].Key)

	_, _, err = tools.ListRateCard(ctx, nil, ListRateCardInput{Publication: "Le Monde"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAddToolsRegisters(t *testing.T) {
	server := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "0"}, nil)
	assert.NotPanics(t, func() { addTools(server, newTestTools(t)) })
}
