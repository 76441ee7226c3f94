package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/patrickwarner/openmediaplan/internal/models"
)

func TestNewPlanEvent(t *testing.T) {
	at := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	plan := &models.MediaPlan{
		Briefing: models.BriefingData{
			Budget:    10000,
			Objective: models.ObjectiveTraffic,
			VideoNeed: models.VideoNone,
			Sector:    models.SectorRetail,
			Region:    models.RegionBrussels,
		},
		Score:       models.PerformanceScore{Score: 75},
		GeneratedAt: at,
	}
	ev := NewPlanEvent("req-1", "plan-1", plan)
	assert.Equal(t, "plan-1", ev.PlanID)
	assert.Equal(t, "req-1", ev.RequestID)
	assert.Equal(t, models.ObjectiveTraffic, ev.Objective)
	assert.Equal(t, 10000.0, ev.Budget)
	assert.Equal(t, 75, ev.Score)
	assert.Equal(t, at, ev.Timestamp)
}

func TestNewPlacementEvent(t *testing.T) {
	p := &models.Placement{
		ID:          "pl-1",
		CampaignID:  "c-1",
		Publication: "Le Soir",
		Dates:       []time.Time{time.Now(), time.Now().AddDate(0, 0, 1)},
		Quantity:    2,
		FinalPrice:  16200,
	}
	ev := NewPlacementEvent("", p, time.Unix(0, 0))
	assert.Equal(t, 4, ev.Insertions)
	assert.Equal(t, 16200.0, ev.Cost)
	assert.Equal(t, "c-1", ev.CampaignID)
}

func TestAnalyticsUnavailable(t *testing.T) {
	var a *Analytics
	ctx := context.Background()
	assert.ErrorIs(t, a.RecordPlan(ctx, PlanEvent{}), ErrUnavailable)
	assert.ErrorIs(t, a.RecordPlacement(ctx, PlacementEvent{}), ErrUnavailable)
	_, err := a.DailyActivity(ctx, time.Now(), time.Now())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestRecorder_WritesAsync(t *testing.T) {
	mock := NewMockAnalytics()
	r := NewRecorder(mock, zap.NewNop())

	r.Plan(PlanEvent{PlanID: "a"})
	r.Plan(PlanEvent{PlanID: "b"})
	r.Placement(PlacementEvent{PlacementID: "p"})
	r.Wait()

	assert.Equal(t, 2, mock.PlanCount())
	assert.Equal(t, 1, mock.PlacementCount())
}

func TestRecorder_SwallowsErrors(t *testing.T) {
	mock := NewMockAnalytics()
	mock.Err = errors.New("clickhouse down")
	r := NewRecorder(mock, zap.NewNop())

	r.Plan(PlanEvent{PlanID: "a"})
	r.Wait()
	assert.Equal(t, 0, mock.PlanCount())
}

func TestRecorder_NilService(t *testing.T) {
	r := NewRecorder(nil, zap.NewNop())
	r.Plan(PlanEvent{})
	r.Wait()

	var nilRecorder *Recorder
	nilRecorder.Placement(PlacementEvent{})
	nilRecorder.Wait()
}

func TestMockDailyActivityRange(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC) }
	mock := NewMockAnalytics()
	mock.Activity = []DailyActivity{{Day: day(1)}, {Day: day(2)}, {Day: day(3)}}

	got, err := mock.DailyActivity(context.Background(), day(2), day(3))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, day(2), got[0].Day)
}
