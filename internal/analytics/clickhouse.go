package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	_ "github.com/ClickHouse/clickhouse-go/v2"

	"github.com/patrickwarner/openmediaplan/internal/models"
	"github.com/patrickwarner/openmediaplan/internal/observability"
)

// Event types written to planning_events.
const (
	EventPlanGenerated   = "plan_generated"
	EventPlacementBooked = "placement_booked"
)

// ErrUnavailable is returned when the analytics DB is not configured.
var ErrUnavailable = errors.New("analytics unavailable")

// AnalyticsService records planning activity. Implementations should return
// ErrUnavailable when the underlying storage is missing.
type AnalyticsService interface {
	// RecordPlan stores a plan_generated event.
	RecordPlan(ctx context.Context, ev PlanEvent) error
	// RecordPlacement stores a placement_booked event.
	RecordPlacement(ctx context.Context, ev PlacementEvent) error
	// DailyActivity aggregates events per day in [from, to).
	DailyActivity(ctx context.Context, from, to time.Time) ([]DailyActivity, error)
}

// PlanEvent describes one generated media plan.
type PlanEvent struct {
	Timestamp time.Time
	RequestID string
	PlanID    string
	Objective models.Objective
	VideoNeed models.VideoNeed
	Sector    models.Sector
	Region    models.Region
	Budget    float64
	Score     int
}

// NewPlanEvent builds the event for a plan cached under id.
func NewPlanEvent(requestID, id string, plan *models.MediaPlan) PlanEvent {
	return PlanEvent{
		Timestamp: plan.GeneratedAt,
		RequestID: requestID,
		PlanID:    id,
		Objective: plan.Briefing.Objective,
		VideoNeed: plan.Briefing.VideoNeed,
		Sector:    plan.Briefing.Sector,
		Region:    plan.Briefing.Region,
		Budget:    plan.Briefing.Budget,
		Score:     plan.Score.Score,
	}
}

// PlacementEvent describes a placement booked on a campaign.
type PlacementEvent struct {
	Timestamp   time.Time
	RequestID   string
	CampaignID  string
	PlacementID string
	Publication string
	Insertions  int
	Cost        float64
}

// NewPlacementEvent builds the event for a priced placement.
func NewPlacementEvent(requestID string, p *models.Placement, at time.Time) PlacementEvent {
	return PlacementEvent{
		Timestamp:   at,
		RequestID:   requestID,
		CampaignID:  p.CampaignID,
		PlacementID: p.ID,
		Publication: p.Publication,
		Insertions:  p.Insertions(),
		Cost:        p.FinalPrice,
	}
}

// DailyActivity is one row of the activity report.
type DailyActivity struct {
	Day              time.Time `json:"day"`
	PlansGenerated   uint64    `json:"plans_generated"`
	PlacementsBooked uint64    `json:"placements_booked"`
	PlannedBudget    float64   `json:"planned_budget"`
	BookedSpend      float64   `json:"booked_spend"`
	AveragePlanScore float64   `json:"average_plan_score"`
	BookedInsertions uint64    `json:"booked_insertions"`
}

// Analytics wraps a ClickHouse DB connection.
type Analytics struct {
	DB      *sql.DB
	Metrics observability.MetricsRegistry
}

const createEventsTable = `CREATE TABLE IF NOT EXISTS planning_events (
       timestamp    DateTime,
       event_type   String,
       request_id   String,
       plan_id      String,
       campaign_id  String,
       placement_id String,
       objective    String,
       video_need   String,
       sector       String,
       region       String,
       publication  String,
       budget       Float64,
       cost         Float64,
       insertions   UInt32,
       score        UInt8
   ) ENGINE=MergeTree() ORDER BY (event_type, timestamp)`

// InitClickHouse connects to ClickHouse and ensures the events table exists.
func InitClickHouse(dsn string, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration, metrics observability.MetricsRegistry) (*Analytics, error) {
	db, err := sql.Open("clickhouse", dsn)
	if err != nil {
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, createEventsTable); err != nil {
		return nil, fmt.Errorf("clickhouse create table: %w", err)
	}

	zap.L().Info("Connected to ClickHouse")
	return &Analytics{DB: db, Metrics: metrics}, nil
}

const insertEvent = `INSERT INTO planning_events (timestamp, event_type, request_id, plan_id, campaign_id, placement_id, objective, video_need, sector, region, publication, budget, cost, insertions, score) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (a *Analytics) RecordPlan(ctx context.Context, ev PlanEvent) error {
	if a == nil || a.DB == nil {
		return ErrUnavailable
	}
	if _, err := a.DB.ExecContext(ctx, insertEvent, ev.Timestamp, EventPlanGenerated, ev.RequestID, ev.PlanID, "", "",
		string(ev.Objective), string(ev.VideoNeed), string(ev.Sector), string(ev.Region), "",
		ev.Budget, 0.0, uint32(0), uint8(ev.Score)); err != nil {
		a.Metrics.IncrementAnalyticsErrors()
		zap.L().Error("clickhouse insert failed", zap.Error(err), zap.String("event_type", EventPlanGenerated))
		return fmt.Errorf("insert %s event: %w", EventPlanGenerated, err)
	}
	return nil
}

func (a *Analytics) RecordPlacement(ctx context.Context, ev PlacementEvent) error {
	if a == nil || a.DB == nil {
		return ErrUnavailable
	}
	if _, err := a.DB.ExecContext(ctx, insertEvent, ev.Timestamp, EventPlacementBooked, ev.RequestID, "", ev.CampaignID, ev.PlacementID,
		"", "", "", "", ev.Publication,
		0.0, ev.Cost, uint32(ev.Insertions), uint8(0)); err != nil {
		a.Metrics.IncrementAnalyticsErrors()
		zap.L().Error("clickhouse insert failed", zap.Error(err), zap.String("event_type", EventPlacementBooked))
		return fmt.Errorf("insert %s event: %w", EventPlacementBooked, err)
	}
	return nil
}

const dailyActivityQuery = `SELECT
    toDate(timestamp) AS day,
    countIf(event_type = 'plan_generated') AS plans,
    countIf(event_type = 'placement_booked') AS placements,
    sumIf(budget, event_type = 'plan_generated') AS planned_budget,
    sumIf(cost, event_type = 'placement_booked') AS booked_spend,
    avgIf(score, event_type = 'plan_generated') AS avg_score,
    sumIf(insertions, event_type = 'placement_booked') AS insertions
FROM planning_events
WHERE timestamp >= ? AND timestamp < ?
GROUP BY day
ORDER BY day`

func (a *Analytics) DailyActivity(ctx context.Context, from, to time.Time) ([]DailyActivity, error) {
	if a == nil || a.DB == nil {
		return nil, ErrUnavailable
	}
	rows, err := a.DB.QueryContext(ctx, dailyActivityQuery, from, to)
	if err != nil {
		return nil, fmt.Errorf("query daily activity: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			zap.L().Warn("rows close", zap.Error(err))
		}
	}()

	out := make([]DailyActivity, 0)
	for rows.Next() {
		var d DailyActivity
		var avg sql.NullFloat64
		if err := rows.Scan(&d.Day, &d.PlansGenerated, &d.PlacementsBooked, &d.PlannedBudget, &d.BookedSpend, &avg, &d.BookedInsertions); err != nil {
			return nil, fmt.Errorf("scan daily activity: %w", err)
		}
		// avgIf yields NaN on days without plans.
		if avg.Valid && !math.IsNaN(avg.Float64) {
			d.AveragePlanScore = avg.Float64
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

// Close terminates the ClickHouse connection.
func (a *Analytics) Close() {
	if a != nil && a.DB != nil {
		if err := a.DB.Close(); err != nil {
			zap.L().Error("clickhouse close", zap.Error(err))
		}
	}
}

var _ AnalyticsService = (*Analytics)(nil)
