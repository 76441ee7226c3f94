package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/patrickwarner/openmediaplan/internal/config"
	"github.com/patrickwarner/openmediaplan/internal/db"
	"github.com/patrickwarner/openmediaplan/internal/models"
	"github.com/patrickwarner/openmediaplan/internal/observability"
	"github.com/patrickwarner/openmediaplan/internal/planning"
	"github.com/patrickwarner/openmediaplan/internal/pricing"
	"github.com/patrickwarner/openmediaplan/internal/ratecard"
	"github.com/patrickwarner/openmediaplan/internal/validator"
)

// ChannelSummary is the budget and delivery of one channel in a plan.
type ChannelSummary struct {
	Channel     string  `json:"channel"`
	Budget      float64 `json:"budget"`
	Impressions float64 `json:"impressions"`
	Reach       float64 `json:"reach"`
	Details     string  `json:"details"`
}

type MediaPlanOutput struct {
	ClientName      string           `json:"client_name"`
	Budget          float64          `json:"budget"`
	Mix             models.MixSplit  `json:"mix"`
	Channels        []ChannelSummary `json:"channels"`
	TotalReach      float64          `json:"total_reach"`
	Frequency       float64          `json:"frequency"`
	BlendedCPM      float64          `json:"blended_cpm"`
	Coverage        float64          `json:"coverage"`
	Score           int              `json:"score"`
	Level           string           `json:"level"`
	Recommendations []string         `json:"recommendations"`
}

type QuotePlacementInput struct {
	Publication string   `json:"publication"`
	AdType      string   `json:"ad_type"`
	Position    string   `json:"position"`
	Size        string   `json:"size"`
	Dates       []string `json:"dates"`
	Quantity    int      `json:"quantity"`
	Discount    float64  `json:"discount,omitempty"`
}

type QuotePlacementOutput struct {
	Size            string  `json:"size"`
	UnitPrice       float64 `json:"unit_price"`
	TotalPrice      float64 `json:"total_price"`
	DiscountAmount  float64 `json:"discount_amount"`
	FinalPrice      float64 `json:"final_price"`
	Insertions      int     `json:"insertions"`
	RateCardVersion string  `json:"rate_card_version"`
}

type ListRateCardInput struct {
	Publication string `json:"publication,omitempty"`
	AdType      string `json:"ad_type,omitempty"`
	Position    string `json:"position,omitempty"`
}

type SizeOption struct {
	Key   string  `json:"key"`
	Price float64 `json:"price"`
}

type ListRateCardOutput struct {
	Version string       `json:"version"`
	Level   string       `json:"level"`
	Options []string     `json:"options,omitempty"`
	Sizes   []SizeOption `json:"sizes,omitempty"`
}

// PlanningTools exposes plan generation and rate card pricing as MCP tools.
type PlanningTools struct {
	engine    *planning.Engine
	pricer    *pricing.Pricer
	rateCards models.RateCardIndex
	validate  *validator.Validator
	logger    *zap.Logger
}

func NewPlanningTools(engine *planning.Engine, rateCards models.RateCardIndex, logger *zap.Logger) *PlanningTools {
	return &PlanningTools{
		engine:    engine,
		pricer:    pricing.NewPricer(rateCards),
		rateCards: rateCards,
		validate:  validator.New(),
		logger:    logger,
	}
}

// GenerateMediaPlan implements the generate_media_plan tool.
func (t *PlanningTools) GenerateMediaPlan(ctx context.Context, req *mcp.CallToolRequest, input models.BriefingData) (*mcp.CallToolResult, MediaPlanOutput, error) {
	if err := t.validate.Validate(input); err != nil {
		return nil, MediaPlanOutput{}, fmt.Errorf("invalid briefing: %w", err)
	}
	plan, err := t.engine.CalculatePlan(input)
	if err != nil {
		return nil, MediaPlanOutput{}, err
	}
	t.logger.Info("Generated media plan",
		zap.String("client", input.ClientName),
		zap.String("objective", string(input.Objective)),
		zap.Int("score", plan.Score.Score))
	return nil, summarizePlan(plan), nil
}

func summarizePlan(plan *models.MediaPlan) MediaPlanOutput {
	ch := plan.Channels
	channels := []ChannelSummary{
		{
			Channel:     "digital",
			Budget:      ch.Digital.Budget,
			Impressions: ch.Digital.Impressions,
			Reach:       ch.Digital.Reach,
			Details:     fmt.Sprintf("CPM %s", planning.FormatCurrency(ch.Digital.CPM)),
		},
		{
			Channel:     "print",
			Budget:      ch.Print.Budget,
			Impressions: ch.Print.Impressions,
			Reach:       ch.Print.Reach,
			Details:     fmt.Sprintf("%d insertions à %s", ch.Print.Insertions, planning.FormatCurrency(ch.Print.CostPerInsertion)),
		},
	}
	if v := ch.Video; v != nil {
		channels = append(channels, ChannelSummary{
			Channel:     "video",
			Budget:      v.Budget,
			Impressions: v.Impressions,
			Reach:       v.Reach,
			Details:     fmt.Sprintf("%s vues, production %s", planning.FormatNumber(v.Views), planning.FormatCurrency(v.Production)),
		})
	}
	recs := plan.Recommendations
	if recs == nil {
		recs = []string{}
	}
	return MediaPlanOutput{
		ClientName:      plan.Briefing.ClientName,
		Budget:          plan.Briefing.Budget,
		Mix:             plan.Mix,
		Channels:        channels,
		TotalReach:      plan.Metrics.TotalReach,
		Frequency:       plan.Metrics.Frequency,
		BlendedCPM:      plan.Metrics.BlendedCPM,
		Coverage:        plan.Metrics.Coverage,
		Score:           plan.Score.Score,
		Level:           string(plan.Score.Level),
		Recommendations: recs,
	}
}

// QuotePlacement implements the quote_placement tool.
func (t *PlanningTools) QuotePlacement(ctx context.Context, req *mcp.CallToolRequest, input QuotePlacementInput) (*mcp.CallToolResult, QuotePlacementOutput, error) {
	dates := make([]time.Time, 0, len(input.Dates))
	for _, d := range input.Dates {
		day, err := time.Parse(time.DateOnly, d)
		if err != nil {
			return nil, QuotePlacementOutput{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", d)
		}
		dates = append(dates, day)
	}
	q, err := t.pricer.Quote(pricing.Request{
		Publication: input.Publication,
		AdType:      input.AdType,
		Position:    input.Position,
		Size:        input.Size,
		Dates:       dates,
		Quantity:    input.Quantity,
		Discount:    input.Discount,
	})
	if err != nil {
		if errors.Is(err, models.ErrAmbiguousSize) {
			return nil, QuotePlacementOutput{}, fmt.Errorf("%w: pass the full size key from list_rate_card", err)
		}
		return nil, QuotePlacementOutput{}, err
	}
	return nil, QuotePlacementOutput{
		Size:            q.Entry.Key(),
		UnitPrice:       q.UnitPrice,
		TotalPrice:      q.TotalPrice,
		DiscountAmount:  q.DiscountAmount,
		FinalPrice:      q.FinalPrice,
		Insertions:      q.Insertions,
		RateCardVersion: q.RateCardVersion,
	}, nil
}

// ListRateCard implements the list_rate_card tool. It descends one level of
// the rate card per filled filter.
func (t *PlanningTools) ListRateCard(ctx context.Context, req *mcp.CallToolRequest, input ListRateCardInput) (*mcp.CallToolResult, ListRateCardOutput, error) {
	out := ListRateCardOutput{Version: t.rateCards.Version()}
	switch {
	case input.Publication == "":
		out.Level = "publication"
		out.Options = t.rateCards.Publications()
	case input.AdType == "":
		out.Level = "ad_type"
		out.Options = t.rateCards.AdTypes(input.Publication)
	case input.Position == "":
		out.Level = "position"
		out.Options = t.rateCards.Positions(input.Publication, input.AdType)
	default:
		out.Level = "size"
		for _, s := range t.rateCards.Sizes(input.Publication, input.AdType, input.Position) {
			out.Sizes = append(out.Sizes, SizeOption{Key: s.Key(), Price: s.Price})
		}
		if out.Sizes == nil {
			return nil, ListRateCardOutput{}, fmt.Errorf("%s / %s / %s: %w", input.Publication, input.AdType, input.Position, models.ErrNotFound)
		}
		return nil, out, nil
	}
	if out.Options == nil {
		return nil, ListRateCardOutput{}, fmt.Errorf("no %s options under the given filters: %w", out.Level, models.ErrNotFound)
	}
	return nil, out, nil
}

// loadRateCards prefers Postgres, then the configured file, then the
// embedded card.
func loadRateCards(ctx context.Context, cfg config.Config, logger *zap.Logger) (models.RateCardSet, error) {
	if cfg.PostgresEnabled {
		pg, err := db.InitPostgres(cfg.PostgresDSN, 2, 1, 30*time.Minute, 5*time.Minute)
		if err != nil {
			logger.Warn("Postgres unavailable, falling back", zap.Error(err))
		} else {
			defer pg.Close()
			set, err := pg.LoadRateCards(ctx)
			if err == nil && len(set.Cards) > 0 {
				return set, nil
			}
			if err != nil {
				logger.Warn("Failed to load rate cards from Postgres", zap.Error(err))
			}
		}
	}
	if cfg.RateCardFile != "" {
		return ratecard.LoadFile(cfg.RateCardFile)
	}
	return ratecard.Default()
}

func addTools(server *mcp.Server, tools *PlanningTools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_media_plan",
		Description: "Split a campaign budget across digital, print and video and estimate reach, frequency and a performance score",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"client_name": map[string]interface{}{"type": "string", "description": "Advertiser name"},
				"budget":      map[string]interface{}{"type": "number", "description": "Total budget in euros"},
				"objective": map[string]interface{}{
					"type": "string",
					"enum": []string{string(models.ObjectiveAwareness), string(models.ObjectiveTraffic), string(models.ObjectiveEngagement)},
				},
				"start_month": map[string]interface{}{"type": "string", "enum": models.Months},
				"duration":    map[string]interface{}{"type": "integer", "minimum": 1, "maximum": 52, "description": "Campaign length in weeks"},
				"target_age": map[string]interface{}{
					"type": "string",
					"enum": []string{string(models.Age18To34), string(models.Age25To45), string(models.Age35To54), string(models.Age45To65)},
				},
				"region": map[string]interface{}{
					"type": "string",
					"enum": []string{string(models.RegionBrusselsWallonia), string(models.RegionBrussels), string(models.RegionWallonia), string(models.RegionNational)},
				},
				"sector": map[string]interface{}{
					"type": "string",
					"enum": []string{string(models.SectorRetail), string(models.SectorServices), string(models.SectorAutomobile), string(models.SectorRealEstate), string(models.SectorFoodBeverage), string(models.SectorOther)},
				},
				"video_need": map[string]interface{}{
					"type": "string",
					"enum": []string{string(models.VideoProduction), string(models.VideoExisting), string(models.VideoNone)},
				},
				"additional_info": map[string]interface{}{"type": "string"},
			},
			"required": []string{"client_name", "budget", "objective", "start_month", "duration", "target_age", "region", "sector", "video_need"},
		},
	}, tools.GenerateMediaPlan)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "quote_placement",
		Description: "Price a press or web placement from the rate card",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"publication": map[string]interface{}{"type": "string"},
				"ad_type":     map[string]interface{}{"type": "string"},
				"position":    map[string]interface{}{"type": "string"},
				"size": map[string]interface{}{
					"type":        "string",
					"description": "Size key as returned by list_rate_card",
				},
				"dates": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string", "format": "date"},
					"description": "Distinct publication dates (YYYY-MM-DD)",
				},
				"quantity": map[string]interface{}{"type": "integer", "minimum": 1},
				"discount": map[string]interface{}{"type": "number", "minimum": 0, "maximum": 100, "description": "Discount percentage"},
			},
			"required": []string{"publication", "ad_type", "position", "size", "dates", "quantity"},
		},
	}, tools.QuotePlacement)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_rate_card",
		Description: "Browse the rate card one level at a time: publications, ad types, positions, then priced sizes",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"publication": map[string]interface{}{"type": "string"},
				"ad_type":     map[string]interface{}{"type": "string"},
				"position":    map[string]interface{}{"type": "string"},
			},
		},
	}, tools.ListRateCard)
}

func main() {
	cfg := config.Load()

	// zap's production config writes to stderr; stdout carries the MCP stream.
	logger, err := observability.NewLogger(observability.LogOptions{
		ServiceName: cfg.ServiceName + "-mcp",
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	planningCfg := planning.DefaultConfig()
	if cfg.PlanningConfigFile != "" {
		planningCfg, err = planning.LoadConfig(cfg.PlanningConfigFile)
		if err != nil {
			logger.Fatal("Failed to load planning config", zap.Error(err))
		}
	}
	engine, err := planning.NewEngine(planningCfg)
	if err != nil {
		logger.Fatal("Invalid planning config", zap.Error(err))
	}

	set, err := loadRateCards(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to load rate card", zap.Error(err))
	}
	rateCards, err := models.NewRateCardIndex(set)
	if err != nil {
		logger.Fatal("Invalid rate card", zap.Error(err))
	}
	logger.Info("Rate card loaded",
		zap.String("version", set.Version),
		zap.Int("entries", set.EntryCount()))

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "openmediaplan",
		Version: "1.0.0",
	}, nil)
	addTools(server, NewPlanningTools(engine, rateCards, logger))

	var logBuffer bytes.Buffer
	transport := &mcp.LoggingTransport{
		Transport: &mcp.StdioTransport{},
		Writer:    &logBuffer,
	}

	logger.Info("MCP server running via stdio")
	if err := server.Run(ctx, transport); err != nil {
		logger.Fatal("Server error", zap.Error(err), zap.String("mcp_logs", logBuffer.String()))
	}
}
