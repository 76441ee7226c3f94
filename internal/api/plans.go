package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/patrickwarner/openmediaplan/internal/analytics"
	"github.com/patrickwarner/openmediaplan/internal/export"
	"github.com/patrickwarner/openmediaplan/internal/middleware"
	"github.com/patrickwarner/openmediaplan/internal/models"
	"github.com/patrickwarner/openmediaplan/internal/planning"
)

// planErrorReason labels a planning failure for metrics.
func planErrorReason(err error) string {
	switch {
	case errors.Is(err, planning.ErrInvalidBriefing):
		return "invalid_briefing"
	case errors.Is(err, planning.ErrBudgetInsufficientForProduction):
		return "insufficient_video_budget"
	case errors.Is(err, planning.ErrUnknownObjective):
		return "unknown_objective"
	default:
		return "internal"
	}
}

// CreatePlanHandler handles POST /plans. It generates a media plan from the
// briefing in the body, caches it and returns it with its ID.
func (s *Server) CreatePlanHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "CreatePlanHandler",
		trace.WithAttributes(
			attribute.String("http.method", "POST"),
			attribute.String("http.route", "/plans"),
		))
	defer span.End()

	logger := middleware.LoggerFromRequest(r, s.Logger)
	start := time.Now()
	const endpoint = "plans"
	const method = "POST"

	var b models.BriefingData
	if err := decodeJSON(r, &b); err != nil {
		s.Metrics.IncrementPlanErrors("invalid_json")
		s.observe(endpoint, method, s.writeError(w, r, err), start)
		return
	}
	span.SetAttributes(
		attribute.String("objective", string(b.Objective)),
		attribute.String("video_need", string(b.VideoNeed)),
		attribute.Float64("budget", b.Budget),
	)

	plan, err := s.Engine().CalculatePlan(b)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "plan failed")
		s.Metrics.IncrementPlanErrors(planErrorReason(err))
		logger.Info("plan rejected", zap.Error(err))
		s.observe(endpoint, method, s.writeError(w, r, err), start)
		return
	}

	stored := &models.StoredPlan{ID: s.newID(), Plan: plan}
	if s.PlanCache != nil && s.Config.PlanCacheEnabled {
		if err := s.PlanCache.SavePlan(ctx, stored, s.Config.PlanCacheTTL); err != nil {
			logger.Warn("plan cache save failed", zap.String("plan_id", stored.ID), zap.Error(err))
		}
	}

	s.Metrics.IncrementPlansGenerated(string(b.Objective), string(b.VideoNeed))
	s.Metrics.RecordPlanScore(plan.Score.Score)
	s.Recorder.Plan(analytics.NewPlanEvent(middleware.RequestIDFromContext(ctx), stored.ID, plan))
	span.SetAttributes(attribute.String("plan_id", stored.ID), attribute.Int("score", plan.Score.Score))

	if s.Sampler.Sample() {
		logger.Info("plan generated",
			zap.String("plan_id", stored.ID),
			zap.String("objective", string(b.Objective)),
			zap.Float64("budget", b.Budget),
			zap.Int("score", plan.Score.Score))
	}

	writeJSON(w, http.StatusCreated, stored)
	s.observe(endpoint, method, http.StatusCreated, start)
}

// lookupPlan fetches a cached plan and records the cache outcome.
func (s *Server) lookupPlan(r *http.Request) (*models.StoredPlan, error) {
	if s.PlanCache == nil {
		s.Metrics.IncrementPlanCacheLookups("disabled")
		return nil, models.ErrNotFound
	}
	id := mux.Vars(r)["id"]
	plan, err := s.PlanCache.GetPlan(r.Context(), id)
	switch {
	case err == nil:
		s.Metrics.IncrementPlanCacheLookups("hit")
	case errors.Is(err, models.ErrNotFound):
		s.Metrics.IncrementPlanCacheLookups("miss")
	default:
		s.Metrics.IncrementPlanCacheLookups("error")
	}
	return plan, err
}

// GetPlanHandler handles GET /plans/{id}.
func (s *Server) GetPlanHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "plans_get"
	const method = "GET"

	plan, err := s.lookupPlan(r)
	if err != nil {
		s.observe(endpoint, method, s.writeError(w, r, err), start)
		return
	}
	writeJSON(w, http.StatusOK, plan)
	s.observe(endpoint, method, http.StatusOK, start)
}

// ExportPlanHandler handles GET /plans/{id}/export.xlsx.
func (s *Server) ExportPlanHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "plans_export"
	const method = "GET"

	plan, err := s.lookupPlan(r)
	if err != nil {
		s.observe(endpoint, method, s.writeError(w, r, err), start)
		return
	}
	f, err := export.MediaPlanWorkbook(plan.Plan)
	if err != nil {
		s.observe(endpoint, method, s.writeError(w, r, err), start)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename("plan", plan.Plan.Briefing.ClientName)+`"`)
	if err := export.Write(w, f); err != nil {
		middleware.LoggerFromRequest(r, s.Logger).Error("plan export failed", zap.String("plan_id", plan.ID), zap.Error(err))
		s.observe(endpoint, method, http.StatusInternalServerError, start)
		return
	}
	s.observe(endpoint, method, http.StatusOK, start)
}
