package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/patrickwarner/openmediaplan/internal/analytics"
	"github.com/patrickwarner/openmediaplan/internal/config"
	"github.com/patrickwarner/openmediaplan/internal/db"
	"github.com/patrickwarner/openmediaplan/internal/middleware"
	"github.com/patrickwarner/openmediaplan/internal/models"
	"github.com/patrickwarner/openmediaplan/internal/observability"
	"github.com/patrickwarner/openmediaplan/internal/planning"
	"github.com/patrickwarner/openmediaplan/internal/pricing"
	"github.com/patrickwarner/openmediaplan/internal/ratecard"
	"github.com/patrickwarner/openmediaplan/internal/validator"
)

var tracer trace.Tracer = observability.Tracer("openmediaplan/api")

// Server groups dependencies for HTTP handlers.
type Server struct {
	Logger    *zap.Logger
	RateCards models.RateCardIndex
	Pricer    *pricing.Pricer
	Campaigns models.CampaignStore
	PlanCache db.PlanCache
	PG        *db.Postgres
	Analytics analytics.AnalyticsService
	Recorder  *analytics.Recorder
	Metrics   observability.MetricsRegistry
	Config    config.Config
	Validator *validator.Validator
	Sampler   *observability.Sampler

	engine   atomic.Pointer[planning.Engine]
	reloadMu sync.Mutex
	now      func() time.Time
	newID    func() string
}

// NewServer constructs a Server. pg and analyticsSvc may be nil.
func NewServer(logger *zap.Logger, engine *planning.Engine, rateCards models.RateCardIndex, campaigns models.CampaignStore, planCache db.PlanCache, pg *db.Postgres, analyticsSvc analytics.AnalyticsService, metrics observability.MetricsRegistry, cfg config.Config) *Server {
	s := &Server{
		Logger:    logger,
		RateCards: rateCards,
		Pricer:    pricing.NewPricer(rateCards),
		Campaigns: campaigns,
		PlanCache: planCache,
		PG:        pg,
		Analytics: analyticsSvc,
		Recorder:  analytics.NewRecorder(analyticsSvc, logger),
		Metrics:   metrics,
		Config:    cfg,
		Validator: validator.New(),
		Sampler:   observability.NewSampler(observability.SamplingRateFor(cfg.Environment)),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	s.engine.Store(engine)
	metrics.SetRateCardEntries(rateCards.Snapshot().EntryCount())
	return s
}

// Engine returns the planning engine currently in use.
func (s *Server) Engine() *planning.Engine {
	return s.engine.Load()
}

// Reload refreshes the rate card and, when a planning config file is set,
// the planning engine. Both stay unchanged when their source is invalid.
func (s *Server) Reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	set, source, err := s.loadRateCards(ctx)
	if err != nil {
		s.Metrics.IncrementRateCardReloads("error")
		return fmt.Errorf("load rate card: %w", err)
	}
	if err := s.RateCards.Reload(set); err != nil {
		s.Metrics.IncrementRateCardReloads("invalid")
		return fmt.Errorf("install rate card from %s: %w", source, err)
	}
	s.Metrics.IncrementRateCardReloads("success")
	s.Metrics.SetRateCardEntries(set.EntryCount())
	s.Logger.Info("rate card reloaded",
		zap.String("source", source),
		zap.String("version", set.Version),
		zap.Int("entries", set.EntryCount()))

	if s.Config.PlanningConfigFile == "" {
		return nil
	}
	cfg, err := planning.LoadConfig(s.Config.PlanningConfigFile)
	if err != nil {
		return fmt.Errorf("load planning config: %w", err)
	}
	engine, err := planning.NewEngine(cfg)
	if err != nil {
		return err
	}
	s.engine.Store(engine)
	s.Logger.Info("planning config reloaded", zap.String("version", cfg.Version))
	return nil
}

// loadRateCards picks the first available source: Postgres when it holds
// entries, then the configured file, then the embedded default.
func (s *Server) loadRateCards(ctx context.Context) (models.RateCardSet, string, error) {
	if s.PG != nil {
		set, err := s.PG.LoadRateCards(ctx)
		if err != nil {
			return models.RateCardSet{}, "", err
		}
		if len(set.Cards) > 0 {
			return set, "postgres", nil
		}
	}
	if s.Config.RateCardFile != "" {
		set, err := ratecard.LoadFile(s.Config.RateCardFile)
		return set, s.Config.RateCardFile, err
	}
	set, err := ratecard.Default()
	return set, "embedded", err
}

// helper function to write JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error   string                     `json:"error"`
	Details validator.ValidationErrors `json:"details,omitempty"`
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs),
		errors.Is(err, errBadRequest),
		errors.Is(err, planning.ErrInvalidBriefing),
		errors.Is(err, planning.ErrUnknownObjective),
		errors.Is(err, pricing.ErrInvalidQuantity),
		errors.Is(err, pricing.ErrNoDates),
		errors.Is(err, pricing.ErrDuplicateDate),
		errors.Is(err, pricing.ErrDiscountOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrAmbiguousSize):
		return http.StatusConflict
	case errors.Is(err, planning.ErrBudgetInsufficientForProduction),
		errors.Is(err, pricing.ErrUnpriced):
		return http.StatusUnprocessableEntity
	case errors.Is(err, analytics.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as JSON with the status it maps to and returns that
// status. Internal errors are logged and hidden from the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) int {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		resp.Details = verrs
	}
	if status == http.StatusInternalServerError {
		middleware.LoggerFromRequest(r, s.Logger).Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		resp = errorResponse{Error: "internal error"}
	}
	writeJSON(w, status, resp)
	return status
}

// observe records the request metrics of a finished handler.
func (s *Server) observe(endpoint, method string, status int, start time.Time) {
	s.Metrics.IncrementRequests(endpoint, method, fmt.Sprint(status))
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
}

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// decodeJSON reads a JSON body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid json: %v", err)
	}
	return nil
}
