package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/patrickwarner/openmediaplan/internal/analytics"
	"github.com/patrickwarner/openmediaplan/internal/api"
	"github.com/patrickwarner/openmediaplan/internal/config"
	"github.com/patrickwarner/openmediaplan/internal/db"
	"github.com/patrickwarner/openmediaplan/internal/models"
	"github.com/patrickwarner/openmediaplan/internal/observability"
	"github.com/patrickwarner/openmediaplan/internal/planning"
	"github.com/patrickwarner/openmediaplan/internal/ratecard"
	"github.com/patrickwarner/openmediaplan/internal/ratelimit"
)

var version = "dev"

func main() {
	cfg := config.Load()

	logger, err := observability.NewLogger(observability.LogOptions{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	defer func() {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to sync logger: %v\n", err)
		}
	}()

	if err := run(logger, cfg); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdown, err := observability.InitTracing(ctx, logger, observability.TracingConfig{
			ServiceName:    cfg.ServiceName,
			ServiceVersion: version,
			Environment:    cfg.Environment,
			Endpoint:       cfg.TracingEndpoint,
			SampleRate:     cfg.TracingSampleRate,
		})
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer shutdown()
	}

	metricsRegistry := observability.NewPrometheusRegistry()

	planningCfg := planning.DefaultConfig()
	if cfg.PlanningConfigFile != "" {
		loaded, err := planning.LoadConfig(cfg.PlanningConfigFile)
		if err != nil {
			return err
		}
		planningCfg = loaded
	}
	engine, err := planning.NewEngine(planningCfg)
	if err != nil {
		return err
	}

	// The embedded rate card seeds the index; Reload below installs the
	// configured source.
	seed, err := ratecard.Default()
	if err != nil {
		return fmt.Errorf("embedded rate card: %w", err)
	}
	rateCards, err := models.NewRateCardIndex(seed)
	if err != nil {
		return fmt.Errorf("embedded rate card: %w", err)
	}

	var (
		pg        *db.Postgres
		campaigns models.CampaignStore = models.NewInMemoryCampaignStore()
	)
	if cfg.PostgresEnabled {
		pg, err = db.InitPostgres(cfg.PostgresDSN, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime, cfg.DBConnMaxIdleTime)
		if err != nil {
			return fmt.Errorf("failed to connect postgres: %w", err)
		}
		defer pg.Close()
		campaigns = pg.CampaignStore()
	} else {
		logger.Warn("postgres disabled, campaigns are kept in memory")
	}

	var planCache db.PlanCache = db.NewMemoryPlanCache()
	if cfg.PlanCacheEnabled && cfg.RedisAddr != "" {
		store, err := db.InitRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return fmt.Errorf("failed to connect redis: %w", err)
		}
		defer store.Close()
		planCache = store
	}

	var analyticsSvc analytics.AnalyticsService
	if cfg.AnalyticsEnabled {
		ch, err := analytics.InitClickHouse(cfg.ClickHouseDSN, cfg.CHMaxOpenConns, cfg.CHMaxIdleConns, cfg.CHConnMaxLifetime, cfg.CHConnMaxIdleTime, metricsRegistry)
		if err != nil {
			return fmt.Errorf("failed to connect clickhouse: %w", err)
		}
		defer ch.Close()
		analyticsSvc = ch
	}

	srvDeps := api.NewServer(logger, engine, rateCards, campaigns, planCache, pg, analyticsSvc, metricsRegistry, cfg)
	if err := srvDeps.Reload(ctx); err != nil {
		return fmt.Errorf("initial reload: %w", err)
	}
	defer srvDeps.Recorder.Wait()

	var limiter *ratelimit.ClientLimiter
	if cfg.RateLimitEnabled {
		limiter = ratelimit.NewClientLimiter(ratelimit.Config{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
			Enabled:           true,
			IdleTTL:           cfg.RateLimitIdleTTL,
		}, metricsRegistry)
	}

	r := mux.NewRouter()
	srvDeps.Routes(r, limiter)
	r.Handle("/metrics", promhttp.Handler())

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Info("Media plan server running",
		zap.String("addr", addr),
		zap.String("rate_card_version", rateCards.Version()),
		zap.String("planning_version", srvDeps.Engine().Config().Version))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen: %w", err)
		}
	}()

	if cfg.ReloadInterval > 0 {
		go reloadLoop(ctx, logger, srvDeps, cfg.ReloadInterval)
	}
	go maintenanceLoop(ctx, logger, srvDeps.Sampler, limiter, maintenanceInterval(cfg))

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}

func reloadLoop(ctx context.Context, logger *zap.Logger, srv *api.Server, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := srv.Reload(ctx); err != nil {
				logger.Error("auto reload", zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}

// maintenanceInterval is the log stats interval, tightened to half the rate
// limit idle TTL so idle buckets never outlive their TTL by more than half.
func maintenanceInterval(cfg config.Config) time.Duration {
	interval := cfg.LogStatsInterval
	if interval <= 0 {
		interval = time.Minute
	}
	if cfg.RateLimitEnabled && cfg.RateLimitIdleTTL > 0 && cfg.RateLimitIdleTTL/2 < interval {
		interval = cfg.RateLimitIdleTTL / 2
	}
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}

// maintenanceLoop reports request-log sampling and evicts idle rate limit
// buckets until ctx is done.
func maintenanceLoop(ctx context.Context, logger *zap.Logger, sampler *observability.Sampler, limiter *ratelimit.ClientLimiter, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			runMaintenance(logger, sampler, limiter)
		case <-ctx.Done():
			return
		}
	}
}

func runMaintenance(logger *zap.Logger, sampler *observability.Sampler, limiter *ratelimit.ClientLimiter) {
	sampler.Report(logger)
	if limiter != nil {
		if n := limiter.Cleanup(); n > 0 {
			logger.Debug("evicted idle rate limit buckets", zap.Int("count", n))
		}
	}
}
