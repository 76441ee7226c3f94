// Seed Rate Card loads a rate card YAML file into Postgres, replacing the
// stored card, and optionally asks a running server to reload.
//
// Usage:
//
//	go run ./tools/seed_ratecard -file=configs/rate_card.yaml [-reload-url=http://localhost:8787/reload]
//
// Without -file the embedded rate card is seeded.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/patrickwarner/openmediaplan/internal/config"
	"github.com/patrickwarner/openmediaplan/internal/db"
	"github.com/patrickwarner/openmediaplan/internal/models"
	"github.com/patrickwarner/openmediaplan/internal/observability"
	"github.com/patrickwarner/openmediaplan/internal/ratecard"
)

var (
	file      = flag.String("file", "", "rate card YAML file (embedded card when empty)")
	reloadURL = flag.String("reload-url", "", "server reload endpoint to call after seeding")
)

func main() {
	flag.Parse()

	cfg := config.Load()
	logger, err := observability.NewLogger(observability.LogOptions{
		ServiceName: cfg.ServiceName + "-seed",
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	set, err := loadSet(*file)
	if err != nil {
		logger.Fatal("load rate card", zap.Error(err))
	}
	// Reject the card before touching the database.
	if _, err := models.NewRateCardIndex(set); err != nil {
		logger.Fatal("invalid rate card", zap.Error(err))
	}

	pg, err := db.InitPostgres(cfg.PostgresDSN, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime, cfg.DBConnMaxIdleTime)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect postgres: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := pg.ReplaceRateCards(ctx, set); err != nil {
		logger.Fatal("replace rate cards", zap.Error(err))
	}
	logger.Info("rate card seeded",
		zap.String("version", set.Version),
		zap.Int("publications", len(set.Cards)),
		zap.Int("entries", set.EntryCount()))

	if *reloadURL != "" {
		if err := triggerReload(ctx, *reloadURL); err != nil {
			logger.Warn("reload failed", zap.Error(err))
			return
		}
		logger.Info("server reloaded", zap.String("url", *reloadURL))
	}
}

func loadSet(path string) (models.RateCardSet, error) {
	if path == "" {
		return ratecard.Default()
	}
	return ratecard.LoadFile(path)
}

func triggerReload(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("reload returned %s", resp.Status)
	}
	return nil
}
