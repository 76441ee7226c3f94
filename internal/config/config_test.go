package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "8787", cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.ReloadInterval)
	assert.Equal(t, 24*time.Hour, cfg.PlanCacheTTL)
	assert.True(t, cfg.RateLimitEnabled)
	assert.Equal(t, 2.0, cfg.RateLimitRPS)
	assert.Equal(t, "", cfg.RateCardFile)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, time.Minute, cfg.LogStatsInterval)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("PLAN_CACHE_TTL", "3600")
	t.Setenv("RELOAD_INTERVAL", "30s")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("RATE_LIMIT_RPS", "0.5")
	t.Setenv("RATE_LIMIT_BURST", "3")
	t.Setenv("RATE_CARD_FILE", "/etc/mediaplan/rates.yaml")
	t.Setenv("ANALYTICS_ENABLED", "true")
	t.Setenv("ENV", "staging")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, time.Hour, cfg.PlanCacheTTL)
	assert.Equal(t, 30*time.Second, cfg.ReloadInterval)
	assert.False(t, cfg.RateLimitEnabled)
	assert.Equal(t, 0.5, cfg.RateLimitRPS)
	assert.Equal(t, 3, cfg.RateLimitBurst)
	assert.Equal(t, "/etc/mediaplan/rates.yaml", cfg.RateCardFile)
	assert.True(t, cfg.AnalyticsEnabled)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("READ_TIMEOUT", "soon")
	t.Setenv("RATE_LIMIT_BURST", "many")
	t.Setenv("TRACING_ENABLED", "maybe")

	cfg := Load()
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 10, cfg.RateLimitBurst)
	assert.False(t, cfg.TracingEnabled)
}
