package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration derived from environment variables.
type Config struct {
	Port          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	RedisAddr     string
	ClickHouseDSN string
	PostgresDSN   string
	ServiceName   string
	Environment   string
	LogLevel      string
	// How often request-log sampling stats are reported and reset
	LogStatsInterval time.Duration

	// Storage toggles. Without Postgres, campaigns live in memory and the
	// rate card comes from RateCardFile or the embedded default.
	PostgresEnabled  bool
	AnalyticsEnabled bool
	PlanCacheEnabled bool
	PlanCacheTTL     time.Duration

	// Domain configuration files (YAML). Empty means built-in defaults.
	RateCardFile       string
	PlanningConfigFile string
	ReloadInterval     time.Duration

	// Per-client throttling of plan generation and quoting
	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int
	RateLimitIdleTTL time.Duration

	// Database connection pooling configuration
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration
	// ClickHouse connection pooling configuration
	CHMaxOpenConns    int
	CHMaxIdleConns    int
	CHConnMaxLifetime time.Duration
	CHConnMaxIdleTime time.Duration
	// Tracing configuration
	TracingEnabled    bool
	TracingEndpoint   string
	TracingSampleRate float64
}

// Load parses environment variables and returns a Config populated with
// defaults when variables are absent.
func Load() Config {
	cfg := Config{}

	cfg.Port = getenv("PORT", "8787")
	cfg.ReadTimeout = envDuration("READ_TIMEOUT", 5*time.Second)
	cfg.WriteTimeout = envDuration("WRITE_TIMEOUT", 15*time.Second)
	cfg.RedisAddr = getenv("REDIS_ADDR", "localhost:6379")
	cfg.ClickHouseDSN = getenv("CLICKHOUSE_DSN", "clickhouse://default:@localhost:9000/default?async_insert=1&wait_for_async_insert=1")
	cfg.PostgresDSN = getenv("POSTGRES_DSN", "postgres://postgres@127.0.0.1:5432/postgres?sslmode=disable")
	cfg.ServiceName = getenv("SERVICE_NAME", "openmediaplan")
	cfg.Environment = getenv("ENV", "production")
	cfg.LogLevel = getenv("LOG_LEVEL", "")
	cfg.LogStatsInterval = envDuration("LOG_STATS_INTERVAL", time.Minute)

	cfg.PostgresEnabled = envBool("POSTGRES_ENABLED", true)
	cfg.AnalyticsEnabled = envBool("ANALYTICS_ENABLED", false)
	cfg.PlanCacheEnabled = envBool("PLAN_CACHE_ENABLED", true)
	cfg.PlanCacheTTL = envDuration("PLAN_CACHE_TTL", 24*time.Hour)

	cfg.RateCardFile = getenv("RATE_CARD_FILE", "")
	cfg.PlanningConfigFile = getenv("PLANNING_CONFIG_FILE", "")
	// default to 5 minutes between automatic rate card reloads
	cfg.ReloadInterval = envDuration("RELOAD_INTERVAL", 5*time.Minute)

	cfg.RateLimitEnabled = envBool("RATE_LIMIT_ENABLED", true)
	cfg.RateLimitRPS = envFloat("RATE_LIMIT_RPS", 2)
	cfg.RateLimitBurst = envInt("RATE_LIMIT_BURST", 10)
	cfg.RateLimitIdleTTL = envDuration("RATE_LIMIT_IDLE_TTL", 10*time.Minute)

	// Database connection pooling configuration
	cfg.DBMaxOpenConns = envInt("DB_MAX_OPEN_CONNS", 25)
	cfg.DBMaxIdleConns = envInt("DB_MAX_IDLE_CONNS", 5)
	cfg.DBConnMaxLifetime = envDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	cfg.DBConnMaxIdleTime = envDuration("DB_CONN_MAX_IDLE_TIME", 1*time.Minute)

	// ClickHouse connection pooling configuration
	cfg.CHMaxOpenConns = envInt("CH_MAX_OPEN_CONNS", 10)
	cfg.CHMaxIdleConns = envInt("CH_MAX_IDLE_CONNS", 5)
	cfg.CHConnMaxLifetime = envDuration("CH_CONN_MAX_LIFETIME", 5*time.Minute)
	cfg.CHConnMaxIdleTime = envDuration("CH_CONN_MAX_IDLE_TIME", 1*time.Minute)

	// Tracing configuration
	cfg.TracingEnabled = envBool("TRACING_ENABLED", false)
	cfg.TracingEndpoint = getenv("TRACING_ENDPOINT", "tempo:4317")
	cfg.TracingSampleRate = envFloat("TRACING_SAMPLE_RATE", 1.0) // Default to 100% sampling for dev

	return cfg
}

// getenv returns the value of the environment variable if set, otherwise def.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envDuration parses an environment variable into a time.Duration.
// The value can be a duration string (e.g. "5s") or a number of seconds.
// If the variable is unset or invalid, def is returned.
func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

// envBool parses a boolean environment variable. Accepted values are those
// supported by strconv.ParseBool. When unset or invalid, def is returned.
func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return def
}

// envInt parses an integer environment variable. When unset or invalid, def is returned.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	return def
}

// envFloat parses a float64 environment variable. When unset or invalid, def is returned.
func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return def
}
