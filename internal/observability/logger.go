package observability

import (
	"math/rand/v2"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultServiceName names the logger and traces when no service name is configured.
const DefaultServiceName = "openmediaplan"

// LogOptions selects the name and verbosity of a service logger.
type LogOptions struct {
	ServiceName string
	Environment string // development, staging, test or production
	Level       string // DEBUG, INFO, WARN or ERROR; empty picks the environment default
}

// NewLogger builds the production JSON logger for a service, writing to
// stderr, and installs it as the global logger.
func NewLogger(opts LogOptions) (*zap.Logger, error) {
	name := opts.ServiceName
	if name == "" {
		name = DefaultServiceName
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(LevelFor(opts.Environment, opts.Level))

	// Field names match the log shipper's parsing rules
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.NameKey = "logger"
	cfg.EncoderConfig.CallerKey = "caller"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.StacktraceKey = "stacktrace"

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	logger = logger.Named(name).With(
		zap.String("service", name),
		zap.String("environment", normalizeEnv(opts.Environment)),
	)
	zap.ReplaceGlobals(logger)
	return logger, nil
}

// LevelFor returns the explicit level when it parses, otherwise debug in
// development and info everywhere else.
func LevelFor(environment, level string) zapcore.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return zap.DebugLevel
	case "INFO":
		return zap.InfoLevel
	case "WARN":
		return zap.WarnLevel
	case "ERROR":
		return zap.ErrorLevel
	}
	if normalizeEnv(environment) == "development" {
		return zap.DebugLevel
	}
	return zap.InfoLevel
}

// SamplingRateFor returns the fraction of per-request info logs kept in an
// environment.
func SamplingRateFor(environment string) float64 {
	switch normalizeEnv(environment) {
	case "development":
		return 1.0
	case "staging":
		return 0.5
	default:
		return 0.1
	}
}

func normalizeEnv(environment string) string {
	switch strings.ToLower(strings.TrimSpace(environment)) {
	case "development", "dev", "local":
		return "development"
	case "staging", "test":
		return "staging"
	default:
		return "production"
	}
}

// Sampler decides which per-request info logs are written and counts its
// decisions between reports. It is safe for concurrent use; a nil Sampler
// keeps every log.
type Sampler struct {
	rate    float64
	total   atomic.Int64
	sampled atomic.Int64
	draw    func() float64
}

// NewSampler keeps roughly rate of the logs, rate in [0,1].
func NewSampler(rate float64) *Sampler {
	return &Sampler{rate: rate, draw: rand.Float64}
}

// Rate returns the configured sampling rate.
func (s *Sampler) Rate() float64 {
	if s == nil {
		return 1
	}
	return s.rate
}

// Sample reports whether the next log should be written.
func (s *Sampler) Sample() bool {
	if s == nil {
		return true
	}
	var keep bool
	switch {
	case s.rate >= 1:
		keep = true
	case s.rate <= 0:
		keep = false
	default:
		keep = s.draw() < s.rate
	}
	s.total.Add(1)
	if keep {
		s.sampled.Add(1)
	}
	return keep
}

// Report logs the decisions taken since the previous report and resets the
// counters. Nothing is logged when no decision was taken.
func (s *Sampler) Report(logger *zap.Logger) (total, sampled int64) {
	if s == nil {
		return 0, 0
	}
	total = s.total.Swap(0)
	sampled = s.sampled.Swap(0)
	if total == 0 {
		return 0, 0
	}
	logger.Info("sampling stats",
		zap.Float64("target_rate", s.rate),
		zap.Float64("actual_rate", float64(sampled)/float64(total)),
		zap.Int64("total_logs", total),
		zap.Int64("sampled_logs", sampled),
	)
	return total, sampled
}
