package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		env, level string
		want       zapcore.Level
	}{
		{"development", "", zap.DebugLevel},
		{"dev", "", zap.DebugLevel},
		{"production", "", zap.InfoLevel},
		{"", "", zap.InfoLevel},
		{"development", "warn", zap.WarnLevel},
		{"production", "DEBUG", zap.DebugLevel},
		{"staging", "verbose", zap.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFor(tt.env, tt.level), "env=%q level=%q", tt.env, tt.level)
	}
}

func TestSamplingRateFor(t *testing.T) {
	assert.Equal(t, 1.0, SamplingRateFor("dev"))
	assert.Equal(t, 0.5, SamplingRateFor("test"))
	assert.Equal(t, 0.1, SamplingRateFor("production"))
	assert.Equal(t, 0.1, SamplingRateFor(""))
}

func TestSampler_ReportResetsCounters(t *testing.T) {
	s := NewSampler(0.5)
	draws := []float64{0.1, 0.9, 0.4, 0.7}
	i := 0
	s.draw = func() float64 { v := draws[i%len(draws)]; i++; return v }

	for range draws {
		s.Sample()
	}

	core, logs := observer.New(zap.InfoLevel)
	total, sampled := s.Report(zap.New(core))
	assert.Equal(t, int64(4), total)
	assert.Equal(t, int64(2), sampled)
	if assert.Equal(t, 1, logs.Len()) {
		fields := logs.All()[0].ContextMap()
		assert.Equal(t, 0.5, fields["actual_rate"])
	}

	total, _ = s.Report(zap.New(core))
	assert.Zero(t, total)
	assert.Equal(t, 1, logs.Len(), "empty window must not log")
}

func TestSampler_Bounds(t *testing.T) {
	assert.True(t, NewSampler(1).Sample())
	assert.False(t, NewSampler(0).Sample())

	var nilSampler *Sampler
	assert.True(t, nilSampler.Sample())
	assert.Equal(t, 1.0, nilSampler.Rate())
}
