package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 0.7, cfg.ExpertReviewThreshold)
	assert.Equal(t, 0.01, cfg.PercentageTolerance)
	assert.Equal(t, 0.5, cfg.BaseConfidence)
	assert.Equal(t, 0.95, cfg.ConfidenceCap)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TARIFFCORE_EXPERT_REVIEW_THRESHOLD", "0.85")
	t.Setenv("TARIFFCORE_PERCENTAGE_TOLERANCE", "0.5")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg := Load()
	assert.Equal(t, 0.85, cfg.ExpertReviewThreshold)
	assert.Equal(t, 0.5, cfg.PercentageTolerance)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestLoad_IgnoresMalformedEnv(t *testing.T) {
	t.Setenv("TARIFFCORE_EXPERT_REVIEW_THRESHOLD", "not-a-number")
	cfg := Load()
	assert.Equal(t, 0.7, cfg.ExpertReviewThreshold)
}

func TestDefaultWeights_SumToOne(t *testing.T) {
	assert.InDelta(t, 1.0, DefaultWeights().Sum(), 0.0001)
}
