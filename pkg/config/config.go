// Package config holds the tunable constants of the classification core.
//
// Thresholds and scoring weights are deliberately configuration, not
// hard-coded values, so deployments can tune them and tests can pin them.
package config

import (
	"os"
	"strconv"
)

// Config carries the deployment-tunable parameters consumed by the engine,
// the analyzer and the compliance validator.
type Config struct {
	// ExpertReviewThreshold is the confidence below which a decision or a
	// completed classification is flagged for expert review. Flagged
	// classifications remain completable; human override is always permitted.
	ExpertReviewThreshold float64

	// PercentageTolerance is the allowed deviation from 100 when material
	// percentages are summed for GRI 2(b)/3(b) analysis.
	PercentageTolerance float64

	// BaseConfidence is the starting confidence of an essential-character
	// determination before gap, industry and precedent adjustments.
	BaseConfidence float64

	// ConfidenceCap bounds the analyzer's confidence from above.
	ConfidenceCap float64

	// LogLevel controls slog verbosity in the surrounding service.
	LogLevel string
}

// Default returns the production defaults.
func Default() *Config {
	return &Config{
		ExpertReviewThreshold: 0.7,
		PercentageTolerance:   0.01,
		BaseConfidence:        0.5,
		ConfidenceCap:         0.95,
		LogLevel:              "INFO",
	}
}

// Load builds a Config from environment variables, falling back to defaults.
func Load() *Config {
	cfg := Default()

	if v := os.Getenv("TARIFFCORE_EXPERT_REVIEW_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.ExpertReviewThreshold = f
		}
	}
	if v := os.Getenv("TARIFFCORE_PERCENTAGE_TOLERANCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.PercentageTolerance = f
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return cfg
}

// WeightVector weights the six essential-character sub-scores. A valid
// vector sums to 1.
type WeightVector struct {
	Weight        float64 `yaml:"weight" json:"weight"`
	Value         float64 `yaml:"value" json:"value"`
	Volume        float64 `yaml:"volume" json:"volume"`
	Function      float64 `yaml:"function" json:"function"`
	Marketability float64 `yaml:"marketability" json:"marketability"`
	VisualImpact  float64 `yaml:"visual_impact" json:"visual_impact"`
}

// Sum returns the total of all components.
func (w WeightVector) Sum() float64 {
	return w.Weight + w.Value + w.Volume + w.Function + w.Marketability + w.VisualImpact
}

// DefaultWeights is the vector used when no industry is detected. It favors
// function, then weight and value equally.
func DefaultWeights() WeightVector {
	return WeightVector{
		Function:      0.25,
		Weight:        0.20,
		Value:         0.20,
		Volume:        0.15,
		Marketability: 0.10,
		VisualImpact:  0.10,
	}
}
