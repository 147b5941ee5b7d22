package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// IndustryProfile is a deployment-supplied industry definition overriding or
// extending the built-in essential-character tables.
type IndustryProfile struct {
	Name     string       `yaml:"name" json:"name"`
	Keywords []string     `yaml:"keywords" json:"keywords"`
	Method   string       `yaml:"method" json:"method"`
	Weights  WeightVector `yaml:"weights" json:"weights"`
}

// LoadIndustryProfiles loads industry weight profiles from a YAML file. The
// file holds a list of profiles; each weight vector must sum to 1 within a
// small tolerance.
func LoadIndustryProfiles(path string) ([]IndustryProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: load industry profiles: %w", err)
	}

	var doc struct {
		Industries []IndustryProfile `yaml:"industries"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parse industry profiles %q: %w", filepath.Base(path), err)
	}

	for i := range doc.Industries {
		p := &doc.Industries[i]
		p.Name = strings.ToLower(strings.TrimSpace(p.Name))
		if p.Name == "" {
			return nil, fmt.Errorf("config: industry profile %d has no name", i)
		}
		if sum := p.Weights.Sum(); math.Abs(sum-1.0) > 0.001 {
			return nil, fmt.Errorf("config: industry %q weights sum to %.3f, want 1.0", p.Name, sum)
		}
	}

	return doc.Industries, nil
}
