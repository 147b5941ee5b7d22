package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "industries.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadIndustryProfiles(t *testing.T) {
	path := writeProfile(t, `
industries:
  - name: Textiles
    keywords: [fabric, woven, knit]
    method: chief weight
    weights:
      weight: 0.35
      value: 0.15
      volume: 0.10
      function: 0.15
      marketability: 0.10
      visual_impact: 0.15
`)

	profiles, err := LoadIndustryProfiles(path)
	require.NoError(t, err)
	require.Len(t, profiles, 1)

	assert.Equal(t, "textiles", profiles[0].Name)
	assert.Equal(t, "chief weight", profiles[0].Method)
	assert.InDelta(t, 1.0, profiles[0].Weights.Sum(), 0.001)
}

func TestLoadIndustryProfiles_RejectsBadWeightSum(t *testing.T) {
	path := writeProfile(t, `
industries:
  - name: toys
    keywords: [doll]
    method: play value
    weights:
      weight: 0.9
      value: 0.9
`)
	_, err := LoadIndustryProfiles(path)
	assert.ErrorContains(t, err, "weights sum")
}

func TestLoadIndustryProfiles_MissingFile(t *testing.T) {
	_, err := LoadIndustryProfiles(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadIndustryProfiles_RequiresName(t *testing.T) {
	path := writeProfile(t, `
industries:
  - keywords: [x]
    weights:
      function: 1.0
`)
	_, err := LoadIndustryProfiles(path)
	assert.ErrorContains(t, err, "no name")
}
