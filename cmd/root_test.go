package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/ats-checker/internal/filtering"
	"github.com/spigell/ats-checker/internal/iteration"
	"github.com/spigell/ats-checker/internal/postings"
	"github.com/spigell/ats-checker/internal/scoring"
)

func newViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	setDefaults(v)
	if yaml != "" {
		path := filepath.Join(t.TempDir(), "ats-checker.yaml")
		require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
		require.NoError(t, readConfig(v, path))
	}
	return v
}

func TestDecodeConfigDefaults(t *testing.T) {
	cfg, err := decodeConfig(newViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, 3, cfg.AI.MaxRetries)
	assert.Equal(t, "best_of", cfg.Iteration.Strategy)
	assert.Equal(t, 80.0, cfg.Iteration.TargetScore)
	assert.Equal(t, 2*time.Minute, cfg.Iteration.ReviseTimeout)
	assert.True(t, cfg.Iteration.FailureCountsAsNoImprovement)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 5, cfg.Recommendations.MaxItems)

	defaults := iteration.DefaultConfig()
	converted := iterationConfig(cfg.Iteration)
	assert.Equal(t, defaults.Strategy, converted.Strategy)
	assert.Equal(t, defaults.MaxIterations, converted.MaxIterations)
	assert.Equal(t, defaults.MaxNoImprovement, converted.MaxNoImprovement)
}

func TestDecodeConfigFromFile(t *testing.T) {
	cfg, err := decodeConfig(newViper(t, `
weights-file: weights.toml
ai:
  provider: OpenAI
  model: gpt-4o-mini
  base-url: http://localhost:8080/v1
iteration:
  strategy: patience
  target-score: 90
  max-no-improvement: 3
  revise-timeout: 45s
rank:
  min-match-score: 55
  exclude-companies: [Acme, Globex]
`))
	require.NoError(t, err)

	assert.Equal(t, "weights.toml", cfg.WeightsFile)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	assert.Equal(t, "patience", cfg.Iteration.Strategy)
	assert.Equal(t, 90.0, cfg.Iteration.TargetScore)
	assert.Equal(t, 45*time.Second, cfg.Iteration.ReviseTimeout)
	assert.Equal(t, []string{"Acme", "Globex"}, cfg.Rank.ExcludeCompanies)
	assert.Equal(t, 55.0, cfg.Rank.MinMatchScore)
}

func TestDecodeConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{name: "strategy", yaml: "iteration:\n  strategy: greedy\n", field: "Strategy"},
		{name: "target", yaml: "iteration:\n  target-score: 120\n", field: "TargetScore"},
		{name: "budget", yaml: "iteration:\n  max-iterations: -1\n", field: "MaxIterations"},
		{name: "provider", yaml: "ai:\n  provider: llama\n", field: "Provider"},
		{name: "rank", yaml: "rank:\n  min-job-score: -5\n", field: "MinJobScore"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := decodeConfig(newViper(t, tc.yaml))
			if err == nil {
				t.Fatalf("expected validation error for %s", tc.field)
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Fatalf("expected error to mention %s, got %v", tc.field, err)
			}
		})
	}
}

func TestReadConfigMissingFile(t *testing.T) {
	v := viper.New()
	err := readConfig(v, filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestWriteOutput(t *testing.T) {
	report := scoring.Report{
		Kind:  scoring.KindJob,
		Total: 42.5,
		Categories: []scoring.CategoryScore{{
			Name:    scoring.CategoryClarity,
			Score:   40,
			Weight:  1,
			Details: map[string]any{"reason": "missing_description"},
		}},
		Meta: map[string]any{},
	}
	out := scoreOutput{Report: report}

	var jsonBuf bytes.Buffer
	require.NoError(t, writeOutput(&jsonBuf, formatJSON, out))
	assert.Contains(t, jsonBuf.String(), `"total": 42.5`)
	assert.NotContains(t, jsonBuf.String(), "recommendations")

	var tomlBuf bytes.Buffer
	require.NoError(t, writeOutput(&tomlBuf, formatTOML, out))
	assert.Contains(t, tomlBuf.String(), "total = 42.5")
	assert.Contains(t, tomlBuf.String(), "[[report.categories]]")

	assert.Error(t, writeOutput(&bytes.Buffer{}, "yaml", out))
}

func TestRankFilters(t *testing.T) {
	steps := rankFilters(RankConfig{MinMatchScore: 60}, nil)
	statuses := filtering.Describe(steps)
	require.Len(t, statuses, 4)

	enabled := map[string]bool{}
	for _, status := range statuses {
		enabled[status.Name] = status.Enabled
	}
	assert.True(t, enabled[filtering.MatchName])
	assert.False(t, enabled[filtering.JobQualityName])
	assert.True(t, enabled[filtering.CompaniesName])
}

func TestAppendRejected(t *testing.T) {
	rejected := &postings.Postings{Items: []*postings.Posting{{ID: "job-1"}}}
	assert.Error(t, appendRejected(" ", rejected))

	path := filepath.Join(t.TempDir(), "excluded.json")
	require.NoError(t, appendRejected(path, rejected))
	require.NoError(t, appendRejected(path, rejected))

	excluded, err := postings.ExcludedFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"job-1"}, excluded.IDs())
	assert.Equal(t, postings.ExcludeActorRank, excluded.Items[0].Actor)
}
