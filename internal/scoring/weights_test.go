package scoring

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sum(w Weights) float64 {
	total := 0.0
	for _, value := range w {
		total += value
	}
	return total
}

func TestDefaultWeightsAreFresh(t *testing.T) {
	first := DefaultResumeWeights()
	first[CategoryCompleteness] = 99

	assert.Equal(t, 0.30, DefaultResumeWeights()[CategoryCompleteness])
	assert.InDelta(t, 1.0, sum(DefaultJobWeights()), 1e-9)
	assert.InDelta(t, 1.0, sum(DefaultMatchWeights()), 1e-9)
	assert.InDelta(t, 1.0, sum(DefaultOverallWeights()), 1e-9)
}

func TestNormalizeWeights(t *testing.T) {
	tests := []struct {
		name  string
		input Weights
		want  Weights
	}{
		{
			name:  "rescales positive weights",
			input: Weights{"a": 2, "b": 6},
			want:  Weights{"a": 0.25, "b": 0.75},
		},
		{
			name:  "non-positive entries become zero",
			input: Weights{"a": 1, "b": -3, "c": 0, "d": 1},
			want:  Weights{"a": 0.5, "b": 0, "c": 0, "d": 0.5},
		},
		{
			name:  "all zero keeps keys",
			input: Weights{"a": 0, "b": -1},
			want:  Weights{"a": 0, "b": 0},
		},
		{
			name:  "empty",
			input: Weights{},
			want:  Weights{},
		},
		{
			name:  "non-finite entries become zero",
			input: Weights{"a": math.Inf(1), "b": 1, "c": math.NaN(), "d": math.Inf(-1), "e": 3},
			want:  Weights{"a": 0, "b": 0.25, "c": 0, "d": 0, "e": 0.75},
		},
		{
			name:  "only infinite entries",
			input: Weights{"a": math.Inf(1), "b": math.Inf(1)},
			want:  Weights{"a": 0, "b": 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeWeights(tt.input)
			require.Len(t, got, len(tt.want))
			for key, want := range tt.want {
				assert.InDelta(t, want, got[key], 1e-9, key)
			}
		})
	}
}

func TestNormalizeWeightsSumsToOneOrZero(t *testing.T) {
	inputs := []Weights{
		DefaultResumeWeights(),
		{"x": 0.1, "y": 0.1, "z": 0.1},
		{"x": 1e-9, "y": 1e9},
		{"x": -1},
		{"x": 3, "y": 0},
	}

	for _, input := range inputs {
		total := sum(NormalizeWeights(input))
		if total != 0 {
			assert.InDelta(t, 1.0, total, 1e-9, "%v", input)
		}
	}

	input := Weights{"a": 3, "b": 1}
	NormalizeWeights(input)
	assert.Equal(t, Weights{"a": 3, "b": 1}, input)
}

func TestParseWeightsTOML(t *testing.T) {
	set, overall := ParseWeights([]byte(`
[resume.weights]
completeness = 1
impact = 0.5
ignored = "heavy"

[job.weight]
clarity = 0.9

[match]
role_alignment = 0.0

[overall.weights]
resume = 3
match = 1
extra = 7
`))

	assert.Equal(t, 1.0, set.Resume[CategoryCompleteness])
	assert.Equal(t, 0.5, set.Resume[CategoryImpact])
	assert.Equal(t, 0.20, set.Resume[CategorySkillsQuality])
	assert.NotContains(t, set.Resume, "ignored")

	assert.Equal(t, 0.9, set.Job[CategoryClarity])
	assert.Equal(t, 0.35, set.Job[CategoryCompleteness])

	assert.Equal(t, 0.0, set.Match[CategoryRoleAlignment])
	assert.Equal(t, 0.45, set.Match[CategoryKeywordOverlap])

	assert.Equal(t, Weights{BlendResume: 3, BlendMatch: 1}, overall)
}

func TestParseWeightsJSONFallback(t *testing.T) {
	set, overall := ParseWeights([]byte(`{"match": {"weights": {"skills_overlap": 2}}}`))

	assert.Equal(t, 2.0, set.Match[CategorySkillsOverlap])
	assert.Equal(t, DefaultResumeWeights(), set.Resume)
	assert.Equal(t, DefaultOverallWeights(), overall)
}

func TestParseWeightsGarbageFallsBack(t *testing.T) {
	set, overall := ParseWeights([]byte("{{ not a config"))

	assert.Equal(t, DefaultWeightSet(), set)
	assert.Equal(t, DefaultOverallWeights(), overall)
}

func TestLoadWeights(t *testing.T) {
	assert.Equal(t, DefaultWeightSet(), LoadWeights(""))
	assert.Equal(t, DefaultWeightSet(), LoadWeights(filepath.Join(t.TempDir(), "missing.toml")))
	assert.Equal(t, DefaultOverallWeights(), LoadOverallWeights(filepath.Join(t.TempDir(), "missing.toml")))

	path := filepath.Join(t.TempDir(), "weights.toml")
	require.NoError(t, os.WriteFile(path, []byte("[job]\nlink_quality = 0.5\n[overall]\nmatch = 0.9\n"), 0o600))

	set := LoadWeights(path)
	assert.Equal(t, 0.5, set.Job[CategoryLinkQuality])

	overall := LoadOverallWeights(path)
	assert.Equal(t, 0.9, overall[BlendMatch])
	assert.Equal(t, 0.45, overall[BlendResume])
}
