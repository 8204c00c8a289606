package scoring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlend(t *testing.T) {
	resume := &Report{Kind: KindResume, Total: 60}
	match := &Report{Kind: KindMatch, Total: 80}

	tests := []struct {
		name    string
		match   *Report
		overall Weights
		want    float64
	}{
		{name: "resume only", match: nil, overall: nil, want: 60},
		{name: "default blend", match: match, overall: nil, want: 60*0.45 + 80*0.55},
		{name: "custom blend is normalized", match: match, overall: Weights{BlendResume: 1, BlendMatch: 3}, want: 75},
		{name: "zero weights use midpoint", match: match, overall: Weights{BlendResume: 0, BlendMatch: 0}, want: 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Blend(resume, tt.match, tt.overall), 1e-9)
		})
	}

	assert.Equal(t, 0.0, Blend(nil, nil, nil))
}

func TestFeedbackString(t *testing.T) {
	resume := &Report{
		Kind:  KindResume,
		Total: 58.4,
		Categories: []CategoryScore{
			{Name: CategoryCompleteness, Score: 95},
			{Name: CategoryImpact, Score: 12.34},
		},
	}
	match := &Report{
		Kind:       KindMatch,
		Total:      40,
		Categories: []CategoryScore{{Name: CategoryKeywordOverlap, Score: 40}},
	}

	feedback := NewFeedback(resume, match, Weights{BlendResume: 1, BlendMatch: 1})
	assert.InDelta(t, 49.2, feedback.Total, 1e-9)

	want := "overall: 49.2\n" +
		"resume: 58.4\n" +
		"  - completeness: 95.0\n" +
		"  - impact: 12.3\n" +
		"match: 40.0\n" +
		"  - keyword_overlap: 40.0\n"
	assert.Equal(t, want, feedback.String())

	resumeOnly := NewFeedback(resume, nil, nil)
	assert.Nil(t, resumeOnly.Match)
	assert.Equal(t, 58.4, resumeOnly.Total)
}

func TestRecommend(t *testing.T) {
	report := &Report{
		Kind:  KindMatch,
		Total: 45,
		Categories: []CategoryScore{
			{Name: CategoryKeywordOverlap, Score: 30, Details: map[string]any{
				"sample_missing": []any{"docker", "go", "helm", "kafka", "redis", "terraform"},
			}},
			{Name: CategorySkillsOverlap, Score: 65},
			{Name: CategoryRoleAlignment, Score: 10},
		},
	}

	recs := Recommend(report, 10)
	require.Len(t, recs, 3)
	assert.Equal(t, "Resume needs significant improvement to meet ATS standards", recs[0].Message)
	assert.Equal(t, "Overall score is 45.0%, which is below the 50% threshold", recs[0].Reason)
	assert.Equal(t, "Include more job-specific keywords", recs[1].Message)
	assert.Equal(t, "Missing important keywords: docker, go, helm, kafka, redis", recs[1].Reason)
	assert.Equal(t, "Better align your job titles with the target role", recs[2].Message)

	assert.Len(t, Recommend(report, 2), 2)
	assert.Empty(t, Recommend(report, 0))
	assert.Empty(t, Recommend(nil, 5))
}

func TestRecommendMediumScores(t *testing.T) {
	report := &Report{
		Kind:  KindResume,
		Total: 65,
		Categories: []CategoryScore{
			{Name: CategoryImpact, Score: 60},
			{Name: CategoryCompleteness, Score: 90},
			{Name: CategoryKeywordOverlap, Score: 20},
		},
	}

	recs := Recommend(report, 5)
	require.Len(t, recs, 2)
	assert.Equal(t, "Resume could be improved to better match job requirements", recs[0].Message)
	assert.Equal(t, "Consider adding more quantifiable metrics to strengthen your impact", recs[1].Message)
}

func TestScorerRecordsWeightsSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.toml")
	require.NoError(t, os.WriteFile(path, []byte("[resume.weights]\nimpact = 0\n"), 0o600))

	scorer := NewScorerFromFile(path)
	report := scorer.Resume(mustParse(t, sampleResume))

	assert.Equal(t, path, report.Meta["weights_source"])
	assert.Equal(t, 0.0, categoryScore(t, report, CategoryImpact).Weight)
	assert.InDelta(t, 1.0, sum(scorer.Weights().Resume), 1e-9)

	plain := NewScorer(WeightSet{})
	assert.NotContains(t, plain.Job(mustParse(t, sampleJob)).Meta, "weights_source")
	assert.InDelta(t, ScoreJob(mustParse(t, sampleJob), nil).Total, plain.Job(mustParse(t, sampleJob)).Total, 1e-9)
}

func TestCachedScorer(t *testing.T) {
	_, err := NewCachedScorer(NewScorer(DefaultWeightSet()), 0)
	require.Error(t, err)

	cached, err := NewCachedScorer(NewScorer(DefaultWeightSet()), 8)
	require.NoError(t, err)

	first := cached.Resume(mustParse(t, `{"summary": "Go", "skills": ["Go"]}`))
	second := cached.Resume(mustParse(t, `{"skills": ["Go"], "summary": "Go"}`))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cached.Len())

	second.Categories[0].Details["has_summary"] = "tampered"
	third := cached.Resume(mustParse(t, `{"summary": "Go", "skills": ["Go"]}`))
	assert.Equal(t, true, third.Categories[0].Details["has_summary"])

	cached.Match(mustParse(t, matchResume), mustParse(t, sampleJob))
	cached.Job(mustParse(t, sampleJob))
	assert.Equal(t, 3, cached.Len())
}
