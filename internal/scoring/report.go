// Package scoring implements the deterministic resume, job and match scorers.
//
// Every scorer is pure: it reads a document, never mutates it, and always
// returns a report with category scores and totals inside [0, 100].
package scoring

import "math"

// Kind names the scored domain of a Report.
type Kind string

const (
	KindResume Kind = "resume"
	KindJob    Kind = "job"
	KindMatch  Kind = "match"
)

// Category names.
const (
	CategoryCompleteness      = "completeness"
	CategorySkillsQuality     = "skills_quality"
	CategoryExperienceQuality = "experience_quality"
	CategoryImpact            = "impact"

	CategoryClarity                  = "clarity"
	CategoryCompensationTransparency = "compensation_transparency"
	CategoryLinkQuality              = "link_quality"

	CategoryKeywordOverlap = "keyword_overlap"
	CategorySkillsOverlap  = "skills_overlap"
	CategoryRoleAlignment  = "role_alignment"
)

// CategoryScore is one scored aspect of a document.
type CategoryScore struct {
	Name    string         `json:"name" toml:"name"`
	Score   float64        `json:"score" toml:"score"`
	Weight  float64        `json:"weight" toml:"weight"`
	Details map[string]any `json:"details" toml:"details"`
}

// Report is the outcome of scoring a document.
type Report struct {
	Kind       Kind            `json:"kind" toml:"kind"`
	Total      float64         `json:"total" toml:"total"`
	Categories []CategoryScore `json:"categories" toml:"categories"`
	Meta       map[string]any  `json:"meta" toml:"meta"`
}

// Category returns the named category score.
func (r *Report) Category(name string) (CategoryScore, bool) {
	if r == nil {
		return CategoryScore{}, false
	}
	for _, category := range r.Categories {
		if category.Name == name {
			return category, true
		}
	}
	return CategoryScore{}, false
}

func newReport(kind Kind, categories []CategoryScore, meta map[string]any) Report {
	if meta == nil {
		meta = map[string]any{}
	}

	return Report{
		Kind:       kind,
		Total:      weightedTotal(categories),
		Categories: categories,
		Meta:       meta,
	}
}

func category(name string, score float64, weights Weights, details map[string]any) CategoryScore {
	if details == nil {
		details = map[string]any{}
	}
	return CategoryScore{
		Name:    name,
		Score:   clamp(score, 0, 100),
		Weight:  weights[name],
		Details: details,
	}
}

// weightedTotal is the weighted mean of the category scores. When the weights
// sum to zero it falls back to the plain mean.
func weightedTotal(categories []CategoryScore) float64 {
	if len(categories) == 0 {
		return 0
	}

	weightSum := 0.0
	for _, c := range categories {
		weightSum += c.Weight
	}

	if weightSum <= 0 {
		sum := 0.0
		for _, c := range categories {
			sum += c.Score
		}
		return clamp(sum/float64(len(categories)), 0, 100)
	}

	total := 0.0
	for _, c := range categories {
		total += c.Score * c.Weight
	}
	return clamp(total/weightSum, 0, 100)
}

// clamp bounds x to [lo, hi]. NaN and infinities collapse to 0.
func clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return math.Min(math.Max(x, lo), hi)
}

func ratio(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole)
}
