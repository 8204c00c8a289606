package scoring

import (
	"path/filepath"

	"github.com/spigell/ats-checker/internal/document"
)

// Scorer scores documents against a fixed, normalized weight set. It is
// immutable and safe for concurrent use.
type Scorer struct {
	weights WeightSet
	source  string
}

// NewScorer normalizes set once and returns a Scorer using it.
func NewScorer(set WeightSet) *Scorer {
	if set.Resume == nil {
		set.Resume = DefaultResumeWeights()
	}
	if set.Job == nil {
		set.Job = DefaultJobWeights()
	}
	if set.Match == nil {
		set.Match = DefaultMatchWeights()
	}
	return &Scorer{weights: set.Normalized()}
}

// NewScorerFromFile loads weights from path, falling back to the defaults, and
// records the source in every report's meta.
func NewScorerFromFile(path string) *Scorer {
	scorer := NewScorer(LoadWeights(path))
	if path != "" {
		if abs, err := filepath.Abs(path); err == nil {
			scorer.source = abs
		} else {
			scorer.source = path
		}
	}
	return scorer
}

// Weights returns a copy of the normalized weights in use.
func (s *Scorer) Weights() WeightSet {
	return WeightSet{
		Resume: s.weights.Resume.Clone(),
		Job:    s.weights.Job.Clone(),
		Match:  s.weights.Match.Clone(),
	}
}

// Resume scores a resume document.
func (s *Scorer) Resume(resume document.Value) Report {
	return scoreResume(resume, s.weights.Resume, s.meta())
}

// Job scores a job posting document.
func (s *Scorer) Job(job document.Value) Report {
	return scoreJob(job, s.weights.Job, s.meta())
}

// Match scores a resume against a job posting.
func (s *Scorer) Match(resume, job document.Value) Report {
	return scoreMatch(resume, job, s.weights.Match, s.meta())
}

func (s *Scorer) meta() map[string]any {
	meta := map[string]any{}
	if s.source != "" {
		meta["weights_source"] = s.source
	}
	return meta
}
