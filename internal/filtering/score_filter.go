package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/ats-checker/internal/logger"
	"github.com/spigell/ats-checker/internal/postings"
	"github.com/spigell/ats-checker/internal/scoring"
)

const (
	JobQualityName = "job_quality"
	MatchName      = "match"
)

// scoreFilter drops postings whose report total is below a threshold.
type scoreFilter struct {
	name     string
	minScore float64
	enabled  bool
	reason   string
	report   func(*postings.Posting) *scoring.Report
	logger   *zap.Logger
	rejected []*postings.Posting
}

// NewJobQuality drops postings whose job score is below minScore.
func NewJobQuality(minScore float64, logger *zap.Logger) Filter {
	return newScoreFilter(JobQualityName, minScore, logger, func(p *postings.Posting) *scoring.Report { return p.Score })
}

// NewMatch drops postings whose match score is below minScore.
func NewMatch(minScore float64, logger *zap.Logger) Filter {
	return newScoreFilter(MatchName, minScore, logger, func(p *postings.Posting) *scoring.Report { return p.Match })
}

func newScoreFilter(name string, minScore float64, logger *zap.Logger, report func(*postings.Posting) *scoring.Report) *scoreFilter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &scoreFilter{
		name:     name,
		minScore: minScore,
		enabled:  true,
		report:   report,
		logger:   logger,
	}
}

func (f *scoreFilter) Name() string { return f.name }

func (f *scoreFilter) Disable(reason string) {
	f.enabled = false
	f.reason = reason
}

func (f *scoreFilter) IsEnabled() bool { return f.enabled }

func (f *scoreFilter) Validate() error {
	if f.minScore < 0 || f.minScore > 100 {
		return fmt.Errorf("minimum score %.2f is outside [0, 100]", f.minScore)
	}
	return nil
}

func (f *scoreFilter) Apply(_ context.Context, p *postings.Postings) (*postings.Postings, Step, error) {
	initial := p.Len()
	f.rejected = nil

	for _, posting := range p.Items {
		if f.report(posting) == nil {
			return p, Step{}, fmt.Errorf("posting %s is not scored", posting.ID)
		}
	}

	p.RemoveIf(func(posting *postings.Posting) bool {
		score := f.report(posting).Total
		if score >= f.minScore {
			return false
		}
		f.logger.Info("posting rejected by score",
			zap.String("filter", f.name),
			zap.String(logger.FieldPosting, posting.ID),
			zap.Float64("score", score),
			zap.Float64("threshold", f.minScore),
		)
		f.rejected = append(f.rejected, posting)
		return true
	})

	return p, Step{Initial: initial, Dropped: initial - p.Len(), Left: p.Len()}, nil
}

// Rejected returns the postings dropped by the last Apply.
func (f *scoreFilter) Rejected() []*postings.Posting {
	return f.rejected
}

func (f *scoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.enabled,
		Reason:  f.reason,
		Details: map[string]string{"min_score": fmt.Sprintf("%.2f", f.minScore)},
	}
}
