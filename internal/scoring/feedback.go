package scoring

import (
	"fmt"
	"strings"
)

// CategorySummary is the name and score of a category.
type CategorySummary struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// ReportSummary is the part of a Report passed to a reviser.
type ReportSummary struct {
	Kind       Kind              `json:"kind"`
	Total      float64           `json:"total"`
	Categories []CategorySummary `json:"categories"`
}

// Feedback describes the current best state to a reviser.
type Feedback struct {
	Total  float64        `json:"total"`
	Resume *ReportSummary `json:"resume,omitempty"`
	Match  *ReportSummary `json:"match,omitempty"`
}

// Summarize keeps the total and the per-category scores of a report, in
// category order.
func Summarize(report *Report) *ReportSummary {
	if report == nil {
		return nil
	}

	summary := &ReportSummary{
		Kind:       report.Kind,
		Total:      report.Total,
		Categories: make([]CategorySummary, 0, len(report.Categories)),
	}
	for _, c := range report.Categories {
		summary.Categories = append(summary.Categories, CategorySummary{Name: c.Name, Score: c.Score})
	}
	return summary
}

// NewFeedback builds the feedback for the given best reports.
func NewFeedback(resume, match *Report, overall Weights) Feedback {
	return Feedback{
		Total:  Blend(resume, match, overall),
		Resume: Summarize(resume),
		Match:  Summarize(match),
	}
}

// String renders the feedback as a stable text block.
func (f Feedback) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "overall: %.1f\n", f.Total)

	for _, summary := range []*ReportSummary{f.Resume, f.Match} {
		if summary == nil {
			continue
		}
		fmt.Fprintf(&b, "%s: %.1f\n", summary.Kind, summary.Total)
		for _, c := range summary.Categories {
			fmt.Fprintf(&b, "  - %s: %.1f\n", c.Name, c.Score)
		}
	}

	return b.String()
}
