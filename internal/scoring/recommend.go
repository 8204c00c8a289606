package scoring

import (
	"fmt"
	"strings"
)

// Recommendation is a human readable improvement hint derived from a report.
type Recommendation struct {
	Message string `json:"message" toml:"message"`
	Reason  string `json:"reason,omitempty" toml:"reason,omitempty"`
}

// Recommend derives up to limit hints from a report, starting with the overall
// verdict and following the category order.
func Recommend(report *Report, limit int) []Recommendation {
	if report == nil || limit <= 0 {
		return nil
	}

	var out []Recommendation
	switch {
	case report.Total < 50:
		out = append(out, Recommendation{
			Message: "Resume needs significant improvement to meet ATS standards",
			Reason:  fmt.Sprintf("Overall score is %.1f%%, which is below the 50%% threshold", report.Total),
		})
	case report.Total < 70:
		out = append(out, Recommendation{
			Message: "Resume could be improved to better match job requirements",
			Reason:  fmt.Sprintf("Overall score is %.1f%%, aiming for 70%%+ is recommended", report.Total),
		})
	}

	for _, c := range report.Categories {
		var rec *Recommendation
		switch {
		case c.Score < 50:
			rec = lowCategoryHint(c)
		case c.Score < 70:
			rec = mediumCategoryHint(c)
		}
		if rec != nil {
			out = append(out, *rec)
		}
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func lowCategoryHint(c CategoryScore) *Recommendation {
	switch c.Name {
	case CategoryCompleteness:
		return &Recommendation{
			Message: "Add missing resume sections",
			Reason:  "Completeness score is low. Ensure you have: contact info, summary, experience, skills, and education sections",
		}
	case CategorySkillsQuality:
		return &Recommendation{
			Message: "Improve skills section",
			Reason:  "Add more relevant technical skills and tools. Include proficiency levels where applicable",
		}
	case CategoryExperienceQuality:
		return &Recommendation{
			Message: "Enhance work experience descriptions",
			Reason:  "Use action verbs, quantify achievements, and highlight impact in your experience bullet points",
		}
	case CategoryImpact:
		return &Recommendation{
			Message: "Add more quantifiable achievements",
			Reason:  "Include numbers, metrics, and concrete results (e.g., 'Increased revenue by 25%', 'Reduced processing time by 40%')",
		}
	case CategoryKeywordOverlap:
		missing := missingKeywords(c.Details, 5)
		if len(missing) == 0 {
			return nil
		}
		return &Recommendation{
			Message: "Include more job-specific keywords",
			Reason:  "Missing important keywords: " + strings.Join(missing, ", "),
		}
	case CategorySkillsOverlap:
		return &Recommendation{
			Message: "Add skills mentioned in job description",
			Reason:  "Your resume is missing several skills listed in the job requirements",
		}
	case CategoryRoleAlignment:
		return &Recommendation{
			Message: "Better align your job titles with the target role",
			Reason:  "Your experience titles don't closely match the job title. Consider highlighting transferable responsibilities",
		}
	}
	return nil
}

func mediumCategoryHint(c CategoryScore) *Recommendation {
	switch c.Name {
	case CategoryImpact:
		return &Recommendation{Message: "Consider adding more quantifiable metrics to strengthen your impact"}
	case CategoryKeywordOverlap:
		return &Recommendation{Message: "Review job description for additional keywords to include"}
	}
	return nil
}

// missingKeywords reads the sample of missing job tokens. Reports decoded from
// JSON carry []any instead of []string.
func missingKeywords(details map[string]any, limit int) []string {
	var out []string
	switch sample := details["sample_missing"].(type) {
	case []string:
		out = append(out, sample...)
	case []any:
		for _, item := range sample {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
