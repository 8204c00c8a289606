package scoring

import (
	"math"
	"strings"

	"github.com/spigell/ats-checker/internal/document"
	"github.com/spigell/ats-checker/internal/keywords"
)

const sampleSize = 20

// ScoreMatch scores how well a resume fits a job posting. A nil weights map
// uses the defaults.
func ScoreMatch(resume, job document.Value, weights Weights) Report {
	if weights == nil {
		weights = DefaultMatchWeights()
	}
	return scoreMatch(resume, job, NormalizeWeights(weights), nil)
}

func scoreMatch(resume, job document.Value, normalized Weights, meta map[string]any) Report {
	keyword, keywordDetails := matchKeywordOverlap(resume, job)
	skills, skillsDetails := matchSkillsOverlap(resume, job)
	role, roleDetails := matchRoleAlignment(resume, job)

	return newReport(KindMatch, []CategoryScore{
		category(CategoryKeywordOverlap, keyword, normalized, keywordDetails),
		category(CategorySkillsOverlap, skills, normalized, skillsDetails),
		category(CategoryRoleAlignment, role, normalized, roleDetails),
	}, meta)
}

func matchKeywordOverlap(resume, job document.Value) (float64, map[string]any) {
	jobText := strings.Join([]string{
		job.Get("title").Text(),
		job.Get("description").Text(),
		job.Get("company").Text(),
		job.Get("location").Text(),
	}, " ")

	jobTokens := keywords.Extract(jobText)
	resumeTokens := keywords.Extract(resumeText(resume))
	if jobTokens.Len() == 0 {
		return 0, map[string]any{"reason": "job_has_no_tokens"}
	}

	overlap := jobTokens.Intersect(resumeTokens)
	missing := jobTokens.Difference(resumeTokens)
	overlapRatio := ratio(overlap.Len(), jobTokens.Len())

	// sqrt keeps large postings from burying a reasonable overlap.
	return 100 * math.Sqrt(overlapRatio), map[string]any{
		"job_token_count":    jobTokens.Len(),
		"resume_token_count": resumeTokens.Len(),
		"overlap_count":      overlap.Len(),
		"missing_count":      missing.Len(),
		"overlap_ratio":      overlapRatio,
		"sample_overlap":     overlap.Sample(sampleSize),
		"sample_missing":     missing.Sample(sampleSize),
	}
}

func matchSkillsOverlap(resume, job document.Value) (float64, map[string]any) {
	skills := make(map[string]struct{})
	for _, raw := range resume.Get("skills").Strings() {
		skill := strings.ToLower(strings.TrimSpace(raw))
		if skill != "" {
			skills[skill] = struct{}{}
		}
	}
	if len(skills) == 0 {
		return 0, map[string]any{"reason": "resume_has_no_skills"}
	}

	jobTokens := keywords.Extract(job.Get("title").Text() + " " + job.Get("description").Text())

	matched := make(keywords.Set)
	for skill := range skills {
		skillTokens := keywords.Extract(skill)
		if skillTokens.Len() == 0 {
			continue
		}

		hits := skillTokens.Intersect(jobTokens).Len()
		if skillTokens.Len() == 1 && hits == 1 {
			matched[skill] = struct{}{}
			continue
		}
		// Multi-word skills match on a 60% token quorum.
		if skillTokens.Len() > 1 && ratio(hits, skillTokens.Len()) >= 0.6 {
			matched[skill] = struct{}{}
		}
	}

	matchRatio := ratio(matched.Len(), len(skills))

	return 100 * matchRatio, map[string]any{
		"resume_skill_count":    len(skills),
		"matched_skill_count":   matched.Len(),
		"match_ratio":           matchRatio,
		"sample_matched_skills": matched.Sample(sampleSize),
	}
}

func matchRoleAlignment(resume, job document.Value) (float64, map[string]any) {
	jobTitle := strings.TrimSpace(job.Get("title").Text())
	if jobTitle == "" {
		return 0, map[string]any{"reason": "missing_job_title"}
	}

	// Only the most recent roles count.
	entries := resume.Get("experience").Array()
	if len(entries) > 3 {
		entries = entries[:3]
	}

	var titles []string
	for _, entry := range entries {
		if title := strings.TrimSpace(entry.Get("title").Text()); title != "" {
			titles = append(titles, title)
		}
	}
	if len(titles) == 0 {
		return 25, map[string]any{"reason": "missing_resume_titles"}
	}

	jobTokens := keywords.Extract(jobTitle)
	if jobTokens.Len() == 0 {
		return 0, map[string]any{"reason": "job_title_no_tokens"}
	}

	best := 0.0
	bestTitle := ""
	for _, title := range titles {
		titleTokens := keywords.Extract(title)
		if titleTokens.Len() == 0 {
			continue
		}
		overlap := ratio(jobTokens.Intersect(titleTokens).Len(), jobTokens.Len())
		if overlap > best {
			best = overlap
			bestTitle = title
		}
	}

	return 100 * math.Sqrt(best), map[string]any{
		"job_title":          jobTitle,
		"best_resume_title":  bestTitle,
		"best_overlap_ratio": best,
	}
}
