package scoring

import (
	"math"
	"strings"

	"github.com/spigell/ats-checker/internal/document"
)

// ScoreResume scores a resume document. A nil weights map uses the defaults.
func ScoreResume(resume document.Value, weights Weights) Report {
	if weights == nil {
		weights = DefaultResumeWeights()
	}
	return scoreResume(resume, NormalizeWeights(weights), nil)
}

func scoreResume(resume document.Value, normalized Weights, meta map[string]any) Report {
	completeness, completenessDetails := resumeCompleteness(resume)
	skills, skillsDetails := resumeSkillsQuality(resume)
	experience, experienceDetails := resumeExperienceQuality(resume)
	impact, impactDetails := resumeImpact(resume)

	return newReport(KindResume, []CategoryScore{
		category(CategoryCompleteness, completeness, normalized, completenessDetails),
		category(CategorySkillsQuality, skills, normalized, skillsDetails),
		category(CategoryExperienceQuality, experience, normalized, experienceDetails),
		category(CategoryImpact, impact, normalized, impactDetails),
	}, meta)
}

func resumeCompleteness(resume document.Value) (float64, map[string]any) {
	personal := resume.Get("personal_info")
	hasName := strings.TrimSpace(personal.Get("name").Text()) != ""
	hasEmail := strings.TrimSpace(personal.Get("email").Text()) != ""
	hasSummary := strings.TrimSpace(resume.Get("summary").Text()) != ""

	experienceCount := len(resume.Get("experience").Array())
	educationCount := len(resume.Get("education").Array())
	skillsCount := len(resume.Get("skills").Array())
	projectsCount := len(resume.Get("projects").Array())

	checks := []struct {
		ok     bool
		weight float64
	}{
		{hasName, 0.10},
		{hasEmail, 0.10},
		{hasSummary, 0.15},
		{experienceCount > 0, 0.25},
		{educationCount > 0, 0.15},
		{skillsCount > 0, 0.20},
		{projectsCount > 0, 0.05},
	}

	score := 0.0
	for _, check := range checks {
		if check.ok {
			score += check.weight
		}
	}

	return score * 100, map[string]any{
		"has_name":         hasName,
		"has_email":        hasEmail,
		"has_summary":      hasSummary,
		"has_experience":   experienceCount > 0,
		"has_education":    educationCount > 0,
		"has_skills":       skillsCount > 0,
		"has_projects":     projectsCount > 0,
		"experience_count": experienceCount,
		"education_count":  educationCount,
		"skills_count":     skillsCount,
		"projects_count":   projectsCount,
	}
}

func resumeSkillsQuality(resume document.Value) (float64, map[string]any) {
	unique := make(map[string]struct{})
	tooLong := 0

	for _, raw := range resume.Get("skills").Strings() {
		skill := strings.TrimSpace(raw)
		if skill == "" {
			continue
		}
		unique[strings.ToLower(skill)] = struct{}{}
		if len(skill) > 32 {
			tooLong++
		}
	}

	countScore := 100 * math.Min(float64(len(unique))/12, 1)
	penalty := math.Min(float64(tooLong)*7.5, 30)

	return countScore - penalty, map[string]any{
		"unique_skill_count": len(unique),
		"too_long_skills":    tooLong,
	}
}

func experienceBullets(resume document.Value) ([]string, bool) {
	entries := resume.Get("experience").Array()
	if len(entries) == 0 {
		return nil, false
	}

	var bullets []string
	for _, entry := range entries {
		bullets = append(bullets, extractBullets(entry.Get("description"))...)
	}
	return bullets, true
}

func resumeExperienceQuality(resume document.Value) (float64, map[string]any) {
	bullets, ok := experienceBullets(resume)
	if !ok {
		return 0, map[string]any{"reason": "no_experience_entries"}
	}
	if len(bullets) == 0 {
		return 15, map[string]any{"reason": "experience_without_bullets"}
	}

	action, quantified := 0, 0
	for _, bullet := range bullets {
		if looksLikeActionBullet(bullet) {
			action++
		}
		if containsNumber(bullet) {
			quantified++
		}
	}

	actionRatio := ratio(action, len(bullets))
	quantifiedRatio := ratio(quantified, len(bullets))
	volume := math.Min(float64(len(bullets))/10, 1) * 35

	return volume + actionRatio*35 + quantifiedRatio*30, map[string]any{
		"total_bullets":      len(bullets),
		"action_bullets":     action,
		"quantified_bullets": quantified,
		"action_ratio":       actionRatio,
		"quantified_ratio":   quantifiedRatio,
	}
}

func resumeImpact(resume document.Value) (float64, map[string]any) {
	bullets, ok := experienceBullets(resume)
	if !ok {
		return 0, map[string]any{"reason": "no_experience_entries"}
	}
	if len(bullets) == 0 {
		return 10, map[string]any{"reason": "no_bullets"}
	}

	quantified, outcome, strong := 0, 0, 0
	for _, bullet := range bullets {
		hasNumber := containsNumber(bullet)
		hasOutcome := containsOutcome(bullet)
		if hasNumber {
			quantified++
		}
		if hasOutcome {
			outcome++
		}
		if looksLikeActionBullet(bullet) && (hasNumber || hasOutcome) {
			strong++
		}
	}

	quantifiedRatio := ratio(quantified, len(bullets))
	outcomeRatio := ratio(outcome, len(bullets))
	strongRatio := ratio(strong, len(bullets))

	return quantifiedRatio*45 + outcomeRatio*35 + strongRatio*20, map[string]any{
		"bullets":          len(bullets),
		"quantified":       quantified,
		"outcome":          outcome,
		"strong":           strong,
		"quantified_ratio": quantifiedRatio,
		"outcome_ratio":    outcomeRatio,
		"strong_ratio":     strongRatio,
	}
}
