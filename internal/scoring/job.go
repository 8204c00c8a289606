package scoring

import (
	"math"
	"strings"

	"github.com/spigell/ats-checker/internal/document"
)

// ScoreJob scores a job posting document. A nil weights map uses the defaults.
func ScoreJob(job document.Value, weights Weights) Report {
	if weights == nil {
		weights = DefaultJobWeights()
	}
	return scoreJob(job, NormalizeWeights(weights), nil)
}

func scoreJob(job document.Value, normalized Weights, meta map[string]any) Report {
	completeness, completenessDetails := jobCompleteness(job)
	clarity, clarityDetails := jobClarity(job)
	compensation, compensationDetails := jobCompensation(job)
	link, linkDetails := jobLinkQuality(job)

	return newReport(KindJob, []CategoryScore{
		category(CategoryCompleteness, completeness, normalized, completenessDetails),
		category(CategoryClarity, clarity, normalized, clarityDetails),
		category(CategoryCompensationTransparency, compensation, normalized, compensationDetails),
		category(CategoryLinkQuality, link, normalized, linkDetails),
	}, meta)
}

func jobCompleteness(job document.Value) (float64, map[string]any) {
	description := strings.TrimSpace(job.Get("description").Text())

	hasTitle := present(job.Get("title").Text())
	hasCompany := present(job.Get("company").Text())
	hasLocation := present(job.Get("location").Text())
	// Short descriptions are usually scraped stubs rather than real postings.
	hasDescription := len(description) >= 200
	hasURL := strings.TrimSpace(job.Get("url").Text()) != ""

	score := 0.0
	for _, check := range []struct {
		ok     bool
		weight float64
	}{
		{hasTitle, 0.20},
		{hasCompany, 0.20},
		{hasLocation, 0.15},
		{hasDescription, 0.35},
		{hasURL, 0.10},
	} {
		if check.ok {
			score += check.weight
		}
	}

	return score * 100, map[string]any{
		"has_title":          hasTitle,
		"has_company":        hasCompany,
		"has_location":       hasLocation,
		"has_description":    hasDescription,
		"has_url":            hasURL,
		"description_length": len(description),
	}
}

func jobClarity(job document.Value) (float64, map[string]any) {
	description := strings.TrimSpace(job.Get("description").Text())
	if description == "" {
		return 0, map[string]any{"reason": "missing_description"}
	}

	lengthScore := 100 * math.Min(float64(len(description))/1200, 1)

	lower := strings.ToLower(description)
	hits := 0
	for _, marker := range sectionMarkers {
		if strings.Contains(lower, marker) {
			hits++
		}
	}
	sectionScore := math.Min(float64(hits)/4, 1) * 100

	return lengthScore*0.65 + sectionScore*0.35, map[string]any{
		"description_length": len(description),
		"section_hits":       hits,
	}
}

func jobCompensation(job document.Value) (float64, map[string]any) {
	hasSalary := strings.TrimSpace(job.Get("salary").Text()) != ""
	details := map[string]any{"has_salary": hasSalary}
	if hasSalary {
		return 100, details
	}
	return 0, details
}

func jobLinkQuality(job document.Value) (float64, map[string]any) {
	url := strings.TrimSpace(job.Get("url").Text())
	if url == "" {
		return 0, map[string]any{"reason": "missing_url"}
	}

	looksHTTP := strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
	details := map[string]any{"url": url, "looks_http": looksHTTP}
	if looksHTTP {
		return 100, details
	}
	return 30, details
}
