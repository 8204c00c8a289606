package scoring

import (
	"strings"
	"unicode"

	"github.com/spigell/ats-checker/internal/document"
)

var actionVerbs = []string{
	"built", "created", "designed", "developed", "delivered", "implemented",
	"improved", "increased", "reduced", "optimized", "automated", "led",
	"managed", "owned", "shipped", "launched", "migrated", "refactored",
	"collaborated", "analyzed", "architected", "tested", "deployed",
}

var outcomeMarkers = []string{
	"improved", "increased", "reduced", "decreased", "accelerated", "saved",
	"cut", "boosted", "grew", "optimized", "revenue", "cost", "latency",
	"throughput", "uptime", "performance", "efficiency", "scalability",
}

var sectionMarkers = []string{
	"requirements", "responsibilities", "qualifications", "what you will",
	"benefits", "nice to have", "about you", "about the role",
}

// extractBullets reads an experience description. A string is split into
// lines, an array contributes its string elements. Blank entries are dropped.
func extractBullets(description document.Value) []string {
	var candidates []string
	switch description.Kind() {
	case document.KindString:
		candidates = strings.Split(description.Text(), "\n")
	case document.KindArray:
		candidates = description.Strings()
	default:
		return nil
	}

	bullets := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		trimmed := strings.TrimSpace(candidate)
		if trimmed != "" {
			bullets = append(bullets, trimmed)
		}
	}
	return bullets
}

func looksLikeActionBullet(bullet string) bool {
	lower := strings.ToLower(strings.TrimSpace(bullet))
	fields := strings.Fields(lower)
	if len(fields) == 0 {
		return false
	}

	for _, verb := range actionVerbs {
		if fields[0] == verb || strings.HasPrefix(lower, verb+" ") {
			return true
		}
	}
	return false
}

func containsNumber(s string) bool {
	return strings.IndexFunc(s, unicode.IsNumber) >= 0
}

func containsOutcome(s string) bool {
	lower := strings.ToLower(s)
	for _, marker := range outcomeMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// resumeText flattens the textual leaves of a resume into one block used for
// keyword matching.
func resumeText(resume document.Value) string {
	var parts []string

	if personal := resume.Get("personal_info"); personal.Kind() == document.KindObject {
		parts = append(parts,
			personal.Get("name").Text(),
			personal.Get("headline").Text(),
			personal.Get("location").Text(),
		)
	}

	parts = append(parts, resume.Get("summary").Text())

	for _, skill := range resume.Get("skills").Array() {
		parts = append(parts, skill.Text())
	}

	for _, entry := range resume.Get("experience").Array() {
		if entry.Kind() != document.KindObject {
			continue
		}
		parts = append(parts,
			entry.Get("title").Text(),
			entry.Get("company").Text(),
			entry.Get("location").Text(),
		)
		parts = append(parts, extractBullets(entry.Get("description"))...)
	}

	for _, entry := range resume.Get("education").Array() {
		if entry.Kind() != document.KindObject {
			continue
		}
		parts = append(parts, entry.Get("degree").Text(), entry.Get("institution").Text())
	}

	for _, entry := range resume.Get("projects").Array() {
		if entry.Kind() != document.KindObject {
			continue
		}
		parts = append(parts,
			entry.Get("name").Text(),
			entry.Get("description").Text(),
			entry.Get("link").Text(),
		)
	}

	kept := parts[:0]
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, "\n")
}

func present(value string) bool {
	trimmed := strings.TrimSpace(value)
	return trimmed != "" && strings.ToLower(trimmed) != "unknown"
}
