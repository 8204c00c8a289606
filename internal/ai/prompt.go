package ai

import (
	_ "embed"
	"strings"
	"unicode"
)

//go:embed revise.md
var reviseTemplate string

//go:embed enhance.md
var enhanceTemplate string

const maxUserInstructionRunes = 500

func buildRevisePrompt(resumeJSON, feedback, job, instructions string) string {
	return strings.NewReplacer(
		"{{RESUME_JSON}}", resumeJSON,
		"{{FEEDBACK}}", feedback,
		"{{JOB}}", job,
		"{{USER_INSTRUCTIONS}}", sanitizeInstructions(instructions),
	).Replace(reviseTemplate)
}

func buildEnhancePrompt(text, instructions string) string {
	return strings.NewReplacer(
		"{{RESUME_TEXT}}", strings.TrimSpace(text),
		"{{USER_INSTRUCTIONS}}", sanitizeInstructions(instructions),
	).Replace(enhanceTemplate)
}

// sanitizeInstructions renders user hints as an indented list. Square
// brackets are replaced so hints cannot pose as role markers like [System].
func sanitizeInstructions(raw string) string {
	raw = strings.NewReplacer("[", "(", "]", ")").Replace(raw)

	var lines []string
	remaining := maxUserInstructionRunes
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimFunc(line, unicode.IsSpace)
		if line == "" || remaining <= 0 {
			continue
		}
		runes := []rune(line)
		if len(runes) > remaining {
			runes = runes[:remaining]
		}
		remaining -= len(runes)
		lines = append(lines, "  - "+string(runes))
	}

	if len(lines) == 0 {
		return "  - none"
	}
	return strings.Join(lines, "\n")
}
