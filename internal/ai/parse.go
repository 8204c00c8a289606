package ai

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/ats-checker/internal/document"
)

// ErrNotObject is returned when a model answer is valid JSON but not an
// object.
var ErrNotObject = errors.New("model response is not a JSON object")

// ParseObject decodes a model answer into a document. Markdown fences around
// the JSON are stripped.
func ParseObject(raw string) (document.Value, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return document.Null, ErrEmptyResponse
	}

	doc, err := document.Parse([]byte(cleaned))
	if err != nil {
		return document.Null, fmt.Errorf("parse model response: %w", err)
	}
	if doc.Kind() != document.KindObject {
		return document.Null, fmt.Errorf("%w: got %s", ErrNotObject, doc.Kind())
	}
	return doc, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```JSON")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
