package pipeline

import (
	"encoding/json"
	"strings"
)

// DecodeLoose extracts a JSON value from model output that may be wrapped in
// markdown code fences or surrounding prose. Attempts, in fixed order:
// fence-stripped direct parse, then a first-'{'..last-'}' slice parse.
// Returns false if no attempt yields valid JSON; never panics.
func DecodeLoose(text string, v any) bool {
	text = stripFences(strings.TrimSpace(text))

	if json.Unmarshal([]byte(text), v) == nil {
		return true
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		if json.Unmarshal([]byte(text[start:end+1]), v) == nil {
			return true
		}
	}

	return false
}

// stripFences removes a leading ```json or ``` fence and its closing fence.
func stripFences(text string) string {
	for _, prefix := range []string{"```json", "```"} {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			if idx := strings.LastIndex(text, "```"); idx >= 0 {
				text = text[:idx]
			}
			return strings.TrimSpace(text)
		}
	}
	return text
}
