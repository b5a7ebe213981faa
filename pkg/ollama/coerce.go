package ollama

import (
	"encoding/json"
	"regexp"
	"strings"
)

// codeFence matches a leading or trailing markdown code fence, optionally
// tagged "json".
var codeFence = regexp.MustCompile("(?is)^```(?:json)?\\s*|\\s*```$")

// CoerceJSON extracts a strict JSON value from model output. The strategy is
// deliberately two-stage: strip code fences and parse directly, and only then
// search for the first {...} or [...] span and parse that. It is permissive
// about finding JSON but strict about parsing it; invalid JSON is never
// repaired.
func CoerceJSON(s string) (any, error) {
	candidate := codeFence.ReplaceAllString(strings.TrimSpace(s), "")

	var value any
	if err := json.Unmarshal([]byte(candidate), &value); err == nil {
		return value, nil
	}

	if span, ok := findJSONSpan(candidate); ok {
		if err := json.Unmarshal([]byte(span), &value); err == nil {
			return value, nil
		}
	}

	return nil, &MalformedOutputError{Sample: truncate(candidate, errorBodyLimit)}
}

// findJSONSpan returns the substring from the first opening brace or bracket
// that has a matching closer later in the string, to the last such closer.
// The scan is greedy and non-recursive on purpose.
func findJSONSpan(s string) (string, bool) {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			if j := strings.LastIndexByte(s, '}'); j > i {
				return s[i : j+1], true
			}
		case '[':
			if j := strings.LastIndexByte(s, ']'); j > i {
				return s[i : j+1], true
			}
		}
	}
	return "", false
}
