package ollama

import "fmt"

// errorBodyLimit caps how much of a response body is attached to errors.
const errorBodyLimit = 500

// StatusError is returned when the backend answers with a non-2xx status.
// The status code, model name and a truncated body are preserved so callers
// can tell "model not found" apart from server errors.
type StatusError struct {
	StatusCode int
	Model      string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend returned status %d (model=%s)", e.StatusCode, e.Model)
	}
	return fmt.Sprintf("backend returned status %d (model=%s) | server said: %s", e.StatusCode, e.Model, e.Body)
}

// MalformedOutputError is returned by CoerceJSON when no valid JSON can be
// extracted from the model output.
type MalformedOutputError struct {
	Sample string // first 500 chars of the offending text
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("model did not return JSON; first %d chars: %s", errorBodyLimit, e.Sample)
}

func truncate(s string, limit int) string {
	if len(s) > limit {
		return s[:limit]
	}
	return s
}
