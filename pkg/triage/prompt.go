package triage

import (
	"encoding/json"
	"strings"
)

// SystemRules is the triager persona. The majors_match rule suppresses the
// single most common (and usually wrong) suggestion models reach for.
const SystemRules = `You are a senior Selenium/Robot triager.
- Use the FACTS as ground truth.
- If majors_match == true, DO NOT propose Chrome/ChromeDriver mismatch.
- Prefer concrete steps that apply to the given OS/versions.
- If the wait is short (<=5s) and page is heavy, suggest raising it; if locator may be brittle, suggest a more robust locator pattern.
- Return a short, bullet-pointed analysis.`

// BuildPrompt renders the user prompt: the facts document followed by the
// tail of the failure message.
func BuildPrompt(facts Facts, stacktraceTail string) string {
	factsJSON, err := json.MarshalIndent(facts, "", "  ")
	if err != nil {
		factsJSON = []byte("{}")
	}

	var builder strings.Builder
	builder.WriteString("FACTS:\n")
	builder.Write(factsJSON)
	builder.WriteString("\n\nSTACKTRACE_TAIL:\n")
	builder.WriteString(stacktraceTail)
	return builder.String()
}

// tailString keeps the last max characters of s; the end of a stacktrace
// carries the actual error.
func tailString(s string, max int) string {
	if max > 0 && len(s) > max {
		return s[len(s)-max:]
	}
	return s
}
