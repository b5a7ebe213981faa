package triage

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// TestResult is the end-of-test view the runner integration hands over:
// status, tags, failure message, timing and the executed steps.
type TestResult struct {
	Name      string   `json:"name"`
	LongName  string   `json:"longname,omitempty"`
	Status    string   `json:"status"`
	Tags      []string `json:"tags,omitempty"`
	Message   string   `json:"message,omitempty"`
	ElapsedMS int64    `json:"elapsed_ms,omitempty"`
	Steps     []Step   `json:"steps,omitempty"`
}

// Step is one executed keyword within a test.
type Step struct {
	Keyword string   `json:"keyword"`
	Args    []string `json:"args,omitempty"`
	Status  string   `json:"status"`
	Message string   `json:"message,omitempty"`
}

// Failed reports whether the test failed.
func (r TestResult) Failed() bool {
	return strings.EqualFold(r.Status, "FAIL")
}

// LastFailedStep returns the last step with FAIL status, or a zero Step.
func (r TestResult) LastFailedStep() (Step, bool) {
	for i := len(r.Steps) - 1; i >= 0; i-- {
		if strings.EqualFold(r.Steps[i].Status, "FAIL") {
			return r.Steps[i], true
		}
	}
	return Step{}, false
}

// LoadResult reads a test result document from a JSON file.
func LoadResult(path string) (TestResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TestResult{}, fmt.Errorf("failed to read result file: %w", err)
	}

	var result TestResult
	if err := json.Unmarshal(data, &result); err != nil {
		return TestResult{}, fmt.Errorf("failed to parse result file: %w", err)
	}
	if result.Name == "" && result.LongName == "" {
		return TestResult{}, fmt.Errorf("result file has no test name")
	}
	return result, nil
}
