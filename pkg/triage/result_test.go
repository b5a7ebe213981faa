package triage

import (
	"os"
	"path/filepath"
	"testing"
)

func writeResult(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "result.json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write result file: %v", err)
	}
	return path
}

func TestLoadResult(t *testing.T) {
	path := writeResult(t, `{
		"name": "Login Works",
		"longname": "Suite.Login Works",
		"status": "FAIL",
		"tags": ["AI_ANALYZE"],
		"message": "TimeoutException: Element not visible",
		"elapsed_ms": 5120,
		"steps": [
			{"keyword": "Open Browser", "status": "PASS"},
			{"keyword": "Wait Until Element Is Visible", "args": ["id=submit"], "status": "FAIL", "message": "not visible"}
		]
	}`)

	result, err := LoadResult(path)
	if err != nil {
		t.Fatalf("LoadResult returned error: %v", err)
	}
	if result.Name != "Login Works" {
		t.Errorf("Expected name 'Login Works', got %q", result.Name)
	}
	if !result.Failed() {
		t.Error("Expected FAIL status to report as failed")
	}
	if len(result.Steps) != 2 {
		t.Fatalf("Expected 2 steps, got %d", len(result.Steps))
	}

	step, ok := result.LastFailedStep()
	if !ok {
		t.Fatal("Expected a failed step")
	}
	if step.Keyword != "Wait Until Element Is Visible" {
		t.Errorf("Expected last failed step keyword, got %q", step.Keyword)
	}
}

func TestLoadResultMissingFile(t *testing.T) {
	if _, err := LoadResult(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoadResultCorruptFile(t *testing.T) {
	path := writeResult(t, "not json{")
	if _, err := LoadResult(path); err == nil {
		t.Error("Expected error for corrupt JSON")
	}
}

func TestLoadResultRequiresName(t *testing.T) {
	path := writeResult(t, `{"status": "FAIL"}`)
	if _, err := LoadResult(path); err == nil {
		t.Error("Expected error for result without a name")
	}
}

func TestLastFailedStepNone(t *testing.T) {
	result := TestResult{Steps: []Step{{Keyword: "Log", Status: "PASS"}}}
	if _, ok := result.LastFailedStep(); ok {
		t.Error("Expected no failed step")
	}
}
