package triage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"rftriage/pkg/ai"
	"rftriage/pkg/config"
	"rftriage/pkg/snapshot"
)

type fakeProvider struct {
	lastRequest ai.ChatRequest
	response    ai.ChatResponse
	err         error
}

func (f *fakeProvider) CreateChatCompletion(_ context.Context, req ai.ChatRequest) (ai.ChatResponse, error) {
	f.lastRequest = req
	if f.err != nil {
		return ai.ChatResponse{}, f.err
	}
	return f.response, nil
}

func failedResult() TestResult {
	return TestResult{
		Name:     "Login Works",
		LongName: "Suite.Login Works",
		Status:   "FAIL",
		Tags:     []string{"AI_ANALYZE", "smoke"},
		Message:  "TimeoutException: chrome=140.0.1.1",
	}
}

func TestShouldAnalyzeTagGate(t *testing.T) {
	analyzer := NewAnalyzer(&fakeProvider{}, config.TriageConfig{Tags: "AI_ANALYZE", MaxChars: 100})

	if !analyzer.ShouldAnalyze(failedResult()) {
		t.Error("Expected tagged failure to be analyzed")
	}

	untagged := failedResult()
	untagged.Tags = []string{"smoke"}
	if analyzer.ShouldAnalyze(untagged) {
		t.Error("Expected untagged failure to be skipped")
	}

	passed := failedResult()
	passed.Status = "PASS"
	if analyzer.ShouldAnalyze(passed) {
		t.Error("Expected passing test to be skipped")
	}
}

func TestShouldAnalyzeWildcardGate(t *testing.T) {
	for _, raw := range []string{"", "*", "ALL", "all"} {
		analyzer := NewAnalyzer(&fakeProvider{}, config.TriageConfig{Tags: raw, MaxChars: 100})
		untagged := failedResult()
		untagged.Tags = nil
		if !analyzer.ShouldAnalyze(untagged) {
			t.Errorf("Expected gate %q to analyze everything", raw)
		}
	}
}

func TestShouldAnalyzeCaseInsensitive(t *testing.T) {
	analyzer := NewAnalyzer(&fakeProvider{}, config.TriageConfig{Tags: "ai_analyze", MaxChars: 100})

	result := failedResult()
	result.Tags = []string{"AI_Analyze"}
	if !analyzer.ShouldAnalyze(result) {
		t.Error("Expected case-insensitive tag match")
	}
}

func TestAnalyze(t *testing.T) {
	provider := &fakeProvider{response: ai.ChatResponse{Content: "- raise the wait", Model: "test-model"}}
	analyzer := NewAnalyzer(provider, config.TriageConfig{Tags: "*", MaxChars: 12000})

	snap := snapshot.Snapshot{Versions: map[string]string{"chromedriver": "140.0.2.2"}}
	report, err := analyzer.Analyze(context.Background(), failedResult(), snap)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	if report.Analysis != "- raise the wait" {
		t.Errorf("Expected analysis from provider, got %q", report.Analysis)
	}
	if report.Model != "test-model" {
		t.Errorf("Expected model recorded, got %q", report.Model)
	}
	if report.Test != "Suite.Login Works" {
		t.Errorf("Expected long name, got %q", report.Test)
	}
	if report.Hint == "" {
		t.Error("Expected majors-match hint in report")
	}

	if len(provider.lastRequest.Messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(provider.lastRequest.Messages))
	}
	if provider.lastRequest.Messages[0].Content != SystemRules {
		t.Error("Expected system rules as first message")
	}
	if !strings.Contains(provider.lastRequest.Messages[1].Content, "FACTS:") {
		t.Error("Expected facts prompt as user message")
	}
	if provider.lastRequest.Temperature == nil || *provider.lastRequest.Temperature != 0.1 {
		t.Errorf("Expected temperature 0.1, got %v", provider.lastRequest.Temperature)
	}
}

func TestAnalyzeTruncatesTail(t *testing.T) {
	provider := &fakeProvider{response: ai.ChatResponse{Content: "ok"}}
	analyzer := NewAnalyzer(provider, config.TriageConfig{Tags: "*", MaxChars: 50})

	result := failedResult()
	result.Message = strings.Repeat("x", 500) + "THE-END"
	if _, err := analyzer.Analyze(context.Background(), result, snapshot.Snapshot{}); err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	userPrompt := provider.lastRequest.Messages[1].Content
	tailSection := userPrompt[strings.Index(userPrompt, "STACKTRACE_TAIL:\n")+len("STACKTRACE_TAIL:\n"):]
	if len(tailSection) != 50 {
		t.Errorf("Expected tail truncated to 50 chars, got %d", len(tailSection))
	}
	if !strings.HasSuffix(tailSection, "THE-END") {
		t.Errorf("Expected the end of the message kept, got %q", tailSection)
	}
}

func TestAnalyzeProviderError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("backend unreachable")}
	analyzer := NewAnalyzer(provider, config.TriageConfig{Tags: "*", MaxChars: 100})

	if _, err := analyzer.Analyze(context.Background(), failedResult(), snapshot.Snapshot{}); err == nil {
		t.Error("Expected provider error to propagate")
	}
}
