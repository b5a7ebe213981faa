package triage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"rftriage/pkg/ai"
	"rftriage/pkg/config"
	"rftriage/pkg/snapshot"
)

// analysisTemperature keeps the triage output close to the facts.
const analysisTemperature = 0.1

// Report is the outcome of one analysis.
type Report struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Test      string    `json:"test"`
	Status    string    `json:"status"`
	Model     string    `json:"model"`
	Hint      string    `json:"hint,omitempty"`
	Analysis  string    `json:"analysis"`
	Facts     Facts     `json:"facts"`
}

// Analyzer triages failed tests through an LLM provider.
type Analyzer struct {
	provider ai.Provider
	gateTags map[string]bool
	maxChars int
}

// NewAnalyzer creates an analyzer gated by the configured tags.
func NewAnalyzer(provider ai.Provider, cfg config.TriageConfig) *Analyzer {
	maxChars := cfg.MaxChars
	if maxChars <= 0 {
		maxChars = 12000
	}
	return &Analyzer{
		provider: provider,
		gateTags: parseGateTags(cfg.Tags),
		maxChars: maxChars,
	}
}

// parseGateTags turns the comma-separated tag gate into a lowercase set.
// An empty set means every failure is analyzed.
func parseGateTags(raw string) map[string]bool {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "*" || strings.EqualFold(raw, "all") {
		return nil
	}
	tags := make(map[string]bool)
	for _, tag := range strings.Split(raw, ",") {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			tags[tag] = true
		}
	}
	return tags
}

// ShouldAnalyze reports whether a result warrants analysis: it failed, and
// it carries one of the gate tags (or no gate is configured).
func (a *Analyzer) ShouldAnalyze(result TestResult) bool {
	if !result.Failed() {
		return false
	}
	if len(a.gateTags) == 0 {
		return true
	}
	for _, tag := range result.Tags {
		if a.gateTags[strings.ToLower(tag)] {
			return true
		}
	}
	return false
}

// Analyze builds the facts and prompt for a failed test and asks the model
// for a triage. The deterministic majors-match hint is computed before the
// model is consulted and included in the report either way.
func (a *Analyzer) Analyze(ctx context.Context, result TestResult, snap snapshot.Snapshot) (Report, error) {
	facts := BuildFacts(result, snap)

	report := Report{
		CreatedAt: time.Now(),
		Test:      testName(result),
		Status:    result.Status,
		Facts:     facts,
	}
	if facts.MajorsMatch {
		report.Hint = fmt.Sprintf("Chrome %s and ChromeDriver %s majors match -> skip driver mismatch suggestions.",
			facts.Chrome, facts.Chromedriver)
	}

	tail := tailString(result.Message, a.maxChars)
	temperature := analysisTemperature

	slog.Debug("requesting failure analysis",
		"test", report.Test,
		"exception", facts.Exception,
		"majors_match", facts.MajorsMatch,
		"tail_chars", len(tail))

	resp, err := a.provider.CreateChatCompletion(ctx, ai.ChatRequest{
		Messages: []ai.Message{
			{Role: "system", Content: SystemRules},
			{Role: "user", Content: BuildPrompt(facts, tail)},
		},
		Temperature: &temperature,
	})
	if err != nil {
		return Report{}, fmt.Errorf("analysis request failed: %w", err)
	}

	report.Model = resp.Model
	report.Analysis = resp.Content
	return report, nil
}

func testName(result TestResult) string {
	if result.LongName != "" {
		return result.LongName
	}
	return result.Name
}
