// Package snapshot captures environment and browser-session diagnostics
// before a test run and persists them as a JSON context file. The triage
// side reads the same file back to ground its analysis in facts instead of
// guesses.
package snapshot

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// DefaultContextFile is the well-known path the triage side looks for.
const DefaultContextFile = "ai_context.json"

// Snapshot is the diagnostic context document.
type Snapshot struct {
	Timestamp time.Time         `json:"timestamp"`
	Platform  PlatformInfo      `json:"platform"`
	Versions  map[string]string `json:"versions"`
	Selenium  SessionInfo       `json:"selenium"`
	Env       map[string]any    `json:"env"`
	Git       *GitInfo          `json:"git,omitempty"`
	Extra     map[string]any    `json:"extra,omitempty"`
}

// PlatformInfo describes the host the tests ran on.
type PlatformInfo struct {
	System       string `json:"system"`
	Distribution string `json:"distribution,omitempty"`
	Version      string `json:"version,omitempty"`
	Kernel       string `json:"kernel,omitempty"`
	Machine      string `json:"machine"`
	Runtime      string `json:"runtime"`
}

// SessionInfo holds the slim subset of browser-session state worth keeping.
// Capabilities can be huge; only a safe subset is retained.
type SessionInfo struct {
	URL          string         `json:"url,omitempty"`
	Title        string         `json:"title,omitempty"`
	Capabilities map[string]any `json:"capabilities,omitempty"`
}

// GitInfo records where in history the run happened.
type GitInfo struct {
	Branch string `json:"branch"`
	Commit string `json:"commit,omitempty"`
	Dirty  bool   `json:"dirty"`
}

// capabilityKeys is the subset of WebDriver capabilities kept in a snapshot.
var capabilityKeys = []string{
	"browserName",
	"browserVersion",
	"platformName",
	"acceptInsecureCerts",
	"pageLoadStrategy",
	"chromedriverVersion",
	"goog:chromeOptions",
}

var versionPattern = regexp.MustCompile(`\d+(?:\.\d+){1,3}`)

// Collector assembles a Snapshot. Free-form facts and session state are
// added between construction and Write.
type Collector struct {
	contextFile string
	session     SessionInfo
	sessionVers map[string]string
	extra       map[string]any
}

// NewCollector creates a collector writing to the given context file path.
// An empty path means DefaultContextFile in the working directory.
func NewCollector(contextFile string) *Collector {
	if contextFile == "" {
		contextFile = DefaultContextFile
	}
	return &Collector{
		contextFile: contextFile,
		extra:       make(map[string]any),
	}
}

// AddFact records an arbitrary key/value the analysis should see
// (e.g. vpn=off).
func (c *Collector) AddFact(key string, value any) {
	c.extra[key] = value
}

// SetSession records browser-session state from a live WebDriver session.
// Versions found in the capability map are authoritative: they describe the
// browser actually driving the test (possibly in a remote container), so
// they take precedence over anything probed from local CLIs.
func (c *Collector) SetSession(url, title string, capabilities map[string]any) {
	c.session = SessionInfo{URL: url, Title: title}
	if capabilities == nil {
		return
	}

	kept := make(map[string]any)
	for _, key := range capabilityKeys {
		if value, ok := capabilities[key]; ok {
			kept[key] = value
		}
	}
	c.session.Capabilities = kept

	versions := make(map[string]string)
	if chrome := stringCap(capabilities, "browserVersion"); chrome != "" {
		versions["chrome"] = chrome
	} else if chrome := stringCap(capabilities, "version"); chrome != "" {
		versions["chrome"] = chrome
	}
	if cdv := stringCap(capabilities, "chromedriverVersion"); cdv != "" {
		if m := versionPattern.FindString(cdv); m != "" {
			versions["chromedriver"] = m
		}
	}
	c.sessionVers = versions
}

// Collect gathers platform, version, environment and git facts into a
// Snapshot. Probing failures are not errors; the corresponding fields stay
// empty.
func (c *Collector) Collect() Snapshot {
	snap := Snapshot{
		Timestamp: time.Now(),
		Platform:  collectPlatform(),
		Versions:  make(map[string]string),
		Selenium:  c.session,
		Env:       collectEnv(),
		Extra:     c.extra,
	}

	if chrome := chromeVersion(); chrome != "" {
		snap.Versions["chrome"] = chrome
	}
	if chromedriver := chromedriverVersion(); chromedriver != "" {
		snap.Versions["chromedriver"] = chromedriver
	}
	// Capability-derived versions win over local CLI probing.
	for key, value := range c.sessionVers {
		snap.Versions[key] = value
	}

	if workDir, err := os.Getwd(); err == nil {
		snap.Git = collectGit(workDir)
	}

	return snap
}

// Write collects and persists the snapshot, returning the absolute path of
// the written file.
func (c *Collector) Write() (string, error) {
	snap := c.Collect()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.WriteFile(c.contextFile, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write context file: %w", err)
	}

	absPath, err := filepath.Abs(c.contextFile)
	if err != nil {
		absPath = c.contextFile
	}

	slog.Info("wrote diagnostic context", "path", absPath)
	return absPath, nil
}

// Load reads a snapshot back. A missing file yields an empty snapshot, not
// an error; triage must work with whatever context exists.
func Load(path string) (Snapshot, error) {
	if path == "" {
		path = DefaultContextFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("context file not found", "path", path)
			return Snapshot{}, nil
		}
		return Snapshot{}, fmt.Errorf("failed to read context file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to parse context file: %w", err)
	}
	return snap, nil
}

func stringCap(capabilities map[string]any, key string) string {
	if value, ok := capabilities[key].(string); ok {
		return value
	}
	return ""
}
