package triage

import (
	"regexp"
	"strconv"
	"strings"

	"rftriage/pkg/snapshot"
)

// Facts is the ground-truth document handed to the model. Everything in it
// is deterministic; the model is told to trust it over its own guesses.
type Facts struct {
	Exception    string                `json:"exception,omitempty"`
	Chrome       string                `json:"chrome,omitempty"`
	Chromedriver string                `json:"chromedriver,omitempty"`
	MajorsMatch  bool                  `json:"majors_match"`
	Versions     map[string]string     `json:"versions,omitempty"`
	OS           snapshot.PlatformInfo `json:"os"`
	URL          string                `json:"url,omitempty"`
	Title        string                `json:"title,omitempty"`
	Capabilities map[string]any        `json:"caps_subset,omitempty"`
	FailedStep   string                `json:"failed_step,omitempty"`
	Extra        map[string]any        `json:"extra,omitempty"`
}

var (
	exceptionPattern = regexp.MustCompile(`^([A-Za-z]+Exception)`)
	chromePattern    = regexp.MustCompile(`chrome=([0-9.]+)`)
)

// parseMessage pulls the exception class and a chrome version out of a
// failure message. WebDriver errors embed "chrome=<version>" in their
// capability dump.
func parseMessage(message string) (exception, chrome string) {
	if message == "" {
		return "", ""
	}
	firstLine := strings.TrimSpace(strings.SplitN(message, "\n", 2)[0])
	if m := exceptionPattern.FindStringSubmatch(firstLine); m != nil {
		exception = m[1]
	}
	if m := chromePattern.FindStringSubmatch(message); m != nil {
		chrome = m[1]
	}
	return exception, chrome
}

// majorVersion returns the leading integer of a dotted version, or -1.
func majorVersion(version string) int {
	if version == "" {
		return -1
	}
	head := strings.SplitN(version, ".", 2)[0]
	major, err := strconv.Atoi(head)
	if err != nil {
		return -1
	}
	return major
}

// BuildFacts assembles the facts document from a failed test and the
// diagnostic snapshot. A chrome version found in the failure message is
// fresher than the snapshot and wins.
func BuildFacts(result TestResult, snap snapshot.Snapshot) Facts {
	exception, chromeFromMessage := parseMessage(result.Message)

	chrome := chromeFromMessage
	if chrome == "" {
		chrome = snap.Versions["chrome"]
	}
	chromedriver := snap.Versions["chromedriver"]

	facts := Facts{
		Exception:    exception,
		Chrome:       chrome,
		Chromedriver: chromedriver,
		OS:           snap.Platform,
		URL:          snap.Selenium.URL,
		Title:        snap.Selenium.Title,
		Capabilities: snap.Selenium.Capabilities,
		Extra:        snap.Extra,
	}

	// Remaining component versions, without the two already surfaced.
	versions := make(map[string]string)
	for key, value := range snap.Versions {
		if key == "chrome" || key == "chromedriver" {
			continue
		}
		versions[key] = value
	}
	if len(versions) > 0 {
		facts.Versions = versions
	}

	chromeMajor := majorVersion(chrome)
	driverMajor := majorVersion(chromedriver)
	facts.MajorsMatch = chromeMajor >= 0 && driverMajor >= 0 && chromeMajor == driverMajor

	if step, ok := result.LastFailedStep(); ok {
		facts.FailedStep = step.Keyword
		if step.Message != "" && step.Message != result.Message {
			facts.FailedStep += ": " + step.Message
		}
	}

	return facts
}
