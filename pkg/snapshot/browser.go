package snapshot

import (
	"os/exec"
	"strings"
)

// macChromePath is where the Chrome binary lives on macOS hosts. Container
// runs won't have it; the capability map covers those.
const macChromePath = "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"

// chromeVersion probes local Chrome installations for their version.
// Returns "" when no binary answers.
func chromeVersion() string {
	candidates := []string{
		macChromePath,
		lookPath("google-chrome"),
		lookPath("chrome"),
		lookPath("chromium-browser"),
	}
	for _, exe := range candidates {
		if exe == "" {
			continue
		}
		out, err := exec.Command(exe, "--version").Output()
		if err != nil {
			continue
		}
		// "Google Chrome 140.0.7339.208"
		if version := firstVersionToken(string(out)); version != "" {
			return version
		}
	}
	return ""
}

// chromedriverVersion asks the chromedriver binary on PATH for its version.
func chromedriverVersion() string {
	exe := lookPath("chromedriver")
	if exe == "" {
		return ""
	}
	out, err := exec.Command(exe, "--version").Output()
	if err != nil {
		return ""
	}
	// "ChromeDriver 140.0.7246.0 (...)"
	if version := firstVersionToken(string(out)); version != "" {
		return version
	}
	return strings.TrimSpace(string(out))
}

// firstVersionToken returns the first whitespace-separated token that starts
// with a digit.
func firstVersionToken(out string) string {
	for _, token := range strings.Fields(out) {
		if token != "" && token[0] >= '0' && token[0] <= '9' {
			return token
		}
	}
	return ""
}

func lookPath(name string) string {
	path, err := exec.LookPath(name)
	if err != nil {
		return ""
	}
	return path
}
