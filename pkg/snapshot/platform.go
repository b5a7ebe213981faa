package snapshot

import (
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// collectPlatform gathers host OS facts. Lookups that fail leave their
// fields empty.
func collectPlatform() PlatformInfo {
	info := PlatformInfo{
		System:  runtime.GOOS,
		Machine: runtime.GOARCH,
		Runtime: runtime.Version(),
	}

	switch runtime.GOOS {
	case "linux":
		name, version := linuxDistribution()
		info.Distribution = name
		info.Version = version
		info.Kernel = kernelVersion()
	case "darwin":
		if out, err := exec.Command("sw_vers", "-productVersion").Output(); err == nil {
			info.Version = strings.TrimSpace(string(out))
		}
		info.Kernel = kernelVersion()
	case "windows":
		if out, err := exec.Command("cmd", "/c", "ver").Output(); err == nil {
			info.Version = strings.TrimSpace(string(out))
		}
	}

	return info
}

// linuxDistribution reads /etc/os-release for the distribution name and
// version.
func linuxDistribution() (string, string) {
	data, err := os.ReadFile("/etc/os-release")
	if err != nil {
		return "Linux", ""
	}
	return parseOSRelease(string(data))
}

func parseOSRelease(content string) (string, string) {
	name := "Linux"
	version := ""
	for _, line := range strings.Split(content, "\n") {
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		switch key {
		case "NAME":
			name = value
		case "VERSION_ID":
			version = value
		}
	}
	return name, version
}

func kernelVersion() string {
	out, err := exec.Command("uname", "-r").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
