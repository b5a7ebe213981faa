package snapshot

import (
	"os"
	"strings"
)

// envKeys are the environment variables worth surfacing to the analysis.
var envKeys = []string{"CI", "APP_ENV", "TZ", "LANG", "LC_ALL"}

// extraEnvKeys are recorded even when unset so the analysis can see their
// absence.
var extraEnvKeys = []string{"SELENIUM_REMOTE_URL", "OLLAMA_HOST", "OLLAMA_MODEL"}

// collectEnv gathers the selected environment variables plus container
// detection, so the analysis can reason about where the test ran.
func collectEnv() map[string]any {
	env := make(map[string]any)
	for _, key := range envKeys {
		if value, ok := os.LookupEnv(key); ok {
			env[key] = value
		}
	}
	for _, key := range extraEnvKeys {
		env[key] = os.Getenv(key)
	}
	env["IN_DOCKER"] = inDocker()
	return env
}

// inDocker reports whether the process appears to run inside a container.
// /.dockerenv is present in most containers; older runtimes are detected via
// the init cgroup.
func inDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	data, err := os.ReadFile("/proc/1/cgroup")
	if err != nil {
		return false
	}
	content := string(data)
	return strings.Contains(content, "docker") || strings.Contains(content, "containerd")
}
