package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config represents the application configuration
type Config struct {
	Provider    string       `json:"provider"` // "ollama" or "openai"
	Ollama      OllamaConfig `json:"ollama"`
	OpenAI      OpenAIConfig `json:"openai"`
	Triage      TriageConfig `json:"triage"`
	ContextFile string       `json:"context_file"`
	DataDir     string       `json:"data_dir"`
	DryRun      bool         `json:"dry_run"`
	LogLevel    string       `json:"log_level"`
	LogFormat   string       `json:"log_format"` // "json" or "text"
	LogFile     string       `json:"log_file"`
}

// OllamaConfig holds the Ollama backend configuration
type OllamaConfig struct {
	Host           string `json:"host"`
	Model          string `json:"model"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// OpenAIConfig holds the configuration for OpenAI-compatible backends
type OpenAIConfig struct {
	APIKey         string  `json:"api_key"`
	APIURL         string  `json:"api_url"`
	Model          string  `json:"model"`
	Temperature    float64 `json:"temperature"`
	MaxTokens      int     `json:"max_tokens"`
	TimeoutSeconds int     `json:"timeout_seconds"`
}

// TriageConfig controls which failures get analyzed and how much context
// is attached
type TriageConfig struct {
	Tags     string `json:"tags"`      // comma-separated gate tags; ""/"*"/"ALL" analyzes everything
	MaxChars int    `json:"max_chars"` // stacktrace tail cap
}

// Default returns a configuration with default values
func Default() Config {
	return Config{
		Provider: "ollama",
		Ollama: OllamaConfig{
			Host:           "http://localhost:11434",
			Model:          "gpt-oss:20b-cloud",
			TimeoutSeconds: 120,
		},
		OpenAI: OpenAIConfig{
			APIURL:         "https://api.openai.com/v1",
			Model:          "gpt-4o",
			Temperature:    0.2,
			MaxTokens:      2000,
			TimeoutSeconds: 120,
		},
		Triage: TriageConfig{
			Tags:     "AI_ANALYZE",
			MaxChars: 12000,
		},
		ContextFile: "ai_context.json",
		DataDir:     defaultDataDir(),
		DryRun:      false,
		LogLevel:    "info",
		LogFormat:   "json",
	}
}

// Load loads configuration from the specified path. If the file doesn't
// exist, one is created with default values. Environment variables override
// file values.
func Load(configPath string) (Config, error) {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return Config{}, fmt.Errorf("failed to create config directory: %w", err)
	}

	var cfg Config
	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		cfg = Default()
		if err := Save(configPath, cfg); err != nil {
			return Config{}, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	return applyEnvironmentOverrides(cfg), nil
}

// applyEnvironmentOverrides applies environment variable overrides to the
// config. The OLLAMA_* names match what the backend tooling itself reads.
func applyEnvironmentOverrides(cfg Config) Config {
	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		cfg.Ollama.Host = host
	}
	if model := os.Getenv("OLLAMA_MODEL"); model != "" {
		cfg.Ollama.Model = model
	}
	if timeoutStr := os.Getenv("OLLAMA_TIMEOUT"); timeoutStr != "" {
		if timeout, err := strconv.Atoi(timeoutStr); err == nil && timeout > 0 {
			cfg.Ollama.TimeoutSeconds = timeout
		}
	}

	if provider := os.Getenv("RFTRIAGE_PROVIDER"); provider != "" {
		cfg.Provider = strings.ToLower(provider)
	}
	if apiKey := os.Getenv("RFTRIAGE_OPENAI_API_KEY"); apiKey != "" {
		cfg.OpenAI.APIKey = apiKey
	}
	if tags := os.Getenv("RFTRIAGE_TAGS"); tags != "" {
		cfg.Triage.Tags = tags
	}
	if contextFile := os.Getenv("RFTRIAGE_CONTEXT_FILE"); contextFile != "" {
		cfg.ContextFile = contextFile
	}
	if dryRunEnv := os.Getenv("RFTRIAGE_DRY_RUN"); dryRunEnv != "" {
		if dryRun, err := strconv.ParseBool(dryRunEnv); err == nil {
			cfg.DryRun = dryRun
		}
	}
	if logLevel := os.Getenv("RFTRIAGE_LOG_LEVEL"); logLevel != "" {
		logLevel = strings.ToLower(logLevel)
		switch logLevel {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = logLevel
		}
	}

	return cfg
}

// Save saves the configuration to the specified path
func Save(configPath string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid for the selected provider
func (c Config) Validate() error {
	switch c.Provider {
	case "ollama":
		if strings.TrimSpace(c.Ollama.Host) == "" {
			return errors.New("ollama host is required")
		}
		if strings.TrimSpace(c.Ollama.Model) == "" {
			return errors.New("ollama model is required")
		}
		if c.Ollama.TimeoutSeconds <= 0 {
			return fmt.Errorf("ollama timeout_seconds must be positive, got: %d", c.Ollama.TimeoutSeconds)
		}
	case "openai":
		if !c.DryRun && strings.TrimSpace(c.OpenAI.APIKey) == "" {
			return errors.New("openai api_key is required (set RFTRIAGE_OPENAI_API_KEY or add to config file)")
		}
		if c.OpenAI.Temperature < 0 || c.OpenAI.Temperature > 2 {
			return fmt.Errorf("temperature must be between 0 and 2, got: %f", c.OpenAI.Temperature)
		}
		if c.OpenAI.TimeoutSeconds <= 0 {
			return fmt.Errorf("openai timeout_seconds must be positive, got: %d", c.OpenAI.TimeoutSeconds)
		}
	default:
		return fmt.Errorf("unsupported provider: %s", c.Provider)
	}

	if c.Triage.MaxChars <= 0 {
		return fmt.Errorf("triage max_chars must be positive, got: %d", c.Triage.MaxChars)
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".rftriage", "config.json")
	}
	return filepath.Join(homeDir, ".rftriage", "config.json")
}

func defaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".rftriage"
	}
	return filepath.Join(homeDir, ".rftriage")
}
