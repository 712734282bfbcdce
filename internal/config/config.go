package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// CredentialEnvVar is the environment variable carrying the reasoning
// service API key. It is checked after input validation so that
// validate-only runs work without credentials.
const CredentialEnvVar = "OPENAI_API_KEY"

// Config holds application configuration.
type Config struct {
	// Model is the reasoning model requested from the external service.
	Model string `json:"model,omitempty"`

	// BaseURL overrides the reasoning service endpoint. Empty means the
	// service default.
	BaseURL string `json:"base_url,omitempty"`

	// DefaultTopic labels the session when neither the request nor the
	// previous session record carries a topic.
	DefaultTopic string `json:"default_topic,omitempty"`

	// SessionPath overrides where the session record is persisted.
	// Empty means a fixed path next to the counsel binary.
	SessionPath string `json:"session_path,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Model:        "gpt-5",
		DefaultTopic: "general review",
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.counsel.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.Model = overlay.Model
	if result.Model == "" {
		result.Model = base.Model
	}

	result.BaseURL = overlay.BaseURL
	if result.BaseURL == "" {
		result.BaseURL = base.BaseURL
	}

	result.DefaultTopic = overlay.DefaultTopic
	if result.DefaultTopic == "" {
		result.DefaultTopic = base.DefaultTopic
	}

	result.SessionPath = overlay.SessionPath
	if result.SessionPath == "" {
		result.SessionPath = base.SessionPath
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
