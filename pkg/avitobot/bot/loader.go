// Package bot – loader.go loads configuration from YAML files with
// environment variable expansion and .env support.
package bot

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} references in config values.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// LoadConfigFromFile reads and parses a YAML configuration file.
// Loads .env first and expands ${VAR} references before parsing.
func LoadConfigFromFile(path string) (*Config, error) {
	// godotenv.Load does NOT overwrite existing env vars.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return ParseConfig([]byte(expandEnvVars(string(data))))
}

// ParseConfig parses YAML bytes into a Config, starting from defaults and
// overlaying values from the YAML.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	return cfg, nil
}

// SaveConfigToFile writes a Config as YAML with owner-only permissions.
func SaveConfigToFile(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// FindConfigFile searches standard locations for a config file.
func FindConfigFile() string {
	candidates := []string{
		"config.yaml",
		"config.yml",
		"avitobot.yaml",
		"avitobot.yml",
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// expandEnvVars replaces ${VAR} references with environment values.
// Unset variables keep the placeholder so missing secrets stay visible.
func expandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		name := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match
	})
}

// IsEnvReference reports whether a value is an unexpanded env reference.
func IsEnvReference(s string) bool {
	return strings.HasPrefix(s, "${")
}
