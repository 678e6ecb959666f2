package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// envPrefix is the prefix for all environment variable overrides.
const envPrefix = "TEMPLATEWATCH_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// ${VAR} references in the file are expanded from the environment before parsing.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML configuration and applies defaults. It does not validate.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables always take precedence
// over file-based configuration.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// DefaultWithEnvOverrides returns the default configuration with environment
// variable overrides applied. Used when no settings file exists.
func DefaultWithEnvOverrides() (*Config, error) {
	cfg := Default()
	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Repository overrides
	setString(&cfg.Repository.URL, "REPOSITORY_URL")
	setString(&cfg.Repository.LocalPath, "REPOSITORY_LOCAL_PATH")
	setString(&cfg.Repository.Branch, "REPOSITORY_BRANCH")
	setString(&cfg.Repository.RawURLBase, "REPOSITORY_RAW_URL_BASE")
	setDuration(&cfg.Repository.Timeout, "REPOSITORY_TIMEOUT")
	setString(&cfg.Repository.Auth.Type, "REPOSITORY_AUTH_TYPE")
	setString(&cfg.Repository.Auth.Token, "REPOSITORY_AUTH_TOKEN")
	setString(&cfg.Repository.Auth.SSHKeyPath, "REPOSITORY_AUTH_SSH_KEY_PATH")

	// Cache overrides
	setString(&cfg.CacheFile, "CACHE_FILE")
	setString(&cfg.CacheBackend, "CACHE_BACKEND")

	// Credentials
	setString(&cfg.GitHub.Token, "GITHUB_TOKEN")
	setString(&cfg.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	setString(&cfg.Telegram.ChatID, "TELEGRAM_CHAT_ID")

	// Scan overrides
	if val := os.Getenv(envPrefix + "SCAN_WORKERS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Scan.Workers = i
		}
	}
	if val := os.Getenv(envPrefix + "SCAN_EXTENSIONS"); val != "" {
		var exts []string
		for _, ext := range strings.Split(val, ",") {
			if ext = strings.TrimSpace(ext); ext != "" {
				exts = append(exts, ext)
			}
		}
		if len(exts) > 0 {
			cfg.Scan.Extensions = exts
		}
	}

	// Telemetry overrides
	setString(&cfg.Telemetry.Logging.Level, "TELEMETRY_LOGGING_LEVEL")
	setString(&cfg.Telemetry.Logging.Format, "TELEMETRY_LOGGING_FORMAT")
	if val := os.Getenv(envPrefix + "TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	setString(&cfg.Telemetry.Metrics.TextfilePath, "TELEMETRY_METRICS_TEXTFILE_PATH")
}

func setString(dst *string, key string) {
	if val := os.Getenv(envPrefix + key); val != "" {
		*dst = val
	}
}

func setDuration(dst *time.Duration, key string) {
	if val := os.Getenv(envPrefix + key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
