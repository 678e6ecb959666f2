package config

import (
	"path/filepath"
	"strings"
	"time"
)

// Config is the root configuration structure for templatewatch.
type Config struct {
	// Repository describes the template repository and its local mirror.
	Repository RepositoryConfig `yaml:"repository"`

	// CacheFile is the path of the persisted template registry.
	// Default: "templates_cache.json"
	CacheFile string `yaml:"cache_file"`

	// CacheBackend selects the registry store.
	// Options: "json", "sqlite", "" (chosen from the CacheFile extension)
	CacheBackend string `yaml:"cache_backend"`

	// GitHub holds optional GitHub credentials.
	GitHub GitHubConfig `yaml:"github"`

	// Telegram configures the notification sink. Only read by the notifier.
	Telegram TelegramConfig `yaml:"telegram"`

	// Scan controls commit-window scanning and extraction.
	Scan ScanConfig `yaml:"scan"`

	// Telemetry contains logging and metrics settings.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// RepositoryConfig configures the monitored repository and its mirror.
type RepositoryConfig struct {
	// URL of the remote repository (HTTPS, SSH or a local path).
	// Default: "https://github.com/projectdiscovery/nuclei-templates.git"
	URL string `yaml:"url"`

	// LocalPath where the mirror is cloned.
	// Default: "/tmp/nuclei-templates"
	LocalPath string `yaml:"local_path"`

	// Branch to track.
	// Default: "main"
	Branch string `yaml:"branch"`

	// RawURLBase is prefixed to a template path to build its raw-content URL.
	// Default: "https://raw.githubusercontent.com/projectdiscovery/nuclei-templates/main"
	RawURLBase string `yaml:"raw_url_base"`

	// Timeout bounds a single clone or fetch.
	// Default: 10m
	Timeout time.Duration `yaml:"timeout"`

	// LockStaleAfter is the age after which an existing run lock is
	// considered abandoned.
	// Default: 1h
	LockStaleAfter time.Duration `yaml:"lock_stale_after"`

	// Auth configures Git authentication.
	Auth GitAuthConfig `yaml:"auth"`
}

// GitAuthConfig configures Git authentication.
type GitAuthConfig struct {
	// Type: "token", "ssh", "none"
	// - "token": HTTPS with personal access token
	// - "ssh": SSH with public key
	// - "none": public repositories
	// Default: "token" when github.token is set, otherwise "none"
	Type string `yaml:"type"`

	// Token for HTTPS authentication. Falls back to github.token.
	Token string `yaml:"token"`

	// SSHKeyPath for SSH authentication.
	SSHKeyPath string `yaml:"ssh_key_path"`

	// SSHKeyPassphrase for encrypted SSH keys.
	SSHKeyPassphrase string `yaml:"ssh_key_passphrase"`
}

// GitHubConfig holds GitHub credentials.
type GitHubConfig struct {
	// Token is passed through as HTTPS token authentication.
	Token string `yaml:"token"`
}

// TelegramConfig configures the Telegram notification sink.
type TelegramConfig struct {
	// BotToken is the Telegram bot API token.
	BotToken string `yaml:"bot_token"`

	// ChatID is the destination chat.
	ChatID string `yaml:"chat_id"`

	// APIURL is the Bot API base URL.
	// Default: "https://api.telegram.org"
	APIURL string `yaml:"api_url"`

	// Timeout bounds a single send.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// Enabled reports whether both the bot token and chat are configured.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// ScanConfig controls commit-window scanning.
type ScanConfig struct {
	// Extensions lists the rule-file extensions to consider.
	// Default: [".yaml"]
	Extensions []string `yaml:"extensions"`

	// Workers bounds concurrent metadata extraction.
	// Default: 4
	Workers int `yaml:"workers"`
}

// TelemetryConfig contains observability settings.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "text"
	Format string `yaml:"format"`
}

// MetricsConfig configures per-run Prometheus metrics.
type MetricsConfig struct {
	// Enabled turns metric collection on.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Namespace prefixes every metric name.
	// Default: "templatewatch"
	Namespace string `yaml:"namespace"`

	// TextfilePath is where metrics are written after each run, in the
	// node-exporter textfile format. Empty disables writing.
	TextfilePath string `yaml:"textfile_path"`
}

// ResolvedCacheBackend returns the cache backend, inferring it from the
// cache file extension when not set explicitly.
func (c *Config) ResolvedCacheBackend() string {
	if c.CacheBackend != "" {
		return strings.ToLower(c.CacheBackend)
	}
	switch strings.ToLower(filepath.Ext(c.CacheFile)) {
	case ".db", ".sqlite", ".sqlite3":
		return CacheBackendSQLite
	default:
		return CacheBackendJSON
	}
}

// ResolvedAuth returns the Git auth settings with the GitHub token applied
// when no explicit auth was configured.
func (c *Config) ResolvedAuth() GitAuthConfig {
	auth := c.Repository.Auth
	if auth.Token == "" {
		auth.Token = c.GitHub.Token
	}
	if auth.Type == "" {
		if auth.Token != "" {
			auth.Type = "token"
		} else {
			auth.Type = "none"
		}
	}
	return auth
}
