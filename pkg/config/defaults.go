package config

import "time"

// Cache backends.
const (
	CacheBackendJSON   = "json"
	CacheBackendSQLite = "sqlite"
)

// Default values for configuration fields.
const (
	// Repository defaults
	DefaultRepositoryURL       = "https://github.com/projectdiscovery/nuclei-templates.git"
	DefaultRepositoryLocalPath = "/tmp/nuclei-templates"
	DefaultRepositoryBranch    = "main"
	DefaultRawURLBase          = "https://raw.githubusercontent.com/projectdiscovery/nuclei-templates/main"
	DefaultRepositoryTimeout   = 10 * time.Minute
	DefaultLockStaleAfter      = time.Hour
	DefaultCacheFile           = "templates_cache.json"
	DefaultTelegramAPIURL      = "https://api.telegram.org"
	DefaultTelegramTimeout     = 10 * time.Second
	DefaultScanWorkers         = 4
	DefaultScanExtension       = ".yaml"
	DefaultLoggingLevel        = "info"
	DefaultLoggingFormat       = "text"
	DefaultMetricsNamespace    = "templatewatch"
	DefaultSettingsFile        = "settings.yml"
	DefaultWindowHours         = 8
)

// ApplyDefaults fills zero-valued fields with their defaults.
func ApplyDefaults(cfg *Config) {
	// Repository defaults
	if cfg.Repository.URL == "" {
		cfg.Repository.URL = DefaultRepositoryURL
	}
	if cfg.Repository.LocalPath == "" {
		cfg.Repository.LocalPath = DefaultRepositoryLocalPath
	}
	if cfg.Repository.Branch == "" {
		cfg.Repository.Branch = DefaultRepositoryBranch
	}
	if cfg.Repository.RawURLBase == "" {
		cfg.Repository.RawURLBase = DefaultRawURLBase
	}
	if cfg.Repository.Timeout == 0 {
		cfg.Repository.Timeout = DefaultRepositoryTimeout
	}
	if cfg.Repository.LockStaleAfter == 0 {
		cfg.Repository.LockStaleAfter = DefaultLockStaleAfter
	}

	if cfg.CacheFile == "" {
		cfg.CacheFile = DefaultCacheFile
	}

	// Telegram defaults
	if cfg.Telegram.APIURL == "" {
		cfg.Telegram.APIURL = DefaultTelegramAPIURL
	}
	if cfg.Telegram.Timeout == 0 {
		cfg.Telegram.Timeout = DefaultTelegramTimeout
	}

	// Scan defaults
	if len(cfg.Scan.Extensions) == 0 {
		cfg.Scan.Extensions = []string{DefaultScanExtension}
	}
	if cfg.Scan.Workers == 0 {
		cfg.Scan.Workers = DefaultScanWorkers
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
