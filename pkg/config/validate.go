package config

import (
	"fmt"
	"net/url"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "repository.url").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateRepository(cfg)...)
	errs = append(errs, validateCache(cfg)...)
	errs = append(errs, validateScan(&cfg.Scan)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if cfg.Telegram.APIURL != "" {
		if _, err := url.ParseRequestURI(cfg.Telegram.APIURL); err != nil {
			errs = append(errs, FieldError{
				Field:   "telegram.api_url",
				Message: fmt.Sprintf("invalid URL: %v", err),
			})
		}
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateRepository(cfg *Config) []FieldError {
	var errs []FieldError
	repo := &cfg.Repository

	if repo.URL == "" {
		errs = append(errs, FieldError{Field: "repository.url", Message: "repository URL is required"})
	}
	if repo.LocalPath == "" {
		errs = append(errs, FieldError{Field: "repository.local_path", Message: "local path is required"})
	}
	if repo.Branch == "" {
		errs = append(errs, FieldError{Field: "repository.branch", Message: "branch is required"})
	}
	if repo.Timeout < 0 {
		errs = append(errs, FieldError{Field: "repository.timeout", Message: "timeout cannot be negative"})
	}
	if repo.LockStaleAfter < 0 {
		errs = append(errs, FieldError{Field: "repository.lock_stale_after", Message: "lock_stale_after cannot be negative"})
	}

	auth := cfg.ResolvedAuth()
	switch auth.Type {
	case "none":
	case "token":
		if auth.Token == "" {
			errs = append(errs, FieldError{
				Field:   "repository.auth.token",
				Message: "token auth requires repository.auth.token or github.token",
			})
		}
	case "ssh":
		if auth.SSHKeyPath == "" {
			errs = append(errs, FieldError{
				Field:   "repository.auth.ssh_key_path",
				Message: "ssh auth requires ssh_key_path",
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "repository.auth.type",
			Message: fmt.Sprintf("invalid auth type %q: must be 'token', 'ssh' or 'none'", auth.Type),
		})
	}

	return errs
}

func validateCache(cfg *Config) []FieldError {
	var errs []FieldError

	if cfg.CacheFile == "" {
		errs = append(errs, FieldError{Field: "cache_file", Message: "cache file is required"})
	}

	switch cfg.ResolvedCacheBackend() {
	case CacheBackendJSON, CacheBackendSQLite:
	default:
		errs = append(errs, FieldError{
			Field:   "cache_backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'json' or 'sqlite'", cfg.CacheBackend),
		})
	}

	return errs
}

func validateScan(cfg *ScanConfig) []FieldError {
	var errs []FieldError

	if cfg.Workers < 1 {
		errs = append(errs, FieldError{Field: "scan.workers", Message: "workers must be at least 1"})
	}
	for i, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("scan.extensions[%d]", i),
				Message: fmt.Sprintf("extension %q must start with '.'", ext),
			})
		}
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid log level %q: must be one of debug, info, warn, error", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(cfg.Logging.Format)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid log format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.TextfilePath != "" && !cfg.Metrics.Enabled {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.textfile_path",
			Message: "textfile_path requires metrics to be enabled",
		})
	}

	return errs
}
