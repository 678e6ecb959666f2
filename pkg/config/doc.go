// Package config provides configuration management for templatewatch.
//
// Configuration is read from a YAML settings file, completed with defaults,
// overridden from the environment and validated before use. The resulting
// *Config is passed explicitly to every component; there is no global
// instance.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfigWithEnvOverrides("settings.yml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention TEMPLATEWATCH_SECTION_FIELD.
// For example:
//
//   - TEMPLATEWATCH_REPOSITORY_URL overrides repository.url
//   - TEMPLATEWATCH_GITHUB_TOKEN overrides github.token
//   - TEMPLATEWATCH_TELEGRAM_BOT_TOKEN overrides telegram.bot_token
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Example Configuration
//
//	repository:
//	  url: "https://github.com/projectdiscovery/nuclei-templates.git"
//	  local_path: "/tmp/nuclei-templates"
//
//	cache_file: "templates_cache.json"
//
//	telegram:
//	  bot_token: "${TELEGRAM_BOT_TOKEN}"
//	  chat_id: "-100123456"
package config
