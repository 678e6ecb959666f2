package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/templatewatch/pkg/cli"
	"mercator-hq/templatewatch/pkg/config"
	"mercator-hq/templatewatch/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "templatewatch",
	Short: "Monitor a nuclei template repository for new detection rules",
	Long: `templatewatch keeps a local mirror of a nuclei template repository and
reports templates added or modified within a trailing time window.

Running templatewatch without a subcommand is the same as "templatewatch scan".

Every run:
  - Clones or fast-forwards the local mirror
  - Scans commits in the last --hours hours for changed rule files
  - Extracts identifier, severity and description from each file
  - Classifies files as NEW or MODIFIED from their commit history
  - Merges the results into the template cache`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runScan,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		cli.NewStatus(os.Stderr, noColor).Error("%v", err)
	}
	os.Exit(cli.ExitCode(err))
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", config.DefaultSettingsFile, "settings file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	bindScanFlags(rootCmd)
}

// loadSettings reads the settings file. A missing default settings file falls
// back to built-in defaults; a missing file named explicitly is an error.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	explicit := cmd.Flags().Changed("config")

	if _, err := os.Stat(cfgFile); errors.Is(err, fs.ErrNotExist) && !explicit {
		cfg, err := config.DefaultWithEnvOverrides()
		if err != nil {
			return nil, cli.NewConfigError("", "invalid default configuration", err)
		}
		return cfg, nil
	}

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError(cfgFile, "failed to load settings", err)
	}
	return cfg, nil
}

// setupLogging installs the default logger for cfg. --verbose forces debug.
func setupLogging(cfg *config.Config) error {
	level := cfg.Telemetry.Logging.Level
	if verbose {
		level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:  level,
		Format: cfg.Telemetry.Logging.Format,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", fmt.Sprintf("invalid logging settings: %v", err), err)
	}
	slog.SetDefault(logger)
	return nil
}
