package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mercator-hq/templatewatch/pkg/cli"
	"mercator-hq/templatewatch/pkg/config"
	"mercator-hq/templatewatch/pkg/export"
	"mercator-hq/templatewatch/pkg/git"
	"mercator-hq/templatewatch/pkg/monitor"
	"mercator-hq/templatewatch/pkg/notify"
	"mercator-hq/templatewatch/pkg/registry"
	"mercator-hq/templatewatch/pkg/telemetry/metrics"
)

var scanFlags struct {
	hours        int
	category     string
	severity     string
	output       string
	outputFormat string
	notify       bool
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the template repository for new and modified templates",
	Long: `Synchronize the mirror, scan commits in the trailing window and update the
template cache. Matching templates are printed and optionally written to a file.

Examples:
  # Scan the last 8 hours
  templatewatch scan

  # Only critical and high severity DNS or HTTP templates from the last day
  templatewatch scan --hours 24 --category dns,http --severity critical,high

  # Write matches as JSON lines
  templatewatch scan --output new_templates.jsonl

  # Send newly added templates to the configured Telegram chat
  templatewatch scan --notify`,
	SilenceUsage: true,
	RunE:         runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	bindScanFlags(scanCmd)
}

// bindScanFlags registers the scan flags on cmd. The root command carries them
// too so that a bare invocation scans.
func bindScanFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&scanFlags.hours, "hours", config.DefaultWindowHours, "trailing window in hours, also the recency filter")
	cmd.Flags().StringVar(&scanFlags.category, "category", "", "comma-separated categories to include")
	cmd.Flags().StringVar(&scanFlags.severity, "severity", "", "comma-separated severities to include")
	cmd.Flags().StringVarP(&scanFlags.output, "output", "o", "", "write matching templates to this file")
	cmd.Flags().StringVar(&scanFlags.outputFormat, "output-format", export.FormatJSONL, "output file format (jsonl, csv)")
	cmd.Flags().BoolVar(&scanFlags.notify, "notify", false, "send newly added templates to Telegram")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}

	if scanFlags.hours <= 0 {
		return cli.NewConfigError("hours", fmt.Sprintf("must be positive, got %d", scanFlags.hours), nil)
	}
	var exporter export.Exporter
	if scanFlags.output != "" {
		exporter, err = export.New(scanFlags.outputFormat)
		if err != nil {
			return cli.NewConfigError("output-format", err.Error(), err)
		}
	}

	ctx, cancel := cli.SetupSignalHandler()
	defer cancel()

	start := time.Now()
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	defer writeMetrics(collector, cfg.Telemetry.Metrics.TextfilePath)

	repoCfg := cfg.Repository
	repoCfg.Auth = cfg.ResolvedAuth()
	repo, err := git.NewRepository(&repoCfg)
	if err != nil {
		collector.RecordRun(metrics.ResultError, time.Since(start))
		return cli.NewConfigError("repository", err.Error(), err)
	}

	store, err := registry.OpenStore(cfg.CacheFile, cfg.ResolvedCacheBackend())
	if err != nil {
		collector.RecordRun(metrics.ResultError, time.Since(start))
		return cli.NewConfigError("cache_file", err.Error(), err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("failed to close cache", "location", store.Location(), "error", err)
		}
	}()

	window := time.Duration(scanFlags.hours) * time.Hour
	mon := monitor.New(repo, store, monitor.Config{
		RawURLBase:     cfg.Repository.RawURLBase,
		Extensions:     cfg.Scan.Extensions,
		Workers:        cfg.Scan.Workers,
		LockPath:       lockPath(repoCfg.LocalPath),
		LockStaleAfter: cfg.Repository.LockStaleAfter,
		Metrics:        collector,
	})

	result, err := mon.Run(ctx, monitor.Options{
		Window: window,
		Criteria: registry.Criteria{
			Categories: registry.ParseList(scanFlags.category),
			Severities: registry.ParseList(scanFlags.severity),
			MaxAge:     window,
		},
	})
	if err != nil {
		collector.RecordRun(runResult(err), time.Since(start))
		slog.Debug("run failed", "failed_syncs", repo.Metrics().FailedSyncs)
		return cli.NewCommandError("scan", err)
	}

	if exporter != nil {
		if err := export.WriteFile(ctx, scanFlags.output, exporter, result.Records); err != nil {
			collector.RecordRun(metrics.ResultError, time.Since(start))
			return cli.NewCommandError("scan", err)
		}
	}

	mirror := repo.Metrics()
	slog.Info("mirror state",
		"head", mirror.LastCommitSHA,
		"cloned", mirror.Cloned,
		"clone_duration", mirror.CloneDuration.String(),
		"fetch_duration", mirror.FetchDuration.String(),
		"synced_at", mirror.LastSyncTime,
	)

	out := cmd.OutOrStdout()
	printScanSummary(out, mirror, result)

	if scanFlags.notify {
		notifyAdded(ctx, out, cfg.Telegram, result)
	}

	collector.RecordRun(metrics.ResultSuccess, time.Since(start))
	return nil
}

// runResult maps a run failure to its metrics label.
func runResult(err error) string {
	var syncErr *git.SyncError
	var persistErr *registry.PersistenceError
	switch {
	case errors.As(err, &syncErr):
		return metrics.ResultSyncError
	case errors.As(err, &persistErr):
		return metrics.ResultPersistenceError
	default:
		return metrics.ResultError
	}
}

func writeMetrics(collector *metrics.Collector, path string) {
	if err := collector.WriteTextfile(path); err != nil {
		slog.Warn("failed to write metrics", "path", path, "error", err)
	}
}

// lockPath places the run lock next to the mirror, never inside it.
func lockPath(localPath string) string {
	return filepath.Clean(localPath) + ".lock"
}

func printScanSummary(w io.Writer, mirror git.RepositoryMetrics, result *monitor.Result) {
	status := cli.NewStatus(w, noColor)
	if result.LoadWarning != nil {
		status.Warn("cache could not be read, started from an empty cache: %v", result.LoadWarning)
	}
	for _, skipped := range result.Skipped {
		status.Warn("skipped %s: %v", skipped.Path, skipped.Err)
	}

	kv := cli.NewKeyValue(w, noColor)
	kv.Add("Run ID", result.RunID)
	kv.Add("Mirror head", shortSHA(mirror.LastCommitSHA))
	if mirror.Cloned {
		kv.Add("Clone time", mirror.CloneDuration.Round(time.Millisecond))
	} else {
		kv.Add("Fetch time", mirror.FetchDuration.Round(time.Millisecond))
	}
	kv.Add("Commits scanned", result.CommitsScanned)
	kv.Add("Files scanned", result.FilesScanned)
	kv.Add("Added", len(result.Added))
	kv.Add("Updated", len(result.Updated))
	kv.Add("Skipped", len(result.Skipped))
	kv.Add("Cache size", result.RegistrySize)
	kv.Add("Matching", len(result.Records))
	kv.Add("Duration", result.Duration.Round(time.Millisecond))
	kv.Render()

	if scanFlags.output != "" {
		status.Success("wrote %d templates to %s", len(result.Records), scanFlags.output)
	}
	if len(result.Records) == 0 {
		return
	}

	fmt.Fprintln(w)
	table := cli.NewTable(w, []string{"ID", "SEVERITY", "CATEGORY", "STATUS", "CREATED"}, noColor)
	table.ColorColumn(1, severityColor)
	for _, rec := range result.Records {
		created := "-"
		if rec.CreatedAt != nil {
			created = rec.CreatedAt.Format(time.RFC3339)
		}
		table.AddRow(rec.ID, rec.Severity, rec.Category, string(rec.Status), created)
	}
	table.Render()
}

func severityColor(severity string) *color.Color {
	return cli.SeverityColor(severity, noColor)
}

func shortSHA(sha string) string {
	if len(sha) > 12 {
		return sha[:12]
	}
	return sha
}

// notifyAdded sends the templates added by this run that also match the
// filters. Notification failures are reported but do not fail the run.
func notifyAdded(ctx context.Context, w io.Writer, cfg config.TelegramConfig, result *monitor.Result) {
	status := cli.NewStatus(w, noColor)
	if !cfg.Enabled() {
		status.Warn("--notify given but telegram.bot_token or telegram.chat_id is not set")
		return
	}

	added := make(map[string]bool, len(result.Added))
	for _, id := range result.Added {
		added[id] = true
	}
	var records []*registry.Record
	for _, rec := range result.Records {
		if added[rec.ID] {
			records = append(records, rec)
		}
	}
	if len(records) == 0 {
		return
	}

	sink, err := notify.NewTelegramSink(cfg, nil)
	if err != nil {
		status.Error("notification setup failed: %v", err)
		return
	}
	sent, err := notify.SendRecords(ctx, sink, cfg.ChatID, records)
	if err != nil {
		slog.Error("notification failed", "sent", sent, "error", err)
		status.Error("notification failed after %d messages: %v", sent, err)
		return
	}
	status.Success("sent %d templates in %d messages", len(records), sent)
}
