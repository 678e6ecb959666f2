// Package metrics records per-run Prometheus metrics.
//
// templatewatch runs once per invocation, so metrics are not scraped from a
// live endpoint. Instead the collector's registry is written to a file in the
// node-exporter textfile format after every run:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordRun("success", time.Since(start))
//	err := collector.WriteTextfile(cfg.Telemetry.Metrics.TextfilePath)
//
// Metrics (namespace "templatewatch" by default):
//   - runs_total{result}: completed runs by result
//   - last_run_duration_seconds: wall time of the last run
//   - last_success_timestamp_seconds: completion time of the last successful run
//   - sync_duration_seconds: time spent synchronizing the mirror
//   - commits_scanned_total: commits found in the scan window
//   - files_total{outcome}: rule files by merge outcome (inserted, replaced,
//     discarded, skipped)
//   - history_lookup_failures_total: failed creation-time lookups
//   - registry_records: records held after the run
//
// A collector built from a disabled config records nothing.
package metrics
