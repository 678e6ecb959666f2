// Package telemetry groups the observability packages used by templatewatch.
//
// # Components
//
//   - logging: structured slog logging with credential redaction and run IDs
//   - metrics: per-run Prometheus metrics written to a node-exporter textfile
//
// A run creates both from the telemetry section of the settings file:
//
//	logger, err := logging.New(logging.Config{Level: cfg.Telemetry.Logging.Level})
//	slog.SetDefault(logger)
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	defer collector.WriteTextfile(cfg.Telemetry.Metrics.TextfilePath)
package telemetry
