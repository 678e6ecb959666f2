package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/templatewatch/pkg/config"
)

// Run results used as the runs_total label.
const (
	ResultSuccess          = "success"
	ResultSyncError        = "sync_error"
	ResultPersistenceError = "persistence_error"
	ResultError            = "error"
)

// Collector holds the metrics of one run.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	runsTotal             *prometheus.CounterVec
	lastRunDuration       prometheus.Gauge
	lastSuccessTimestamp  prometheus.Gauge
	syncDuration          prometheus.Gauge
	commitsScanned        prometheus.Counter
	filesTotal            *prometheus.CounterVec
	historyLookupFailures prometheus.Counter
	registryRecords       prometheus.Gauge
}

// NewCollector creates and registers run metrics. If registry is nil a new
// one is created.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if cfg == nil {
		cfg = &config.MetricsConfig{}
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = config.DefaultMetricsNamespace
	}

	c := &Collector{
		config:   cfg,
		registry: registry,

		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of completed runs by result",
			},
			[]string{"result"},
		),

		lastRunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the last run in seconds",
		}),

		lastSuccessTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run",
		}),

		syncDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Time spent synchronizing the repository mirror",
		}),

		commitsScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commits_scanned_total",
			Help:      "Commits found inside the scan window",
		}),

		filesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "files_total",
				Help:      "Rule files processed by outcome",
			},
			[]string{"outcome"},
		),

		historyLookupFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_lookup_failures_total",
			Help:      "Failed creation-time lookups",
		}),

		registryRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "registry_records",
			Help:      "Records held in the registry after the run",
		}),
	}

	registry.MustRegister(
		c.runsTotal,
		c.lastRunDuration,
		c.lastSuccessTimestamp,
		c.syncDuration,
		c.commitsScanned,
		c.filesTotal,
		c.historyLookupFailures,
		c.registryRecords,
	)

	return c
}

// Registry returns the Prometheus registry backing the collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordRun records the end of a run.
func (c *Collector) RecordRun(result string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.runsTotal.WithLabelValues(result).Inc()
	c.lastRunDuration.Set(duration.Seconds())
	if result == ResultSuccess {
		c.lastSuccessTimestamp.SetToCurrentTime()
	}
}

// RecordSync records the mirror synchronization time.
func (c *Collector) RecordSync(duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.syncDuration.Set(duration.Seconds())
}

// RecordCommits adds to the scanned commit count.
func (c *Collector) RecordCommits(n int) {
	if !c.config.Enabled {
		return
	}
	c.commitsScanned.Add(float64(n))
}

// RecordFile counts one rule file with the given outcome.
func (c *Collector) RecordFile(outcome string) {
	if !c.config.Enabled {
		return
	}
	c.filesTotal.WithLabelValues(outcome).Inc()
}

// RecordHistoryFailure counts a failed history lookup.
func (c *Collector) RecordHistoryFailure() {
	if !c.config.Enabled {
		return
	}
	c.historyLookupFailures.Inc()
}

// SetRegistrySize records the number of records after the run.
func (c *Collector) SetRegistrySize(n int) {
	if !c.config.Enabled {
		return
	}
	c.registryRecords.Set(float64(n))
}
